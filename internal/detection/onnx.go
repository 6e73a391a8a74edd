package detection

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// Defaults for a Darknet YOLOv3 model exported to ONNX at 416x416.
const (
	DefaultInputSize  = 416
	DefaultInputName  = "images"
	DefaultOutputName = "output0"

	// DefaultNumBoxes is the prediction count of YOLOv3 at 416:
	// 3 anchors over 13x13, 26x26 and 52x52 grids.
	DefaultNumBoxes = 10647
)

// Config describes the furniture detection model.
type Config struct {
	ModelPath         string `yaml:"model_path"`
	LabelsPath        string `yaml:"labels_path"`
	SharedLibraryPath string `yaml:"shared_library_path"`

	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
	InputSize  int    `yaml:"input_size"`
	NumBoxes   int    `yaml:"num_boxes"`

	// PixelBoxes is set for models that emit box coordinates in input
	// pixels rather than normalised to 0..1.
	PixelBoxes bool `yaml:"pixel_boxes"`

	IoUThreshold float64 `yaml:"iou_threshold"`
}

// Enabled reports whether a model is configured.
func (c Config) Enabled() bool {
	return c.ModelPath != ""
}

func (c *Config) setDefaults() {
	if c.InputName == "" {
		c.InputName = DefaultInputName
	}
	if c.OutputName == "" {
		c.OutputName = DefaultOutputName
	}
	if c.InputSize == 0 {
		c.InputSize = DefaultInputSize
	}
	if c.NumBoxes == 0 {
		c.NumBoxes = DefaultNumBoxes
	}
	if c.IoUThreshold == 0 {
		c.IoUThreshold = DefaultIoUThreshold
	}
}

// ONNXDetector runs a YOLO model through ONNX Runtime. The session and its
// tensors are allocated once; Detect calls are serialized.
type ONNXDetector struct {
	cfg     Config
	labels  []string
	rowSize int

	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	ownsEnv bool
}

// NewONNXDetector loads labels and model weights. Missing files fail here
// so a bad configuration stops startup.
func NewONNXDetector(cfg Config) (*ONNXDetector, error) {
	cfg.setDefaults()
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("detector model path is required")
	}
	if cfg.LabelsPath == "" {
		return nil, fmt.Errorf("detector labels path is required")
	}
	if cfg.InputSize <= 0 || cfg.NumBoxes <= 0 {
		return nil, fmt.Errorf("invalid detector input size %d or box count %d", cfg.InputSize, cfg.NumBoxes)
	}

	labels, err := LoadLabelsFile(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("failed to find model weights: %w", err)
	}

	d := &ONNXDetector{cfg: cfg, labels: labels, rowSize: boxFields + len(labels)}

	if !ort.IsInitialized() {
		if cfg.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
		d.ownsEnv = true
	}

	if err := d.initSession(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *ONNXDetector) initSession() error {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("error creating session options: %w", err)
	}
	defer options.Destroy()

	size := int64(d.cfg.InputSize)
	d.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return fmt.Errorf("error creating input tensor: %w", err)
	}

	d.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(d.cfg.NumBoxes), int64(d.rowSize)))
	if err != nil {
		return fmt.Errorf("error creating output tensor: %w", err)
	}

	d.session, err = ort.NewAdvancedSession(
		d.cfg.ModelPath,
		[]string{d.cfg.InputName},
		[]string{d.cfg.OutputName},
		[]ort.ArbitraryTensor{d.input},
		[]ort.ArbitraryTensor{d.output},
		options,
	)
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// Labels returns the class names in index order.
func (d *ONNXDetector) Labels() []string {
	return d.labels
}

// Detect runs the model on img and returns thresholded, suppressed
// detections in img's pixel coordinates.
func (d *ONNXDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := d.cfg.InputSize
	resized := imaging.Resize(img, size, size, imaging.Linear)

	d.mu.Lock()
	defer d.mu.Unlock()

	fillInput(d.input.GetData(), resized, size)
	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	var scale float32
	if d.cfg.PixelBoxes {
		scale = float32(size)
	}
	rows, err := SplitRows(d.output.GetData(), d.cfg.NumBoxes, d.rowSize, scale)
	if err != nil {
		return nil, fmt.Errorf("process predictions: %w", err)
	}

	b := img.Bounds()
	dets := DecodeRows(rows, b.Dx(), b.Dy(), d.labels)
	return NonMaxSuppression(dets, d.cfg.IoUThreshold), nil
}

// Close releases the session, its tensors and, if this detector started
// it, the ONNX Runtime environment.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	if d.input != nil {
		d.input.Destroy()
		d.input = nil
	}
	if d.output != nil {
		d.output.Destroy()
		d.output = nil
	}
	if d.ownsEnv {
		d.ownsEnv = false
		return ort.DestroyEnvironment()
	}
	return nil
}

// fillInput writes pic as planar RGB scaled to 0..1 into buffer.
func fillInput(buffer []float32, pic *image.NRGBA, size int) {
	channelSize := size * size
	for y := 0; y < size; y++ {
		offset := y * size
		for x := 0; x < size; x++ {
			i := offset + x
			p := pic.Pix[y*pic.Stride+x*4 : y*pic.Stride+x*4+3]
			buffer[i] = float32(p[0]) / 255.0
			buffer[channelSize+i] = float32(p[1]) / 255.0
			buffer[channelSize*2+i] = float32(p[2]) / 255.0
		}
	}
}
