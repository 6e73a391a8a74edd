// Package source turns an input path into the list of blueprint images to
// process. A path may name a single image, a directory or a zip archive.
package source

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/blueprint-area/internal/imaging"
)

// ErrUnsupported is returned for files that are neither a supported image
// nor a zip archive.
var ErrUnsupported = errors.New("unsupported input")

// IsArchive reports whether path has a .zip extension.
func IsArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// Resolve returns the images referenced by path. Directories are listed
// non-recursively. Archives are extracted into extractDir (a new
// temporary directory when empty) and the extracted top level is listed.
func Resolve(path, extractDir string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access input: %w", err)
	}

	switch {
	case info.IsDir():
		return ListImages(path)
	case IsArchive(path):
		if extractDir == "" {
			extractDir, err = os.MkdirTemp("", "blueprint-*")
			if err != nil {
				return nil, fmt.Errorf("failed to create extraction directory: %w", err)
			}
		}
		if err := ExtractZip(path, extractDir); err != nil {
			return nil, err
		}
		return ListImages(extractDir)
	case imaging.IsSupported(path):
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
}

// ListImages returns the supported images directly inside dir, sorted by
// name. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ExtractZip extracts every entry of the archive at zipPath into dir,
// keeping the archive's directory structure. Entries that would land
// outside dir are rejected and nothing further is extracted.
func ExtractZip(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve extraction directory: %w", err)
	}

	for _, f := range r.File {
		target := filepath.Join(root, f.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read archive entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %q: %w", f.Name, err)
	}
	return out.Close()
}
