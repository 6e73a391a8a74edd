package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/blueprint-area/internal/area"
	"github.com/ironsheep/blueprint-area/internal/batch"
	"github.com/ironsheep/blueprint-area/internal/export"
	"github.com/ironsheep/blueprint-area/internal/imaging"
	"github.com/ironsheep/blueprint-area/internal/source"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "blueprint_process").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Previews are returned as an image content item followed by the text item.
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{}
	if p, ok := result.(*previewResult); ok {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     p.ImageBase64,
			"mimeType": p.MimeType,
		})
	}
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": mustMarshalJSON(result),
	})

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "blueprint_process":
		return s.handleProcess(ctx, args)
	case "blueprint_results":
		return s.handleResults()
	case "blueprint_preview":
		return s.handlePreview(args)
	case "blueprint_export":
		return s.handleExport(args)
	case "blueprint_clear":
		return s.handleClear()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating absent arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Batch Handlers ===

type processArgs struct {
	Path       string `json:"path"`
	ExtractDir string `json:"extract_dir"`
}

type processResult struct {
	RunID string                `json:"run_id"`
	Stats batch.RunStats        `json:"stats"`
	Rows  []area.ImageAggregate `json:"rows"`
}

func (s *Server) handleProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.ExtractDir == "" {
		a.ExtractDir = s.extractDir
	}

	paths, err := source.Resolve(a.Path, a.ExtractDir)
	if err != nil {
		return nil, err
	}

	stats, err := s.pipeline.Run(ctx, s.session, paths)
	if err != nil {
		return nil, err
	}

	return &processResult{
		RunID: s.session.RunID.String(),
		Stats: stats,
		Rows:  s.session.Table.Rows(),
	}, nil
}

type resultRow struct {
	Row int `json:"row"`
	*batch.ImageResult
}

type resultsResult struct {
	Count int         `json:"count"`
	Rows  []resultRow `json:"rows"`
}

func (s *Server) handleResults() (interface{}, error) {
	results := s.session.Table.Results()
	rows := make([]resultRow, len(results))
	for i, r := range results {
		rows[i] = resultRow{Row: i + 1, ImageResult: r}
	}
	return &resultsResult{Count: len(rows), Rows: rows}, nil
}

type previewArgs struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type previewResult struct {
	Name string `json:"name"`
	*imaging.PreviewResult
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width == 0 {
		a.Width = imaging.PreviewWidth
	}
	if a.Height == 0 {
		a.Height = imaging.PreviewHeight
	}

	var (
		res *batch.ImageResult
		ok  bool
	)
	switch {
	case a.Name != "":
		res, ok = s.session.Table.Get(a.Name)
	case a.Row > 0:
		res, ok = s.session.Table.At(a.Row - 1)
	default:
		return nil, errors.New("row or name is required")
	}
	if !ok {
		return nil, errors.New("no such result")
	}

	img, err := s.session.Cache.Load(res.Aggregate.SourcePath)
	if err != nil {
		return nil, err
	}
	p, err := imaging.Preview(img, a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	return &previewResult{Name: res.Aggregate.SourceName, PreviewResult: p}, nil
}

type exportArgs struct {
	Path string `json:"path"`
}

type exportResult struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		a.Path = s.exportPath
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	rows := s.session.Table.Rows()
	if err := export.WriteFile(a.Path, rows); err != nil {
		return nil, err
	}
	s.logger.Info("results exported", "path", a.Path, "rows", len(rows))
	return &exportResult{Path: a.Path, Rows: len(rows)}, nil
}

type clearResult struct {
	Cleared        int `json:"cleared"`
	CachedPreviews int `json:"cached_previews"`
}

func (s *Server) handleClear() (interface{}, error) {
	res := &clearResult{
		Cleared:        s.session.Table.Len(),
		CachedPreviews: s.session.Cache.Len(),
	}
	s.session.Table.Clear()
	s.session.Cache.Clear()
	s.logger.Info("results cleared", "rows", res.Cleared, "cached_images", res.CachedPreviews)
	return res, nil
}
