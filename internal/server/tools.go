package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "blueprint_process",
			Description: "Process a blueprint image, a folder of images or a zip archive of images. Replaces the current results with one row per distinct file name: total room area in m² and the number of rooms counted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to an image (.png, .jpg, .jpeg, .jfif), a folder or a .zip archive",
					},
					"extract_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional folder to extract a zip archive into",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "blueprint_results",
			Description: "List the current results in processing order, including labelled areas and living furniture counts when detection is enabled.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "blueprint_preview",
			Description: "Return a scaled PNG preview of a processed image, selected by row number or file name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"row": map[string]interface{}{
						"type":        "integer",
						"description": "Row number from blueprint_results (1-based)",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name of a processed image",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Preview width in pixels. Default 300",
						"default":     300,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Preview height in pixels. Default 300",
						"default":     300,
					},
				},
			},
		},
		{
			Name:        "blueprint_export",
			Description: "Write the current results to an Excel workbook. Fails when there are no results.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination .xlsx path. Defaults to the configured export path",
					},
				},
			},
		},
		{
			Name:        "blueprint_clear",
			Description: "Discard the current results.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
