package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load a photo or mask file and return its dimensions, format and whether it has transparency.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Placement
		{
			Name:        "caption_suggest_placement",
			Description: "Find visually calm areas of a photo and suggest where to place a caption. Returns regions ordered largest first, the best anchor point in pixels and a contrasting text color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the photo"),
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Grid cell size in pixels. Default 50",
						"default":     50,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "caption_placement_overlay",
			Description: "Draw the placement grid over a photo with calm regions tinted and ranked. Returns a base64-encoded PNG for visual inspection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the photo"),
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Grid cell size in pixels. Default 50",
						"default":     50,
					},
				},
				"required": []string{"path"},
			},
		},

		// Export
		{
			Name:        "caption_export",
			Description: "Render a caption onto a photo and export it as PNG or JPEG. With a subject mask and text_behind enabled, the caption is drawn behind the subject.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty("Absolute path to the photo"),
					"mask_path": pathProperty("Optional absolute path to a subject mask (alpha channel marks the subject)"),
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Caption text. Use \\n for line breaks",
					},
					"font_size": map[string]interface{}{
						"type":        "number",
						"description": "Font size in pixels. Default 48",
						"default":     48,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Text color as #RGB, #RRGGBB or #RRGGBBAA. Defaults to the suggested contrasting color",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Anchor X in pixels. Omit x and y to use the suggested placement",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Anchor Y in pixels (vertical center of the text block)",
					},
					"align": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"left", "center", "right"},
						"description": "Line alignment relative to the anchor. Default center",
						"default":     "center",
					},
					"text_behind": map[string]interface{}{
						"type":        "boolean",
						"description": "Cut the caption out where the mask covers the subject. Requires mask_path",
						"default":     false,
					},
					"mask_feather": map[string]interface{}{
						"type":        "number",
						"description": "Blur radius for softening mask edges. Default 0",
						"default":     0,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "jpg"},
						"description": "Export format. Default from configuration",
					},
					"quality": map[string]interface{}{
						"type":        "number",
						"description": "JPEG quality between 0.5 and 1.0. Values outside are clamped",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Longest side of the exported image in pixels. 0 keeps the original size",
					},
					"watermark": map[string]interface{}{
						"type":        "boolean",
						"description": "Stamp a watermark in the bottom-right corner",
						"default":     false,
					},
					"watermark_text": map[string]interface{}{
						"type":        "string",
						"description": "Watermark text. Default from configuration",
					},
					"custom_text": map[string]interface{}{
						"type":        "string",
						"description": "Text added to the filename",
					},
				},
				"required": []string{"path", "text"},
			},
		},
		{
			Name:        "caption_export_status",
			Description: "Report whether an export is running and how many are queued.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "caption_export_abort",
			Description: "Cancel the running export at its next stage.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "caption_clear_cache",
			Description: "Drop cached photos and scaled images.",
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
