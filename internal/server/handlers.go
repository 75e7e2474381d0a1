package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/caption-art/internal/compositor"
	"github.com/ironsheep/caption-art/internal/detection"
	"github.com/ironsheep/caption-art/internal/export"
	"github.com/ironsheep/caption-art/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "caption_export").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the MCP _meta object of a request.
type RequestMeta struct {
	ProgressToken interface{} `json:"progressToken,omitempty"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A failed export is not a tool error: its result carries a user-facing
// message instead.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var token interface{}
	if params.Meta != nil {
		token = params.Meta.ProgressToken
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments, token)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, progressToken interface{}) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)

	// Placement
	case "caption_suggest_placement":
		return s.handleSuggestPlacement(args)
	case "caption_placement_overlay":
		return s.handlePlacementOverlay(args)

	// Export
	case "caption_export":
		return s.handleCaptionExport(ctx, args, progressToken)
	case "caption_export_status":
		return s.handleExportStatus()
	case "caption_export_abort":
		return s.handleExportAbort()
	case "caption_clear_cache":
		return s.handleClearCache()

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

// unmarshalArgs decodes tool arguments; missing arguments decode as empty.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path, s.largePixels)
}

// === Placement Handlers ===

type placementArgs struct {
	Path     string `json:"path"`
	CellSize int    `json:"cell_size"`
}

func (s *Server) placement(args json.RawMessage) (*imaging.Surface, *detection.Placement, int, error) {
	var a placementArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, nil, 0, err
	}
	if a.CellSize <= 0 {
		a.CellSize = s.cellSize
	}
	photo, err := s.cache.LoadSurface(a.Path)
	if err != nil {
		return nil, nil, 0, err
	}
	p, err := detection.SuggestPlacement(photo, a.CellSize)
	if err != nil {
		return nil, nil, 0, err
	}
	return photo, p, a.CellSize, nil
}

type placementResult struct {
	*detection.Placement
	CellSize int `json:"cell_size"`
	Cols     int `json:"cols"`
	Rows     int `json:"rows"`
}

func (s *Server) handleSuggestPlacement(args json.RawMessage) (interface{}, error) {
	_, p, cellSize, err := s.placement(args)
	if err != nil {
		return nil, err
	}
	return &placementResult{
		Placement: p,
		CellSize:  cellSize,
		Cols:      p.Grid.Cols,
		Rows:      p.Grid.Rows,
	}, nil
}

func (s *Server) handlePlacementOverlay(args json.RawMessage) (interface{}, error) {
	photo, p, cellSize, err := s.placement(args)
	if err != nil {
		return nil, err
	}

	var highlights []imaging.CellHighlight
	for i, r := range p.Regions {
		for _, c := range r.Cells {
			highlights = append(highlights, imaging.CellHighlight{Col: c.Col, Row: c.Row, Rank: i + 1})
		}
	}
	return imaging.PlacementOverlay(photo, cellSize, highlights)
}

// === Export Handlers ===

type captionExportArgs struct {
	Path        string  `json:"path"`
	MaskPath    string  `json:"mask_path"`
	Text        string  `json:"text"`
	FontSize    float64 `json:"font_size"`
	Color       string  `json:"color"`
	X           *int    `json:"x"`
	Y           *int    `json:"y"`
	Align       string  `json:"align"`
	TextBehind  bool    `json:"text_behind"`
	MaskFeather float64 `json:"mask_feather"`

	Format        string   `json:"format"`
	Quality       *float64 `json:"quality"`
	MaxDimension  *int     `json:"max_dimension"`
	Watermark     bool     `json:"watermark"`
	WatermarkText string   `json:"watermark_text"`
	CustomText    string   `json:"custom_text"`
}

func (s *Server) handleCaptionExport(ctx context.Context, args json.RawMessage, progressToken interface{}) (interface{}, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("export is not configured")
	}

	var a captionExportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	photo, err := s.cache.LoadSurface(a.Path)
	if err != nil {
		return nil, err
	}

	style := compositor.TextStyle{
		Text:     a.Text,
		FontSize: a.FontSize,
		Color:    a.Color,
		Align:    compositor.Alignment(a.Align),
	}
	if style.Align == "" {
		style.Align = compositor.AlignCenter
	}
	if a.X != nil && a.Y != nil {
		style.X, style.Y = *a.X, *a.Y
	}
	if a.X == nil || a.Y == nil || a.Color == "" {
		p, err := detection.SuggestPlacement(photo, s.cellSize)
		if err != nil {
			return nil, err
		}
		if a.X == nil || a.Y == nil {
			style.X, style.Y = p.AnchorX, p.AnchorY
		}
		if a.Color == "" {
			style.Color = p.TextColor
		}
	}

	layer, err := compositor.RenderText(photo.Width, photo.Height, style)
	if errors.Is(err, compositor.ErrEmptyText) {
		return &export.Result{Success: false, Error: export.MsgNoContent}, nil
	}
	if err != nil {
		return nil, err
	}

	c := compositor.New()
	c.SetBackground(photo)
	c.SetTextLayer(layer)
	c.SetMaskFeather(a.MaskFeather)

	var mask *imaging.Surface
	if a.MaskPath != "" {
		if mask, err = s.cache.LoadSurface(a.MaskPath); err != nil {
			return nil, err
		}
		c.SetMaskImage(mask)
	}
	c.SetTextBehindEnabled(a.TextBehind && mask != nil)

	target, err := imaging.NewSurface(photo.Width, photo.Height)
	if err != nil {
		return nil, err
	}
	if err := c.Composite(target); err != nil {
		return nil, err
	}
	if c.TextBehindEnabled() {
		subject, err := compositor.Subject(photo, mask)
		if err != nil {
			return nil, err
		}
		compositor.DrawOver(target, subject)
	}

	opts := export.Options{
		Format:        a.Format,
		Quality:       s.defaults.Quality,
		MaxDimension:  s.defaults.MaxDimension,
		Watermark:     a.Watermark,
		WatermarkText: a.WatermarkText,
		CustomText:    a.CustomText,
	}
	if opts.Format == "" {
		opts.Format = s.defaults.Format
	}
	if a.Quality != nil {
		opts.Quality = *a.Quality
	}
	if a.MaxDimension != nil {
		opts.MaxDimension = *a.MaxDimension
	}
	if opts.WatermarkText == "" {
		opts.WatermarkText = s.defaults.WatermarkText
	}

	var progress export.ProgressFunc
	if progressToken != nil {
		progress = func(p export.Progress) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": progressToken,
				"progress":      p.Percent,
				"total":         100,
				"message":       p.Message,
			})
		}
	}

	return s.exporter.Export(ctx, target, opts, progress), nil
}

type exportStatus struct {
	Exporting bool `json:"exporting"`
	Pending   int  `json:"pending"`
}

func (s *Server) handleExportStatus() (interface{}, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("export is not configured")
	}
	return &exportStatus{
		Exporting: s.exporter.IsExporting(),
		Pending:   s.exporter.Pending(),
	}, nil
}

func (s *Server) handleExportAbort() (interface{}, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("export is not configured")
	}
	return map[string]interface{}{"aborted": s.exporter.Abort()}, nil
}

func (s *Server) handleClearCache() (interface{}, error) {
	s.cache.Clear()
	if s.exporter != nil {
		s.exporter.ClearCache()
	}
	return map[string]interface{}{"cleared": true}, nil
}
