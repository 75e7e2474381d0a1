package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/caption-art/internal/config"
	"github.com/ironsheep/caption-art/internal/encoder"
	"github.com/ironsheep/caption-art/internal/export"
	"github.com/ironsheep/caption-art/internal/imaging"
	"github.com/ironsheep/caption-art/internal/logger"
)

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	exporter *export.Orchestrator
	defaults config.DefaultsConfig
	cellSize int
	version  string

	// largePixels matches the scaler's worker threshold.
	largePixels int

	outMu sync.Mutex
	out   *json.Encoder

	calls sync.WaitGroup
}

// Options wires the server to the export pipeline.
type Options struct {
	Exporter *export.Orchestrator
	Defaults config.DefaultsConfig
	CellSize int
	Version  string

	// LargeImagePixels is the export scaler's worker threshold, reported by
	// image_load. Zero means imaging.LargeImagePixels.
	LargeImagePixels int
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.CellSize <= 0 {
		opts.CellSize = 50
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Defaults.Quality == 0 {
		opts.Defaults.Quality = encoder.DefaultQuality
	}
	return &Server{
		cache:       imaging.NewImageCache(),
		exporter:    opts.Exporter,
		defaults:    opts.Defaults,
		cellSize:    opts.CellSize,
		version:     opts.Version,
		largePixels: opts.LargeImagePixels,
		out:         json.NewEncoder(io.Discard),
	}
}

// Run serves MCP over stdin and stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
// Tool calls run concurrently so a running export can be aborted or queried;
// Serve waits for them before returning.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.outMu.Lock()
	s.out = json.NewEncoder(w)
	s.outMu.Unlock()
	defer s.calls.Wait()

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("Failed to parse request", zap.Error(err))
			continue
		}

		if req.Method == "tools/call" {
			s.calls.Add(1)
			go func(req MCPRequest) {
				defer s.calls.Done()
				s.write(s.handleRequest(ctx, &req))
			}(req)
			continue
		}

		s.write(s.handleRequest(ctx, &req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// write encodes a response or notification. Nil is ignored.
func (s *Server) write(v interface{}) {
	if resp, ok := v.(*MCPResponse); ok && resp == nil {
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := s.out.Encode(v); err != nil {
		logger.Error(fmt.Errorf("failed to encode response: %w", err))
	}
}

// notify sends an MCP notification.
func (s *Server) notify(method string, params interface{}) {
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "caption-art",
				"version": s.version,
			},
		},
	}
}
