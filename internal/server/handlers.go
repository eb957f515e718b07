package server

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/imaging"
	"github.com/ironsheep/hydrangea-counter/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "hydrangea_count", "image_load").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return s.toolResponse(req.ID, params.Name, result)
}

// toolResponse wraps a tool result in MCP's content format. A result that
// cannot be encoded is reported as an internal error rather than sent empty.
func (s *Server) toolResponse(id interface{}, tool string, result interface{}) *MCPResponse {
	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Str("tool", tool).Msg("failed to encode tool result")
		return s.errorResponse(id, -32603, "Internal error", errors.Wrap(err, "failed to encode result").Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Counting
	case "hydrangea_count":
		return s.handleHydrangeaCount(args)
	case "hydrangea_defaults":
		return s.handleHydrangeaDefaults(args)

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	default:
		return nil, errors.Errorf("unknown tool: %s", name)
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

// === Counting Handlers ===

type hydrangeaCountArgs struct {
	Path string `json:"path"`

	// OutputDir receives the five artifacts. Empty keeps them in memory only.
	OutputDir string `json:"output_dir"`

	// Seed overrides the clustering seed when set.
	Seed *int64 `json:"seed"`
}

func (s *Server) handleHydrangeaCount(args json.RawMessage) (interface{}, error) {
	var a hydrangeaCountArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.cfg
	if a.Seed != nil {
		cfg.Cluster.Seed = *a.Seed
	}
	p, err := pipeline.New(cfg, s.log)
	if err != nil {
		return nil, err
	}

	var sink pipeline.ArtifactSink = pipeline.NewMemorySink()
	if a.OutputDir != "" {
		sink = pipeline.NewDirSink(a.OutputDir)
	}
	return p.Run(a.Path, sink)
}

func (s *Server) handleHydrangeaDefaults(_ json.RawMessage) (interface{}, error) {
	return struct {
		Config  config.Config `json:"config"`
		Default config.Config `json:"default"`
	}{s.cfg, config.Default()}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
