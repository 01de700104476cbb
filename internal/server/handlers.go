package server

import (
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/canny-tools-mcp/internal/canny"
	"github.com/ironsheep/canny-tools-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_edge_detect").
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

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		s.logger.Warn("Tool failed", "tool", params.Name, "err", err, "elapsed", elapsed)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Debug("Tool done", "tool", params.Name, "elapsed", elapsed)

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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Edge Detection
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_gradient":
		return s.handleImageGradient(args)
	case "image_edge_overlay":
		return s.handleImageEdgeOverlay(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data string is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
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

// === Edge Detection Handlers ===

// edgeArgs are the arguments shared by the edge detection tools. Pointer
// fields distinguish "unset" from an explicit zero.
type edgeArgs struct {
	Path          string          `json:"path"`
	ThresholdLow  *float64        `json:"threshold_low"`
	ThresholdHigh *float64        `json:"threshold_high"`
	BlurSize      *int            `json:"blur_size"`
	BlurSigma     *float64        `json:"blur_sigma"`
	Channel       string          `json:"channel"`
	Region        *imaging.Region `json:"region"`
	RegionName    string          `json:"region_name"`
}

// resolve loads the image and turns the arguments into detector options,
// filling unset values from the server defaults.
func (s *Server) resolve(a edgeArgs) (image.Image, imaging.EdgeOptions, error) {
	var opts imaging.EdgeOptions

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, opts, err
	}

	if opts.Channel, err = imaging.ParseChannel(a.Channel); err != nil {
		return nil, opts, err
	}

	switch {
	case a.Region != nil && a.RegionName != "":
		return nil, opts, fmt.Errorf("region and region_name are mutually exclusive")
	case a.Region != nil:
		opts.Region = a.Region
	case a.RegionName != "":
		r, err := imaging.NamedRegion(img.Bounds(), a.RegionName)
		if err != nil {
			return nil, opts, err
		}
		opts.Region = &r
	}

	d := s.defaults
	if a.ThresholdLow != nil {
		d.Lower = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		d.Upper = *a.ThresholdHigh
	}
	if a.BlurSize != nil {
		d.BlurSize = *a.BlurSize
	}
	if a.BlurSigma != nil {
		d.BlurSigma = *a.BlurSigma
	}

	// The builder ignores kernels it cannot build, so validate here and
	// report the problem to the caller instead.
	if err := d.Validate(); err != nil {
		return nil, opts, fmt.Errorf("invalid detector settings: %w", err)
	}
	kernel, err := d.Kernel()
	if err != nil {
		return nil, opts, fmt.Errorf("invalid blur (size %d, sigma %v): %w", d.BlurSize, d.BlurSigma, err)
	}

	opts.Params = canny.NewBuilder().
		LowerThreshold(d.Lower).
		UpperThreshold(d.Upper).
		Kernel(kernel).
		Build()
	return img, opts, nil
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, opts, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, opts)
}

func (s *Server) handleImageGradient(args json.RawMessage) (interface{}, error) {
	var a edgeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, opts, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	return imaging.Gradient(img, opts)
}

type imageEdgeOverlayArgs struct {
	edgeArgs
	Color string `json:"color"`
}

func (s *Server) handleImageEdgeOverlay(args json.RawMessage) (interface{}, error) {
	var a imageEdgeOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, opts, err := s.resolve(a.edgeArgs)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeOverlay(img, opts, a.Color)
}
