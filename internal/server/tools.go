package server

import (
	"github.com/ironsheep/canny-tools-mcp/internal/config"
	"github.com/ironsheep/canny-tools-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools. Schema defaults for the
// detector parameters are taken from defaults.
func GetToolDefinitions(defaults config.Canny) []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color model. The image stays cached for later calls.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
			}),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
			}),
		},

		// Edge Detection
		{
			Name: "image_edge_detect",
			Description: "Run Canny edge detection and return a black and white PNG with edges in white, " +
				"plus the number of edge pixels found. Thresholds apply to the gradient magnitude of the " +
				"smoothed intensity (a full black-to-white step reaches about 2.2); lower them to find fainter edges.",
			InputSchema: objectSchema(detectorProperties(defaults)),
		},
		{
			Name: "image_gradient",
			Description: "Return a grayscale preview of the smoothed gradient magnitude before thresholding, " +
				"with its maximum and mean. Use it to pick thresholds for image_edge_detect.",
			InputSchema: objectSchema(detectorProperties(defaults)),
		},
		{
			Name:        "image_edge_overlay",
			Description: "Run Canny edge detection and paint the edges over the original image in a solid color.",
			InputSchema: objectSchema(withProperties(detectorProperties(defaults), map[string]interface{}{
				"color": map[string]interface{}{
					"type":        "string",
					"description": "Edge color as #rrggbb",
					"default":     imaging.DefaultOverlayColor,
				},
			})),
		},
	}
}

func objectSchema(properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   []string{"path"},
	}
}

func withProperties(base, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// detectorProperties describes the arguments shared by the edge detection
// tools.
func detectorProperties(defaults config.Canny) map[string]interface{} {
	coord := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	return map[string]interface{}{
		"path": pathProperty(),
		"threshold_low": map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"description": "Weak edge threshold; connected pixels above it are kept",
			"default":     defaults.Lower,
		},
		"threshold_high": map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"description": "Strong edge threshold; pixels at or above it always count as edges",
			"default":     defaults.Upper,
		},
		"blur_size": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"maximum":     config.MaxBlurSize,
			"description": "Gaussian kernel size in pixels (odd)",
			"default":     defaults.BlurSize,
		},
		"blur_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian standard deviation in pixels",
			"default":     defaults.BlurSigma,
		},
		"channel": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"luma", "red", "green", "blue"},
			"description": "Intensity to detect edges on",
			"default":     "luma",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional rectangle to analyze; results are relative to its top-left corner",
			"properties": map[string]interface{}{
				"x1": coord("Left edge X coordinate (inclusive)"),
				"y1": coord("Top edge Y coordinate (inclusive)"),
				"x2": coord("Right edge X coordinate (exclusive)"),
				"y2": coord("Bottom edge Y coordinate (exclusive)"),
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"region_name": map[string]interface{}{
			"type": "string",
			"enum": []string{
				"top-left", "top-right", "bottom-left", "bottom-right",
				"top-half", "bottom-half", "left-half", "right-half", "center",
			},
			"description": "Named region to analyze instead of region",
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(s.defaults),
		},
	}
}
