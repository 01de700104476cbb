// Package server implements the MCP (Model Context Protocol) server for Canny
// edge detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the edge detector
// through the MCP protocol, so that MCP-compatible clients can ask for the
// edges of an image file and get back a mask they can look at.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Edge Detection:
//   - image_edge_detect: Canny edge mask as a PNG plus edge statistics
//   - image_gradient: Smoothed gradient magnitude preview for picking thresholds
//   - image_edge_overlay: Edges painted over the original image
//
// The edge tools share the arguments threshold_low, threshold_high,
// blur_size, blur_sigma, channel, region and region_name. Omitted values come
// from the server defaults (see config.Canny), which are also advertised as
// schema defaults in tools/list.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images keyed by absolute
// path. The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (malformed tools/call
//     params) or -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string, when there is one
//
// # Logging
//
// Requests and tool timings are logged at debug level through the
// charmbracelet/log logger passed in Options. Logs must never go to stdout.
//
// # Usage
//
//	srv := server.New(server.Options{Defaults: &cfg.Canny, Logger: logger, Version: Version})
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("Server error", "err", err)
//	}
package server
