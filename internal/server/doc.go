// Package server implements the MCP (Model Context Protocol) server for
// hydrangea counting.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to the zerolog logger passed to New, never to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Counting:
//   - hydrangea_count: Run the full pipeline on one image
//   - hydrangea_defaults: Show the active and built-in configuration
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// # Image Caching
//
// image_load and image_dimensions share an in-memory cache keyed by path.
// hydrangea_count always decodes the file again, so counting runs share no
// state. Without output_dir the stage images are kept in memory and dropped
// after the call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(config.Default(), logger.NewConsole(os.Stderr, zerolog.InfoLevel), version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
