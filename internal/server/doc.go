// Package server implements the MCP (Model Context Protocol) server for
// blueprint area extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the batch
// pipeline through the MCP protocol, so an MCP client can process plans,
// inspect rows, preview images and export the table.
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
//   - blueprint_process: Process an image, folder or zip archive
//   - blueprint_results: List the current rows
//   - blueprint_preview: Scaled PNG of one processed image
//   - blueprint_export: Write the rows to an .xlsx workbook
//   - blueprint_clear: Discard the rows
//
// # Session
//
// The server owns a single batch.Session. Each blueprint_process call
// replaces its rows. Previews decode images lazily through the session's
// image cache. Requests are handled sequentially.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
package server
