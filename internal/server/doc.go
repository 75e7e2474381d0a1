// Package server implements the MCP (Model Context Protocol) server for
// caption art.
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line, and
// exposes the caption pipeline as tools:
//
// Image Information:
//   - image_load: Load an image and report its metadata
//
// Placement:
//   - caption_suggest_placement: Score the photo and pick a calm anchor
//   - caption_placement_overlay: Render the scored grid over the photo
//
// Export:
//   - caption_export: Render, composite and export a captioned photo
//   - caption_export_status: Report whether an export is running
//   - caption_export_abort: Cancel the running export
//   - caption_clear_cache: Drop cached images and scaled exports
//
// Tool calls run concurrently so status and abort can reach an export in
// flight. Exports themselves are serialized by the orchestrator. When a
// caption_export request carries _meta.progressToken, each stage is reported
// as a notifications/progress message before the final response.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. A failed export is not a tool
// error: the result has success=false and a message meant for end users.
package server
