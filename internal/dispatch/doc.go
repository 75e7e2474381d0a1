// Package dispatch delivers encoded images through the host's save
// affordance.
//
// A Dispatcher acquires a transient handle for the payload, asks the Host to
// save it and releases the handle after a short delay. A save blocked by
// policy falls back to the host's viewer. When the viewer is blocked too the
// result asks for a manual save instead of failing.
//
// FileHost is the Host used by the binary: saves land in the output
// directory, and the viewer fallback writes into the temp directory.
package dispatch
