// Package encoder turns a composited surface into a PNG or JPEG payload.
//
// PNG is lossless and always reports quality 1.0. JPEG quality is clamped to
// [0.5, 1.0] rather than rejected. Every payload is checked with content
// sniffing before it is returned.
package encoder
