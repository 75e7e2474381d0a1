// Package imaging provides the raster primitives of the caption pipeline.
//
// It defines Surface, the in-memory RGBA raster every other package passes
// around, plus the operations that only read pixels: grayscale conversion,
// Sobel gradient magnitude, color helpers and the placement debug overlay.
// Photos and masks are decoded from disk through ImageCache.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward.
//
// # Pixel Format
//
// Surface stores 8-bit, non-premultiplied RGBA in row-major order. Use Surface.NRGBA to get an
// *image.NRGBA view over the same buffer for standard library interop.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. A Surface is not: ownership is
// exclusive to whichever component currently holds it, and Clone is the way
// to hand pixels to another goroutine.
//
// # Error Handling
//
// Malformed or zero-sized surfaces yield errors wrapping ErrInvalidSurface.
// File I/O and decode failures are wrapped with context.
package imaging
