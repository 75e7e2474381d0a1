// Package detection finds visually calm areas of a photo for caption placement.
//
// The pipeline is:
//
//  1. Grayscale conversion and Sobel gradient magnitude (package imaging)
//  2. Cell scoring: the gradient map is tiled into square cells (50px by
//     default) and each cell is scored by its mean gradient
//  3. Region finding: cells scoring at or below a threshold (the median cell
//     score by default) are grouped into 4-connected regions with a
//     breadth-first flood fill
//  4. Ranking: regions are sorted largest first; the first region's center is
//     the default caption anchor
//
// # Coordinate System
//
// Region centers are reported in grid-cell units (column, row). Use
// CellToPixel with the grid's cell size to map them back to pixels.
//
// # Determinism
//
// For a fixed input the output is identical across runs: discovery scans cells
// row-major, the fill visits neighbors left, right, up, down, and equally sized
// regions keep their discovery order.
package detection
