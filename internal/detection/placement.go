package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/caption-art/internal/imaging"
)

// DefaultCellSize is the side length, in pixels, of a placement grid cell.
const DefaultCellSize = 50

// GridCell is one tile of the placement grid.
type GridCell struct {
	Col int `json:"col"`
	Row int `json:"row"`

	// Score is the mean gradient magnitude over the pixels the cell covers.
	Score float64 `json:"score"`
}

// Grid is the scored tiling of an image. Cells are stored row-major.
type Grid struct {
	Cols     int        `json:"cols"`
	Rows     int        `json:"rows"`
	CellSize int        `json:"cell_size"`
	Cells    []GridCell `json:"cells"`
}

// Region is a maximal 4-connected group of calm (low-gradient) cells.
type Region struct {
	// CenterX and CenterY are the mean column and row of the region's
	// cells, in grid-cell units.
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`

	// Size is the number of cells in the region (always >= 1).
	Size int `json:"size"`

	// Cells lists the region's cells in flood-fill visitation order.
	Cells []GridCell `json:"cells,omitempty"`
}

// ScoreCells tiles the gradient map into cellSize×cellSize squares and scores
// each by its mean gradient magnitude.
//
// The grid has ceil(width/cellSize) columns and ceil(height/cellSize) rows.
// Tiles on the right and bottom edge are truncated to the image and average
// over the pixels they actually cover.
func ScoreCells(grad *imaging.GradientMap, cellSize int) (*Grid, error) {
	if grad == nil || grad.Width <= 0 || grad.Height <= 0 {
		return nil, fmt.Errorf("%w: empty gradient map", imaging.ErrInvalidSurface)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}

	cols := (grad.Width + cellSize - 1) / cellSize
	rows := (grad.Height + cellSize - 1) / cellSize
	cells := make([]GridCell, 0, cols*rows)

	for row := 0; row < rows; row++ {
		y0 := row * cellSize
		y1 := min(y0+cellSize, grad.Height)
		for col := 0; col < cols; col++ {
			x0 := col * cellSize
			x1 := min(x0+cellSize, grad.Width)

			var sum float64
			count := 0
			for y := y0; y < y1; y++ {
				base := y * grad.Width
				for x := x0; x < x1; x++ {
					sum += grad.Values[base+x]
					count++
				}
			}

			score := 0.0
			if count > 0 {
				score = sum / float64(count)
			}
			cells = append(cells, GridCell{Col: col, Row: row, Score: score})
		}
	}

	return &Grid{Cols: cols, Rows: rows, CellSize: cellSize, Cells: cells}, nil
}

// MedianScore returns the median cell score. For an even number of cells the
// upper of the two middle values is used, so the threshold is always a score
// some cell actually has.
func MedianScore(cells []GridCell) float64 {
	if len(cells) == 0 {
		return 0
	}
	scores := make([]float64, len(cells))
	for i, c := range cells {
		scores[i] = c.Score
	}
	sort.Float64s(scores)
	return scores[len(scores)/2]
}

// FindRegions groups calm cells using the median cell score as threshold.
func FindRegions(cells []GridCell, cols, rows int) []Region {
	return FindRegionsBelow(cells, cols, rows, MedianScore(cells))
}

// FindRegionsBelow groups every cell with score <= threshold into maximal
// 4-connected regions and returns them largest first.
//
// Parameters:
//   - cells: Scored cells, typically Grid.Cells. Order does not matter.
//   - cols, rows: Grid dimensions. Cells whose coordinates fall outside
//     cols×rows are ignored.
//   - threshold: Maximum score of a calm cell, inclusive.
//
// Returns:
//   - []Region: Regions sorted by Size, largest first. Empty (not nil) when
//     no cell is calm; nil when the grid itself is empty.
//
// # Determinism
//
// Discovery scans row-major and the breadth-first fill visits neighbors in
// the order left, right, up, down, so the output is reproducible for a given
// input. Regions of equal size keep their discovery order.
func FindRegionsBelow(cells []GridCell, cols, rows int, threshold float64) []Region {
	if cols <= 0 || rows <= 0 || len(cells) == 0 {
		return nil
	}

	grid := make([]*GridCell, cols*rows)
	for i := range cells {
		c := &cells[i]
		if c.Col < 0 || c.Col >= cols || c.Row < 0 || c.Row >= rows {
			continue
		}
		grid[c.Row*cols+c.Col] = c
	}

	calm := func(col, row int) bool {
		if col < 0 || col >= cols || row < 0 || row >= rows {
			return false
		}
		c := grid[row*cols+col]
		return c != nil && c.Score <= threshold
	}

	neighbors := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	visited := make([]bool, cols*rows)
	regions := make([]Region, 0)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			start := row*cols + col
			if visited[start] || !calm(col, row) {
				continue
			}

			visited[start] = true
			queue := []int{start}
			var members []GridCell
			var sumCol, sumRow float64

			for len(queue) > 0 {
				idx := queue[0]
				queue = queue[1:]

				c := *grid[idx]
				members = append(members, c)
				sumCol += float64(c.Col)
				sumRow += float64(c.Row)

				for _, d := range neighbors {
					nc, nr := c.Col+d[0], c.Row+d[1]
					if !calm(nc, nr) {
						continue
					}
					n := nr*cols + nc
					if visited[n] {
						continue
					}
					visited[n] = true
					queue = append(queue, n)
				}
			}

			regions = append(regions, Region{
				CenterX: sumCol / float64(len(members)),
				CenterY: sumRow / float64(len(members)),
				Size:    len(members),
				Cells:   members,
			})
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Size > regions[j].Size
	})

	return regions
}

// Placement is an auto-placement suggestion for a caption.
type Placement struct {
	Grid    *Grid    `json:"-"`
	Regions []Region `json:"regions"`

	// AnchorX and AnchorY are the pixel center of the largest calm region.
	AnchorX int `json:"anchor_x"`
	AnchorY int `json:"anchor_y"`

	// TextColor is "#000000" or "#ffffff", whichever contrasts more with the
	// anchor region's average color.
	TextColor string `json:"text_color"`

	Threshold float64 `json:"threshold"`
}

// SuggestPlacement runs grayscale conversion, gradient analysis, cell scoring
// and region finding on a surface and picks the largest calm region as the
// caption anchor.
//
// An image with no calm region (impossible with the median threshold unless
// the image is empty) anchors at its center.
func SuggestPlacement(s *imaging.Surface, cellSize int) (*Placement, error) {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	gray, err := imaging.ToGrayscale(s)
	if err != nil {
		return nil, err
	}
	grad, err := imaging.GradientMagnitude(gray)
	if err != nil {
		return nil, err
	}
	grid, err := ScoreCells(grad, cellSize)
	if err != nil {
		return nil, err
	}

	threshold := MedianScore(grid.Cells)
	regions := FindRegionsBelow(grid.Cells, grid.Cols, grid.Rows, threshold)

	p := &Placement{
		Grid:      grid,
		Regions:   regions,
		AnchorX:   s.Width / 2,
		AnchorY:   s.Height / 2,
		Threshold: threshold,
	}

	area := image.Rect(0, 0, s.Width, s.Height)
	if len(regions) > 0 {
		best := regions[0]
		p.AnchorX = CellToPixel(best.CenterX, cellSize, s.Width)
		p.AnchorY = CellToPixel(best.CenterY, cellSize, s.Height)
		area = regionBounds(best, cellSize).Intersect(area)
	}
	p.TextColor = imaging.HexString(imaging.ContrastingColor(imaging.MeanColor(s, area)))

	return p, nil
}

// CellToPixel maps a (possibly fractional) cell coordinate to the pixel at
// the center of that cell, clamped to [0, limit).
func CellToPixel(cell float64, cellSize, limit int) int {
	px := int(math.Round(cell*float64(cellSize) + float64(cellSize)/2))
	return max(0, min(px, limit-1))
}

// regionBounds returns the pixel rectangle enclosing all cells of a region.
func regionBounds(r Region, cellSize int) image.Rectangle {
	var b image.Rectangle
	for i, c := range r.Cells {
		cell := image.Rect(c.Col*cellSize, c.Row*cellSize, (c.Col+1)*cellSize, (c.Row+1)*cellSize)
		if i == 0 {
			b = cell
		} else {
			b = b.Union(cell)
		}
	}
	return b
}
