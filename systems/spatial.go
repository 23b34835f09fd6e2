package systems

// MaxQueryResults caps the candidates returned by one range query.
const MaxQueryResults = 128

// TargetGrid buckets target candidates by cell so a turret only tests
// aliens in the cells its range overlaps.
type TargetGrid struct {
	cellSize   float32
	cols       int
	rows       int
	cells      [][]int32 // Candidate indices per cell
	candidates []TargetCandidate
}

// NewTargetGrid creates a grid covering a width x height canvas.
func NewTargetGrid(width, height, cellSize float32) *TargetGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 4)
	}

	return &TargetGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Rebuild clears the grid and buckets candidates. The grid keeps the
// slice, so later writes to a candidate's Down flag are seen by queries.
func (g *TargetGrid) Rebuild(candidates []TargetCandidate) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.candidates = candidates
	for i, c := range candidates {
		idx := g.cellIndex(c.X, c.Y)
		g.cells[idx] = append(g.cells[idx], int32(i))
	}
}

// QueryRadiusInto appends the indices of live candidates within radius of
// (x, y) to dst, up to MaxQueryResults.
func (g *TargetGrid) QueryRadiusInto(dst []int, x, y, radius float32) []int {
	radiusSq := radius * radius
	c0, r0, c1, r1 := g.cellSpan(x, y, radius)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, i := range g.cells[row*g.cols+col] {
				c := g.candidates[i]
				if c.Down {
					continue
				}
				dx, dy := c.X-x, c.Y-y
				if dx*dx+dy*dy <= radiusSq {
					dst = append(dst, int(i))
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// Nearest returns the same candidate NearestTarget would over the full
// slice, testing only the cells within rangeR of the turret.
func (g *TargetGrid) Nearest(terrain *TerrainGrid, tx, ty, rangeR float32) int {
	best := -1
	bestDist := rangeR * rangeR
	c0, r0, c1, r1 := g.cellSpan(tx, ty, rangeR)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, i := range g.cells[row*g.cols+col] {
				c := g.candidates[i]
				if c.Down {
					continue
				}
				dx, dy := c.X-tx, c.Y-ty
				d := dx*dx + dy*dy
				if d > bestDist || (d == bestDist && best >= 0 && int(i) > best) {
					continue
				}
				if terrain != nil && !terrain.HasLineOfSight(tx, ty, c.X, c.Y) {
					continue
				}
				best = int(i)
				bestDist = d
			}
		}
	}
	return best
}

// cellSpan returns the inclusive cell range overlapped by a circle.
func (g *TargetGrid) cellSpan(x, y, radius float32) (c0, r0, c1, r1 int) {
	c0 = clampInt(int((x-radius)/g.cellSize), 0, g.cols-1)
	c1 = clampInt(int((x+radius)/g.cellSize), 0, g.cols-1)
	r0 = clampInt(int((y-radius)/g.cellSize), 0, g.rows-1)
	r1 = clampInt(int((y+radius)/g.cellSize), 0, g.rows-1)
	return
}

// cellIndex returns the flat index for a canvas position, clamped to the grid.
func (g *TargetGrid) cellIndex(x, y float32) int {
	col := clampInt(int(x/g.cellSize), 0, g.cols-1)
	row := clampInt(int(y/g.cellSize), 0, g.rows-1)
	return row*g.cols + col
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
