package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/outpost/components"
	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/evolution"
)

const (
	spawnClearance = 10 // Half extent of the area that must be clear
	spawnProbeStep = 5
)

// SpawnPlacer picks spawn points on the map edges.
type SpawnPlacer struct {
	grid     *TerrainGrid
	margin   float32
	attempts int
	rng      *rand.Rand
}

// NewSpawnPlacer creates a placer for the grid.
func NewSpawnPlacer(grid *TerrainGrid, cfg config.AlienConfig, rng *rand.Rand) *SpawnPlacer {
	return &SpawnPlacer{
		grid:     grid,
		margin:   float32(cfg.SpawnMargin),
		attempts: cfg.SpawnAttempts,
		rng:      rng,
	}
}

// Place returns a clear point on the given edge. When no attempt finds a
// clear spot it falls back to the passable cell nearest the map centre and
// reports ok=false.
func (s *SpawnPlacer) Place(side evolution.Side) (x, y float32, ok bool) {
	w, h := s.grid.Width(), s.grid.Height()
	for i := 0; i < s.attempts; i++ {
		x, y = s.edgePoint(side, w, h)
		if s.grid.AreaClear(x, y, spawnClearance, spawnProbeStep) {
			return x, y, true
		}
	}

	col, row := s.grid.NearestPassable(s.grid.Cols()/2, s.grid.Rows()/2)
	if col < 0 {
		return w / 2, h / 2, false
	}
	x, y = s.grid.CellCenter(col, row)
	return x, y, false
}

func (s *SpawnPlacer) edgePoint(side evolution.Side, w, h float32) (float32, float32) {
	along := func(length float32) float32 {
		span := length - 2*s.margin
		if span <= 0 {
			return length / 2
		}
		return s.margin + s.rng.Float32()*span
	}
	switch side {
	case evolution.SideRight:
		return w - s.margin, along(h)
	case evolution.SideBottom:
		return along(w), h - s.margin
	case evolution.SideLeft:
		return s.margin, along(h)
	default:
		return along(w), s.margin
	}
}

// GuidePoints returns the genome-shaped intermediate points between a spawn
// point and the base. Each point is offset perpendicular to the straight
// line by sin(i*variation)*amplitude, tapering to zero at the base, and kept
// inside the map.
func GuidePoints(fromX, fromY, baseX, baseY float32, p evolution.Phenotype, segments int, w, h, inset float32) []components.Position {
	dx, dy := baseX-fromX, baseY-fromY
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 1e-3 || segments < 2 {
		return nil
	}
	nx, ny := -dy/length, dx/length

	points := make([]components.Position, 0, segments-1)
	for i := 1; i < segments; i++ {
		t := float32(i) / float32(segments)
		offset := float32(math.Sin(float64(i)*p.PathVariation)*p.PathAmplitude) * (1 - t)
		x := fromX + dx*t + nx*offset
		y := fromY + dy*t + ny*offset
		points = append(points, components.Position{
			X: clampf(x, inset, w-inset),
			Y: clampf(y, inset, h-inset),
		})
	}
	return points
}

// PlanRoute routes from a spawn point through the genome's guide points to
// the base with A*. Unreachable guide points are skipped. If the base
// itself is unreachable the route heads straight for it.
func (a *AStarPlanner) PlanRoute(fromX, fromY, baseX, baseY float32, p evolution.Phenotype, segments int) []components.Position {
	g := a.grid
	guides := GuidePoints(fromX, fromY, baseX, baseY, p, segments, g.Width(), g.Height(), 2*g.CellSize())
	guides = append(guides, components.Position{X: baseX, Y: baseY})

	var route []components.Position
	curX, curY := fromX, fromY
	for i, gp := range guides {
		leg := a.FindPath(curX, curY, gp.X, gp.Y)
		if leg == nil {
			if i == len(guides)-1 {
				route = append(route, gp)
			}
			continue
		}
		if len(route) > 0 && len(leg) > 0 && route[len(route)-1] == leg[0] {
			leg = leg[1:]
		}
		route = append(route, leg...)
		curX, curY = gp.X, gp.Y
		if len(leg) > 0 {
			last := leg[len(leg)-1]
			curX, curY = last.X, last.Y
		}
	}

	// Finish on the exact base point so the goal radius is reachable.
	if n := len(route); n == 0 || route[n-1].X != baseX || route[n-1].Y != baseY {
		route = append(route, components.Position{X: baseX, Y: baseY})
	}
	return route
}

func clampf(v, lo, hi float32) float32 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return max(lo, min(hi, v))
}
