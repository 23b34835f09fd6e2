package systems

import (
	"container/heap"
	"math"

	"github.com/pthm-cable/outpost/components"
)

// AStarPlanner finds routes over the passable tiles of a terrain grid.
type AStarPlanner struct {
	grid *TerrainGrid

	// Reusable data structures (cleared between searches)
	openHeap  *nodeHeap
	closedSet map[int]struct{}
	cameFrom  map[int]int
	gScore    map[int]float32
}

// astarNode is a node in the A* search.
type astarNode struct {
	col, row int
	f        float32 // f = g + h (priority)
	index    int     // Heap index
}

// nodeHeap implements heap.Interface for A* open set.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// NewAStarPlanner creates a planner over the grid.
func NewAStarPlanner(grid *TerrainGrid) *AStarPlanner {
	return &AStarPlanner{
		grid:      grid,
		openHeap:  &nodeHeap{},
		closedSet: make(map[int]struct{}, 256),
		cameFrom:  make(map[int]int, 256),
		gScore:    make(map[int]float32, 256),
	}
}

// Grid returns the terrain the planner searches.
func (a *AStarPlanner) Grid() *TerrainGrid { return a.grid }

// neighbours8 lists cardinal moves first, then diagonals.
var neighbours8 = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// FindPath computes a path from start to goal using A*.
// Blocked endpoints are moved to the nearest passable cell.
// Returns waypoints at cell centres, or nil if no path exists.
func (a *AStarPlanner) FindPath(startX, startY, goalX, goalY float32) []components.Position {
	g := a.grid

	startCol, startRow := g.CellAt(startX, startY)
	goalCol, goalRow := g.CellAt(goalX, goalY)
	startCol, startRow = clampCell(g, startCol, startRow)
	goalCol, goalRow = clampCell(g, goalCol, goalRow)

	if !g.IsPassable(startCol, startRow) {
		startCol, startRow = g.NearestPassable(startCol, startRow)
		if startCol < 0 {
			return nil
		}
	}
	if !g.IsPassable(goalCol, goalRow) {
		goalCol, goalRow = g.NearestPassable(goalCol, goalRow)
		if goalCol < 0 {
			return nil
		}
	}

	// Same cell - no path needed
	if startCol == goalCol && startRow == goalRow {
		x, y := g.CellCenter(goalCol, goalRow)
		return []components.Position{{X: x, Y: y}}
	}

	*a.openHeap = (*a.openHeap)[:0]
	clear(a.closedSet)
	clear(a.cameFrom)
	clear(a.gScore)

	startID := startRow*g.cols + startCol
	goalID := goalRow*g.cols + goalCol

	a.gScore[startID] = 0
	heap.Push(a.openHeap, &astarNode{col: startCol, row: startRow, f: heuristic(startCol, startRow, goalCol, goalRow)})

	maxIterations := g.cols * g.rows * 4
	for iterations := 0; a.openHeap.Len() > 0 && iterations < maxIterations; iterations++ {
		current := heap.Pop(a.openHeap).(*astarNode)
		currentID := current.row*g.cols + current.col

		if currentID == goalID {
			return a.reconstructPath(startID, goalID)
		}
		if _, done := a.closedSet[currentID]; done {
			continue
		}
		a.closedSet[currentID] = struct{}{}

		for i, d := range neighbours8 {
			nc, nr := current.col+d[0], current.row+d[1]
			if !g.IsPassable(nc, nr) {
				continue
			}

			diagonal := i >= 4
			// No corner cutting
			if diagonal && (!g.IsPassable(current.col+d[0], current.row) || !g.IsPassable(current.col, current.row+d[1])) {
				continue
			}

			neighbourID := nr*g.cols + nc
			if _, done := a.closedSet[neighbourID]; done {
				continue
			}

			moveCost := float32(1.0)
			if diagonal {
				moveCost = math.Sqrt2
			}
			tentativeG := a.gScore[currentID] + moveCost

			if existingG, ok := a.gScore[neighbourID]; ok && tentativeG >= existingG {
				continue
			}

			a.cameFrom[neighbourID] = currentID
			a.gScore[neighbourID] = tentativeG
			heap.Push(a.openHeap, &astarNode{col: nc, row: nr, f: tentativeG + heuristic(nc, nr, goalCol, goalRow)})
		}
	}

	return nil
}

func clampCell(g *TerrainGrid, col, row int) (int, int) {
	return max(0, min(g.cols-1, col)), max(0, min(g.rows-1, row))
}

// heuristic computes the Euclidean distance heuristic for A*.
func heuristic(c1, r1, c2, r2 int) float32 {
	dx := float64(c2 - c1)
	dy := float64(r2 - r1)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// reconstructPath builds the path from cameFrom map.
func (a *AStarPlanner) reconstructPath(startID, goalID int) []components.Position {
	var ids []int
	for current := goalID; ; {
		ids = append(ids, current)
		if current == startID {
			break
		}
		prev, ok := a.cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}

	path := make([]components.Position, len(ids))
	for i := range ids {
		id := ids[len(ids)-1-i]
		x, y := a.grid.CellCenter(id%a.grid.cols, id/a.grid.cols)
		path[i] = components.Position{X: x, Y: y}
	}

	return a.simplifyPath(path)
}

// simplifyPath drops waypoints that can be skipped in a straight line.
func (a *AStarPlanner) simplifyPath(path []components.Position) []components.Position {
	if len(path) <= 2 {
		return path
	}

	simplified := make([]components.Position, 0, len(path))
	simplified = append(simplified, path[0])
	anchor := path[0]

	for i := 1; i < len(path)-1; i++ {
		next := path[i+1]
		if !a.grid.HasLineOfSight(anchor.X, anchor.Y, next.X, next.Y) {
			simplified = append(simplified, path[i])
			anchor = path[i]
		}
	}

	simplified = append(simplified, path[len(path)-1])
	return simplified
}

// NextWaypoint returns the waypoint to steer toward, advancing the route
// when the position is within arrivalDist of the current one.
func NextWaypoint(route *components.Route, posX, posY, arrivalDist float32) (wpX, wpY float32, ok bool) {
	for route.Index < len(route.Waypoints) {
		wp := route.Waypoints[route.Index]
		dx := wp.X - posX
		dy := wp.Y - posY
		if dx*dx+dy*dy >= arrivalDist*arrivalDist || route.Index == len(route.Waypoints)-1 {
			return wp.X, wp.Y, true
		}
		route.Index++
	}
	return posX, posY, false
}
