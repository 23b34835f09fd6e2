package systems

import (
	"math"

	"github.com/pthm-cable/outpost/components"
)

// StepAlien advances an alien along its route for dt seconds and returns
// the distance moved. The alien never overshoots a waypoint.
func StepAlien(pos *components.Position, mot *components.Motion, route *components.Route, arrival, dt float32) float32 {
	budget := mot.Speed * dt
	moved := float32(0)

	for budget > 0 {
		wpX, wpY, ok := NextWaypoint(route, pos.X, pos.Y, arrival)
		if !ok {
			break
		}
		dx, dy := wpX-pos.X, wpY-pos.Y
		dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if dist < 1e-4 {
			if route.Index >= len(route.Waypoints)-1 {
				break
			}
			route.Index++
			continue
		}

		step := min(budget, dist)
		pos.X += dx / dist * step
		pos.Y += dy / dist * step
		mot.Heading = float32(math.Atan2(float64(dy), float64(dx)))
		moved += step
		budget -= step

		if step < dist {
			break
		}
	}

	return moved
}

// WithinRadius reports whether two points are no further apart than r.
func WithinRadius(x1, y1, x2, y2, r float32) bool {
	dx, dy := x2-x1, y2-y1
	return dx*dx+dy*dy <= r*r
}
