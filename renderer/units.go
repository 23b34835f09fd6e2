package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outpost/components"
	"github.com/pthm-cable/outpost/game"
)

var turretColors = [components.NumTurretKinds]rl.Color{
	components.TurretLaser:   {R: 80, G: 200, B: 255, A: 255},
	components.TurretPlasma:  {R: 255, G: 140, B: 40, A: 255},
	components.TurretQuantum: {R: 230, G: 90, B: 255, A: 255},
}

var (
	alienColor = rl.Color{R: 220, G: 60, B: 60, A: 255}
	routeColor = rl.Color{R: 255, G: 255, B: 255, A: 60}
	baseColor  = rl.Color{R: 240, G: 220, B: 80, A: 255}
)

// TurretColor returns the color for a turret kind.
func TurretColor(k components.TurretKind) rl.Color {
	if k < components.NumTurretKinds {
		return turretColors[k]
	}
	return rl.White
}

// DrawAliens draws every live alien as an oriented triangle with a health bar.
func DrawAliens(aliens []game.AlienView, showRoutes bool) {
	for _, a := range aliens {
		if showRoutes && len(a.Route) > 0 {
			prev := rl.Vector2{X: a.X, Y: a.Y}
			for _, wp := range a.Route {
				next := rl.Vector2{X: wp.X, Y: wp.Y}
				rl.DrawLineV(prev, next, routeColor)
				prev = next
			}
		}

		radius := max(a.Radius, 3)
		drawOrientedTriangle(a.X, a.Y, a.Heading, radius, alienColor)
		drawHealthBar(a.X, a.Y-radius*1.8, radius*2, a.HealthFrac)
	}
}

func drawHealthBar(cx, y, width, frac float32) {
	x := cx - width/2
	rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: width, Y: 2}, rl.Color{R: 40, G: 40, B: 40, A: 200})

	fill := rl.Green
	if frac < 0.3 {
		fill = rl.Red
	} else if frac < 0.6 {
		fill = rl.Yellow
	}
	rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: width * frac, Y: 2}, fill)
}

// DrawTurrets draws every turret, optionally with its range ring.
func DrawTurrets(turrets []game.TurretView, showRange bool) {
	for _, t := range turrets {
		color := TurretColor(t.Kind)
		if showRange {
			ring := color
			ring.A = 50
			rl.DrawCircleLines(int32(t.X), int32(t.Y), t.Range, ring)
		}
		rl.DrawRectangle(int32(t.X)-5, int32(t.Y)-5, 10, 10, rl.DarkGray)
		if !t.Ready {
			color.A = 120
		}
		rl.DrawCircle(int32(t.X), int32(t.Y), 4, color)
	}
}

// DrawBeams draws recent shots, fading with their remaining lifetime.
func DrawBeams(beams []game.Beam, ttl float32) {
	for _, b := range beams {
		color := TurretColor(b.Kind)
		if ttl > 0 {
			color.A = uint8(255 * min(1, b.TTL/ttl))
		}
		rl.DrawLineEx(rl.Vector2{X: b.FromX, Y: b.FromY}, rl.Vector2{X: b.ToX, Y: b.ToY}, 2, color)
	}
}

// DrawBase draws the defended base with its goal radius.
func DrawBase(x, y, goalRadius float32, lives int) {
	rl.DrawCircleLines(int32(x), int32(y), goalRadius, rl.Color{R: 240, G: 220, B: 80, A: 90})
	rl.DrawPoly(rl.Vector2{X: x, Y: y}, 6, 12, 0, baseColor)
	if lives <= 0 {
		rl.DrawPolyLinesEx(rl.Vector2{X: x, Y: y}, 6, 14, 0, 2, rl.Red)
	}
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	front := rl.Vector2{X: x + cos*radius*1.5, Y: y + sin*radius*1.5}

	backAngle := float64(heading) + math.Pi*0.8
	backLeft := rl.Vector2{X: x + float32(math.Cos(backAngle))*radius, Y: y + float32(math.Sin(backAngle))*radius}

	backAngle = float64(heading) - math.Pi*0.8
	backRight := rl.Vector2{X: x + float32(math.Cos(backAngle))*radius, Y: y + float32(math.Sin(backAngle))*radius}

	// DrawTriangle requires counter-clockwise winding
	rl.DrawTriangle(front, backRight, backLeft, color)
	rl.DrawTriangleLines(front, backLeft, backRight, rl.White)
}
