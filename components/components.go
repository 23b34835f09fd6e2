// Package components defines ECS components for live aliens and turrets.
package components

import "github.com/pthm-cable/outpost/evolution"

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Motion holds an alien's ground speed.
type Motion struct {
	Speed   float32 // Pixels per second
	Heading float32 // Radians, for rendering
}

// Vitals holds an alien's combat state.
type Vitals struct {
	Health    float32
	MaxHealth float32
	Armor     float32
	Radius    float32
}

// Lineage links a live alien to the genome it was spawned from.
type Lineage struct {
	Genome evolution.Genome
	Wave   int
}

// Route is the waypoint list an alien follows toward the base.
type Route struct {
	Waypoints []Position
	Index     int
}

// Remaining returns how many waypoints are left, including the current one.
func (r *Route) Remaining() int {
	return max(0, len(r.Waypoints)-r.Index)
}

// Progress accumulates the raw outcome of an alien instance.
type Progress struct {
	Distance    float32 // Pixels travelled
	Ticks       int
	Captured    int // Territory cells claimed
	ReachedGoal bool
}

// TurretKind selects a row of the turret table.
type TurretKind uint8

const (
	TurretLaser TurretKind = iota
	TurretPlasma
	TurretQuantum
	NumTurretKinds
)

var turretKindNames = [NumTurretKinds]string{"laser", "plasma", "quantum"}

func (k TurretKind) String() string {
	if k < NumTurretKinds {
		return turretKindNames[k]
	}
	return "unknown"
}

// Turret is a defensive emplacement.
type Turret struct {
	Kind     TurretKind
	Cooldown float32 // Seconds until the next shot
	Shots    int
	Kills    int
}
