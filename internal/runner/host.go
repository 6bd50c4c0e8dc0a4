package runner

import (
	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
)

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=./mocks/host_mock.go -package=mocks . Host

// Host is everything a runner needs from the world it runs in.
type Host interface {
	// Rank is the difficulty in [0, 1]. It is read once per Step.
	Rank() float64

	// Rand returns a uniform draw in [0, 1). Called once per $rand.
	Rand() float64

	// Target is the aim point, usually the player.
	Target() (x, y float64)

	// DefaultSpeed is used for a fire with no speed anywhere.
	DefaultSpeed() float64

	// CreateBullet spawns a bullet. An empty req.Program is a simple bullet.
	CreateBullet(req SpawnRequest) BulletHandle

	// Vanish removes the bullet owning state.
	Vanish(state *bullet.State)
}

// BulletHandle is whatever the host uses to identify a spawned bullet. The
// runner does not inspect it.
type BulletHandle any

// Program is what a spawned bullet runs: a set of actions started as
// parallel threads, all seeing Params as $1..$N.
type Program struct {
	Actions []ir.ActionSource
	Params  []float64
}

// Empty reports whether the program has no actions.
func (p Program) Empty() bool { return len(p.Actions) == 0 }

// SpawnRequest describes a bullet created by <fire>.
type SpawnRequest struct {
	// Bullet is the resolved definition; never nil.
	Bullet *ir.BulletDef

	Program Program

	// X and Y are the position of the firing bullet.
	X, Y float64

	Direction float64
	Speed     float64
	Mirrored  bool
}
