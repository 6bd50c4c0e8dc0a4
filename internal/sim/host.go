package sim

import (
	"math/rand/v2"

	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/runner"
)

// host adapts the world for one bullet during one frame. It only reads
// world state and writes its own fields, so bullets can be stepped in
// parallel.
type host struct {
	cfg    *Config
	rng    *rand.Rand
	spawns []runner.SpawnRequest
}

func (h *host) Rank() float64              { return h.cfg.Rank }
func (h *host) Rand() float64              { return h.rng.Float64() }
func (h *host) Target() (float64, float64) { return h.cfg.Target.X, h.cfg.Target.Y }
func (h *host) DefaultSpeed() float64      { return h.cfg.DefaultSpeed }
func (h *host) Vanish(*bullet.State)       {}

func (h *host) CreateBullet(req runner.SpawnRequest) runner.BulletHandle {
	h.spawns = append(h.spawns, req)
	return len(h.spawns) - 1
}
