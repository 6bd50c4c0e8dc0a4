package runner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
	"github.com/roach88/bulletml/internal/testutil"
)

// fakeHost records spawns and vanishes.
type fakeHost struct {
	rank         float64
	rand         *testutil.ScriptedRand
	tx, ty       float64
	defaultSpeed float64

	spawned  []SpawnRequest
	spawnAt  []int
	vanished []*bullet.State
	step     int
}

func (h *fakeHost) Rank() float64 { return h.rank }

func (h *fakeHost) Rand() float64 {
	if h.rand == nil {
		return 0
	}
	return h.rand.Next()
}

func (h *fakeHost) Target() (float64, float64) { return h.tx, h.ty }
func (h *fakeHost) DefaultSpeed() float64     { return h.defaultSpeed }

func (h *fakeHost) CreateBullet(req SpawnRequest) BulletHandle {
	h.spawned = append(h.spawned, req)
	h.spawnAt = append(h.spawnAt, h.step)
	return len(h.spawned)
}

func (h *fakeHost) Vanish(s *bullet.State) {
	h.vanished = append(h.vanished, s)
}

// stepN steps r n times and returns the last status.
func (h *fakeHost) stepN(t *testing.T, r *Runner, n int) Status {
	t.Helper()
	var st Status
	for i := 0; i < n; i++ {
		h.step++
		var err error
		st, err = r.Step(h)
		require.NoError(t, err, "step %d", h.step)
	}
	return st
}

func directions(reqs []SpawnRequest) []float64 {
	out := make([]float64, len(reqs))
	for i, r := range reqs {
		out[i] = r.Direction
	}
	return out
}

func speeds(reqs []SpawnRequest) []float64 {
	out := make([]float64, len(reqs))
	for i, r := range reqs {
		out[i] = r.Speed
	}
	return out
}

func mustTable(t *testing.T, src string) *ir.Table {
	t.Helper()
	doc, err := parser.ParseString(src)
	require.NoError(t, err)
	table, err := ir.NewTable(doc)
	require.NoError(t, err)
	return table
}

// bml wraps body in a vertical document.
func bml(body string) string {
	return `<bulletml type="vertical">` + body + `</bulletml>`
}

func newTopRunner(t *testing.T, body string, opts ...Option) (*Runner, *fakeHost) {
	t.Helper()
	table := mustTable(t, bml(body))
	r := NewTop(table, bullet.New(0, 0, 180, 1, false), opts...)
	return r, &fakeHost{defaultSpeed: 1, ty: 100}
}
