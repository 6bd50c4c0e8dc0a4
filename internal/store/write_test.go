package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletml/internal/sim"
)

func TestWriteRun_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"run-b", "run-a", "run-c"} {
		seq, err := s.WriteRun(ctx, Run{ID: id, DocHash: "h", Document: "<bulletml/>", Frames: 1, Config: sim.DefaultConfig()})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestWriteRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := Run{ID: "dup", DocHash: "h", Document: "<bulletml/>", Config: sim.DefaultConfig()}

	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, run)
	assert.Error(t, err)
}

func TestWriteRun_ConfigRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cfg := sim.DefaultConfig()
	cfg.Seed = 1<<63 + 5
	cfg.Rank = 0.3
	cfg.Origin = sim.Point{X: 120, Y: 40}
	cfg.Target = sim.Point{X: 120.5, Y: 400.25}
	cfg.Mirrored = true
	cfg.Bounds = &sim.Rect{MinX: -10, MinY: -10, MaxX: 250, MaxY: 330}
	cfg.Action = "shoot"
	cfg.Params = []float64{1.5, -2}
	cfg.SequenceFallback = "aim"
	cfg.StepQuota = 500

	_, err := s.WriteRun(ctx, Run{ID: "cfg", DocHash: "h", Document: "<bulletml/>", Frames: 60, Config: cfg})
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "cfg")
	require.NoError(t, err)
	assert.Equal(t, cfg, got.Config)
	assert.Equal(t, cfg.Seed, got.Seed)
	assert.Equal(t, 0.3, got.Rank)
	assert.Equal(t, 60, got.Frames)
	assert.Equal(t, int64(1), got.Seq)
}

func TestRecorder_WritesFramesInOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.WriteRun(ctx, Run{ID: "r", DocHash: "h", Document: "<bulletml/>", Config: sim.DefaultConfig()})
	require.NoError(t, err)

	rec, err := s.RunRecorder(ctx, "r")
	require.NoError(t, err)
	frame1 := []sim.Event{
		{Frame: 1, Kind: sim.EventFire, BulletID: "b2", ParentID: "b1", X: 1, Y: 2, Direction: 90, Speed: 1.5},
		{Frame: 1, Kind: sim.EventFire, BulletID: "b3", ParentID: "b1", X: 1, Y: 2, Direction: 180, Speed: 1.5},
	}
	frame2 := []sim.Event{
		{Frame: 2, Kind: sim.EventError, BulletID: "b2", ParentID: "b1", Code: "EXPRESSION", Message: "boom"},
	}
	require.NoError(t, rec.RecordFrame(ctx, 1, frame1))
	require.NoError(t, rec.RecordFrame(ctx, 2, frame2))

	// A second recorder continues after the stored events.
	rec2, err := s.RunRecorder(ctx, "r")
	require.NoError(t, err)
	frame3 := []sim.Event{{Frame: 3, Kind: sim.EventVanish, BulletID: "b3", ParentID: "b1"}}
	require.NoError(t, rec2.RecordFrame(ctx, 3, frame3))

	got, err := s.ReadEvents(ctx, "r")
	require.NoError(t, err)
	want := append(append(append([]sim.Event{}, frame1...), frame2...), frame3...)
	assert.Equal(t, want, got)

	counts, err := s.CountEvents(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, map[sim.EventKind]int{sim.EventFire: 2, sim.EventError: 1, sim.EventVanish: 1}, counts)
}

func TestRecorder_UnknownRunFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec, err := s.RunRecorder(ctx, "ghost")
	require.NoError(t, err)
	err = rec.RecordFrame(ctx, 1, []sim.Event{{Frame: 1, Kind: sim.EventFire, BulletID: "b2"}})
	assert.Error(t, err, "foreign key on run_id")

	events, err := s.ReadEvents(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, events)
}
