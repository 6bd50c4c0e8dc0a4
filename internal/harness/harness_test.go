package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletml/internal/sim"
)

func intPtr(n int) *int { return &n }

func TestRun_TwoShots(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/two_shots.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	assert.Equal(t, []int{1, 2, 2, 3, 2, 1, 1, 1, 1}, result.Alive)
	assert.Equal(t, 2, result.Stats.Fired)
	assert.Equal(t, 2, result.Stats.Vanished)
	assert.Equal(t, 8, result.Stats.Frames)

	kinds := make([]sim.EventKind, len(result.Events))
	for i, ev := range result.Events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []sim.EventKind{
		sim.EventSpawn, sim.EventFire, sim.EventFire, sim.EventVanish, sim.EventVanish,
	}, kinds)
}

func TestRun_MirroredCUE(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/two_shots_mirrored.cue")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_RuntimeError(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/divide_by_zero.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// The run stops once the emitter is gone.
	assert.Equal(t, []int{1, 1, 0}, result.Alive)
	assert.Equal(t, 1, result.Stats.Errors)
	n, ok := result.AliveAt(9)
	assert.True(t, ok)
	assert.Zero(t, n)
}

func TestRun_FailingAssertions(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/two_shots.yaml")
	require.NoError(t, err)
	s.Assertions = []Assertion{
		{Type: AssertFireCount, Count: intPtr(3)},
		{Type: AssertVanishedAt, Frame: 2},
		{Type: AssertAliveCount, Frame: 20, Count: intPtr(1)},
		{Type: AssertErrorCode, Code: "EXPRESSION"},
		{Type: AssertPosition, Bullet: "b3", Frame: 8},
		{Type: AssertNoErrors},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "assertions[0]: fire_count failed: expected 3 fires, got 2 fires")
	assert.Contains(t, result.Errors[1], "vanished at frame 4")
	assert.Contains(t, result.Errors[2], "run ended after frame 8")
	assert.Contains(t, result.Errors[3], "no runtime errors")
	assert.Contains(t, result.Errors[4], "bullet not alive")
}

func TestRun_InvalidDocument(t *testing.T) {
	s := &Scenario{
		Name:       "broken",
		Source:     "<bulletml><action label=\"top\"><wait>1 +</wait></action></bulletml>",
		Frames:     1,
		Assertions: []Assertion{{Type: AssertNoErrors}},
	}
	_, err := Run(s)
	assert.ErrorContains(t, err, "scenario broken")
}

func TestRun_NoTopAction(t *testing.T) {
	s := &Scenario{
		Name:       "idle",
		Source:     `<bulletml><action label="other"><vanish/></action></bulletml>`,
		Frames:     1,
		Assertions: []Assertion{{Type: AssertNoErrors}},
	}
	_, err := Run(s)
	assert.ErrorContains(t, err, "no top action")

	s.Action = "other"
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, 1, result.Stats.Vanished)
}

func TestRun_SeedChangesTrace(t *testing.T) {
	src := `<bulletml>
<action label="top">
	<repeat><times>4</times><action>
		<fire><direction type="absolute">$rand * 360</direction><bullet/></fire>
	</action></repeat>
	<vanish/>
</action>
</bulletml>`
	trace := func(seed uint64) []sim.Event {
		s := &Scenario{
			Name:       "seeded",
			Source:     src,
			Frames:     2,
			Seed:       &seed,
			Assertions: []Assertion{{Type: AssertFireCount, Count: intPtr(4)}},
		}
		result, err := Run(s)
		require.NoError(t, err)
		require.True(t, result.Pass, "errors: %v", result.Errors)
		return result.Events
	}

	assert.Equal(t, trace(3), trace(3))
	assert.NotEqual(t, trace(3), trace(4))
}
