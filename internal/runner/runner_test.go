package runner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/expr"
	"github.com/roach88/bulletml/internal/testutil"
)

const shot = `<fire><direction type="absolute">%s</direction><speed>%s</speed><bullet/></fire>`

func fire(dir, speed string) string { return fmt.Sprintf(shot, dir, speed) }

func TestStep_WaitThenFireThenVanish(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		<wait>2</wait>`+fire("0", "2")+`<vanish/>
	</action>`)

	h.step++
	st, err := r.Step(h)
	require.NoError(t, err)
	assert.Equal(t, Continue, st)
	assert.Empty(t, h.spawned)

	h.step++
	st, err = r.Step(h)
	require.NoError(t, err)
	assert.Equal(t, Continue, st)
	assert.Empty(t, h.spawned)

	h.step++
	st, err = r.Step(h)
	require.NoError(t, err)
	assert.Equal(t, Vanished, st)
	require.Len(t, h.spawned, 1)
	assert.Equal(t, 0.0, h.spawned[0].Direction)
	assert.Equal(t, 2.0, h.spawned[0].Speed)
	assert.True(t, h.spawned[0].Program.Empty())
	require.Len(t, h.vanished, 1)
	assert.Same(t, r.State(), h.vanished[0])

	for i := 0; i < 3; i++ {
		st, err = r.Step(h)
		require.NoError(t, err)
		assert.Equal(t, Vanished, st)
	}
	assert.Len(t, h.vanished, 1, "vanish is reported once")
	assert.Equal(t, 3, r.Frame(), "steps after vanishing are not counted")
}

func TestWait_NextCommandRunsAfterNSteps(t *testing.T) {
	tests := []struct {
		wait     string
		fireStep int
	}{
		{"0", 1},
		{"-4", 1},
		{"0.9", 1},
		{"1", 2},
		{"2.7", 3},
		{"5", 6},
	}
	for _, tc := range tests {
		t.Run(tc.wait, func(t *testing.T) {
			r, h := newTopRunner(t, `<action label="top"><wait>`+tc.wait+`</wait>`+fire("0", "1")+`</action>`)
			h.stepN(t, r, 10)
			require.Len(t, h.spawned, 1)
			assert.Equal(t, tc.fireStep, h.spawnAt[0])
		})
	}
}

func TestRepeat_RunsBodyExactlyKTimes(t *testing.T) {
	for _, k := range []int{0, 1, 5} {
		t.Run(fmt.Sprint(k), func(t *testing.T) {
			r, h := newTopRunner(t, fmt.Sprintf(`<action label="top">
				<repeat><times>%d</times><action>`+fire("$rand", "1")+`</action></repeat>`+
				fire("0", "99")+`</action>`, k))
			h.rand = testutil.NewScriptedRand(10, 20, 30, 40, 50)

			h.stepN(t, r, 1)
			require.Len(t, h.spawned, k+1)
			want := []float64{10, 20, 30, 40, 50}[:k]
			assert.Equal(t, want, directions(h.spawned[:k]), "body runs in order")
			assert.Equal(t, 99.0, h.spawned[k].Speed, "execution continues past the repeat")
		})
	}
}

func TestRepeat_NegativeTimesSkips(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		<repeat><times>-3</times><action>`+fire("0", "1")+`</action></repeat>
	</action>`)
	h.stepN(t, r, 2)
	assert.Empty(t, h.spawned)
	assert.True(t, r.Idle())
}

func TestRepeat_WithWaitInBody(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		<repeat><times>3</times><action>`+fire("0", "1")+`<wait>2</wait></action></repeat>
		`+fire("0", "5")+`
	</action>`)
	h.stepN(t, r, 10)
	assert.Equal(t, []int{1, 3, 5, 7}, h.spawnAt)
	assert.Equal(t, []float64{1, 1, 1, 5}, speeds(h.spawned))
}

func TestRepeat_RefParamsReevaluatedPerIteration(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		<repeat><times>5</times><actionRef label="shot"><param>$rand</param><param>$rank * 2</param></actionRef></repeat>
	</action>
	<action label="shot">`+fire("$1", "$2")+`</action>`)
	h.rand = testutil.NewScriptedRand(10, 20, 30, 40, 50)
	h.rank = 0.5

	h.stepN(t, r, 1)
	require.Len(t, h.spawned, 5)
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, directions(h.spawned))
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, speeds(h.spawned))
	assert.Equal(t, 5, h.rand.Calls())
}

func TestRepeat_RefParamsSeeCurrentRank(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		<repeat><times>2</times><actionRef label="shot"><param>$rank * 10</param></actionRef></repeat>
	</action>
	<action label="shot">`+fire("0", "$1")+`<wait>1</wait></action>`)

	h.rank = 0.1
	h.stepN(t, r, 1)
	h.rank = 0.3
	h.stepN(t, r, 1)
	require.Len(t, h.spawned, 2)
	assert.InDeltaSlice(t, []float64{1, 3}, speeds(h.spawned), 1e-9)
}

func TestRepeat_TimesEvaluatedOnce(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		<repeat><times>$rand</times><action>`+fire("0", "1")+`</action></repeat>
	</action>`)
	h.rand = testutil.NewScriptedRand(3, 100, 100)
	h.stepN(t, r, 1)
	assert.Len(t, h.spawned, 3)
}

func TestActionRef_ParamIsolation(t *testing.T) {
	r, h := newTopRunner(t, `
	<action label="top">
		<actionRef label="outer"><param>10</param></actionRef>
	</action>
	<action label="outer">
		`+fire("$1", "1")+`
		<actionRef label="inner"><param>$1 + 5</param></actionRef>
		`+fire("$1", "2")+`
		<action>`+fire("$1", "3")+`</action>
	</action>
	<action label="inner">
		`+fire("$1", "4")+`
		<actionRef label="inner2"><param>$1 * 2</param></actionRef>
	</action>
	<action label="inner2">`+fire("$1", "5")+`</action>`)

	h.stepN(t, r, 1)
	assert.Equal(t, []float64{10, 15, 30, 10, 10}, directions(h.spawned))
	assert.Equal(t, []float64{1, 4, 5, 2, 3}, speeds(h.spawned))
}

func TestFire_BulletRefParamsBindChildProgram(t *testing.T) {
	table := mustTable(t, bml(`
	<action label="top">
		<fire>
			<direction type="absolute">0</direction>
			<bulletRef label="b"><param>7</param><param>$rank * 10</param></bulletRef>
		</fire>
	</action>
	<bullet label="b">
		<speed>$2</speed>
		<action>`+fire("$1", "1")+`</action>
	</bullet>`))
	h := &fakeHost{rank: 0.5, defaultSpeed: 1}
	r := NewTop(table, bullet.New(3, 4, 0, 1, false))
	h.stepN(t, r, 1)

	require.Len(t, h.spawned, 1)
	req := h.spawned[0]
	assert.Equal(t, "b", req.Bullet.Label)
	assert.Equal(t, []float64{7, 5}, req.Program.Params)
	assert.Equal(t, 5.0, req.Speed, "bullet speed sees bulletRef params")
	assert.Equal(t, 3.0, req.X)
	assert.Equal(t, 4.0, req.Y)

	child := NewChild(table, req)
	x, y := child.State().Position()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
	h.stepN(t, child, 1)
	require.Len(t, h.spawned, 2)
	assert.Equal(t, 7.0, h.spawned[1].Direction)
}

func TestFire_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantDir   float64
		wantSpeed float64
	}{
		{
			name:      "bullet overrides fire",
			body:      `<fire><direction type="absolute">10</direction><speed>2</speed><bullet><direction type="absolute">20</direction><speed>3</speed></bullet></fire>`,
			wantDir:   20,
			wantSpeed: 3,
		},
		{
			name:      "fire and bullet each set one",
			body:      `<fire><direction type="absolute">10</direction><bullet><speed>3</speed></bullet></fire>`,
			wantDir:   10,
			wantSpeed: 3,
		},
		{
			name:      "bullet sequence follows the fire",
			body:      `<fire><direction type="absolute">10</direction><speed>2</speed><bullet><direction type="sequence">5</direction><speed type="sequence">1</speed></bullet></fire>`,
			wantDir:   15,
			wantSpeed: 3,
		},
		{
			name:      "bullet fills in",
			body:      `<fire><bullet><direction type="absolute">20</direction><speed>3</speed></bullet></fire>`,
			wantDir:   20,
			wantSpeed: 3,
		},
		{
			name:      "aim and default speed",
			body:      `<fire><bullet/></fire>`,
			wantDir:   90,
			wantSpeed: 1.5,
		},
		{
			name:      "aim with offset",
			body:      `<fire><direction>-30</direction><bullet/></fire>`,
			wantDir:   60,
			wantSpeed: 1.5,
		},
		{
			name:      "relative to the firing bullet",
			body:      `<fire><direction type="relative">15</direction><speed type="relative">1</speed><bullet/></fire>`,
			wantDir:   195,
			wantSpeed: 2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := mustTable(t, bml(`<action label="top">`+tc.body+`</action>`))
			r := NewTop(table, bullet.New(0, 0, 180, 1, false))
			h := &fakeHost{defaultSpeed: 1.5, tx: 10, ty: 0}
			h.stepN(t, r, 1)
			require.Len(t, h.spawned, 1)
			assert.InDelta(t, tc.wantDir, h.spawned[0].Direction, 1e-9)
			assert.InDelta(t, tc.wantSpeed, h.spawned[0].Speed, 1e-9)
		})
	}
}

func TestFire_SequenceFollowsPreviousFire(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top">
		`+fire("30", "1")+`
		<repeat><times>3</times><action>
			<fire><direction type="sequence">10</direction><speed type="sequence">0.5</speed><bullet/></fire>
		</action></repeat>
	</action>`)
	h.stepN(t, r, 1)
	assert.Equal(t, []float64{30, 40, 50, 60}, directions(h.spawned))
	assert.Equal(t, []float64{1, 1.5, 2, 2.5}, speeds(h.spawned))
}

func TestFire_SequenceFallback(t *testing.T) {
	body := `<action label="top">
		<fire><direction type="sequence">10</direction><bullet/></fire>
		<fire><direction type="sequence">10</direction><bullet/></fire>
	</action>`
	tests := []struct {
		name string
		opts []Option
		want []float64
	}{
		{"default is the current direction", nil, []float64{100, 110}},
		{"current", []Option{WithSequenceFallback(SequenceFromCurrent)}, []float64{100, 110}},
		{"aim", []Option{WithSequenceFallback(SequenceFromAim)}, []float64{10, 20}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := mustTable(t, bml(body))
			r := NewTop(table, bullet.New(0, 0, 90, 1, false), tc.opts...)
			h := &fakeHost{defaultSpeed: 1, tx: 0, ty: -100}
			h.stepN(t, r, 1)
			assert.InDeltaSlice(t, tc.want, directions(h.spawned), 1e-9)
		})
	}
}

func TestFire_HorizontalShiftsAbsolute(t *testing.T) {
	table := mustTable(t, `<bulletml type="horizontal"><action label="top">`+fire("90", "1")+`</action></bulletml>`)
	r := NewTop(table, bullet.New(0, 0, 0, 1, false))
	h := &fakeHost{}
	h.stepN(t, r, 1)
	require.Len(t, h.spawned, 1)
	assert.Equal(t, 0.0, h.spawned[0].Direction)
}

func TestTopActions_RunInParallel(t *testing.T) {
	r, h := newTopRunner(t, `
	<action label="top1"><wait>1</wait>`+fire("0", "1")+`</action>
	<action label="helper">`+fire("0", "7")+`</action>
	<action label="top2">`+fire("0", "2")+`<wait>3</wait>`+fire("0", "3")+`</action>`)

	h.stepN(t, r, 5)
	assert.Equal(t, []float64{2, 1, 3}, speeds(h.spawned))
	assert.Equal(t, []int{1, 2, 4}, h.spawnAt)
	assert.True(t, r.Idle())
}

func TestRecursion_DepthStaysBounded(t *testing.T) {
	r, h := newTopRunner(t, `
	<action label="top"><actionRef label="spin"><param>0</param></actionRef></action>
	<action label="spin">
		`+fire("$1", "1")+`
		<wait>1</wait>
		<actionRef label="spin"><param>$1 + 10</param></actionRef>
	</action>`)

	for i := 0; i < 500; i++ {
		h.stepN(t, r, 1)
		require.Equal(t, 1, r.Depth(), "step %d", i+1)
	}
	require.Len(t, h.spawned, 500)
	assert.Equal(t, 4990.0, h.spawned[499].Direction)
}

func TestRecursion_MutualWithWait(t *testing.T) {
	r, h := newTopRunner(t, `
	<action label="top"><actionRef label="ping"/></action>
	<action label="ping">`+fire("0", "1")+`<wait>1</wait><actionRef label="pong"/></action>
	<action label="pong">`+fire("0", "2")+`<wait>1</wait><actionRef label="ping"/></action>`)

	h.stepN(t, r, 100)
	assert.LessOrEqual(t, r.Depth(), 1)
	assert.Len(t, h.spawned, 100)
	assert.Equal(t, 2.0, h.spawned[99].Speed)
}

func TestIdle_KeepsContinuing(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top"><changeSpeed><speed>3</speed><term>5</term></changeSpeed></action>`)
	st := h.stepN(t, r, 1)
	assert.Equal(t, Continue, st)
	assert.True(t, r.Idle())
	assert.Equal(t, 0, r.Depth())

	st = h.stepN(t, r, 10)
	assert.Equal(t, Continue, st)
	assert.False(t, r.Vanished())
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		opts  []Option
		check func(error) bool
	}{
		{
			name:  "undefined action",
			body:  `<action label="top"><actionRef label="nope"/></action>`,
			check: IsUndefinedReference,
		},
		{
			name:  "undefined fire",
			body:  `<action label="top"><fireRef label="nope"/></action>`,
			check: IsUndefinedReference,
		},
		{
			name:  "undefined bullet",
			body:  `<action label="top"><fire><bulletRef label="nope"/></fire></action>`,
			check: IsUndefinedReference,
		},
		{
			name:  "division by zero",
			body:  `<action label="top"><wait>1 / ($rank * 0)</wait></action>`,
			check: IsExpressionError,
		},
		{
			name:  "param out of range",
			body:  `<action label="top">` + fire("$1", "1") + `</action>`,
			check: IsExpressionError,
		},
		{
			name: "too few params",
			body: `<action label="top"><actionRef label="a"><param>1</param></actionRef></action>
				<action label="a">` + fire("$1", "$2") + `</action>`,
			check: IsInvalidParameter,
		},
		{
			name: "extra params when strict",
			body: `<action label="top"><actionRef label="a"><param>1</param><param>2</param></actionRef></action>
				<action label="a">` + fire("$1", "1") + `</action>`,
			opts:  []Option{WithStrictParams(true)},
			check: IsInvalidParameter,
		},
		{
			name: "zero-wait loop",
			body: `<action label="top"><actionRef label="loop"/></action>
				<action label="loop"><actionRef label="loop"/></action>`,
			opts:  []Option{WithStepQuota(50)},
			check: IsQuotaError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, h := newTopRunner(t, tc.body, tc.opts...)

			st, err := r.Step(h)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error: %v", err)
			assert.Equal(t, Vanished, st)
			assert.True(t, r.Vanished())
			assert.Equal(t, err, r.Err())
			assert.Len(t, h.vanished, 1)

			st, err = r.Step(h)
			assert.NoError(t, err, "the error is reported once")
			assert.Equal(t, Vanished, st)
		})
	}
}

func TestRuntimeError_UnwrapsExpressionError(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top"><wait>1 % 0</wait></action>`)
	_, err := r.Step(h)
	require.Error(t, err)
	assert.True(t, expr.IsDivisionByZero(err))
	assert.Equal(t, ErrExpression, CodeOf(err))
	assert.Contains(t, err.Error(), `in "top"`)
}

func TestExtraParamsAllowedByDefault(t *testing.T) {
	r, h := newTopRunner(t, `<action label="top"><actionRef label="a"><param>1</param><param>2</param></actionRef></action>
		<action label="a">`+fire("$1", "1")+`</action>`)
	h.stepN(t, r, 1)
	assert.Len(t, h.spawned, 1)
}

func TestNewAction(t *testing.T) {
	table := mustTable(t, bml(`<action label="shoot">`+fire("$1", "$2")+`</action>`))

	r, err := NewAction(table, bullet.New(0, 0, 0, 1, false), "shoot", []float64{45, 3})
	require.NoError(t, err)
	h := &fakeHost{}
	h.stepN(t, r, 1)
	require.Len(t, h.spawned, 1)
	assert.Equal(t, 45.0, h.spawned[0].Direction)
	assert.Equal(t, 3.0, h.spawned[0].Speed)

	_, err = NewAction(table, bullet.New(0, 0, 0, 1, false), "missing", nil)
	assert.True(t, IsUndefinedReference(err))

	_, err = NewAction(table, bullet.New(0, 0, 0, 1, false), "shoot", []float64{1})
	assert.True(t, IsInvalidParameter(err))
}

func TestNewTop_NoTopActionsIsIdle(t *testing.T) {
	r, h := newTopRunner(t, `<action label="other">`+fire("0", "1")+`</action>`)
	st := h.stepN(t, r, 3)
	assert.Equal(t, Continue, st)
	assert.True(t, r.Idle())
	assert.Empty(t, h.spawned)
}
