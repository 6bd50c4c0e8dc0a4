package runner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roach88/bulletml/internal/bullet"
)

// simulate steps r then its bullet, n frames.
func simulate(t require.TestingT, r *Runner, h Host, n int) [][2]float64 {
	var path [][2]float64
	for i := 0; i < n; i++ {
		_, err := r.Step(h)
		require.NoError(t, err)
		r.State().Update()
		x, y := r.State().Position()
		path = append(path, [2]float64{x, y})
	}
	return path
}

func TestChangeDirection_ShortestArc(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		body  string
		want  float64
	}{
		{"across zero clockwise", 350, `<direction type="absolute">10</direction>`, 370},
		{"across zero counter-clockwise", 10, `<direction type="absolute">350</direction>`, -10},
		{"relative", 90, `<direction type="relative">-45</direction>`, 45},
		{"aim", 270, `<direction>0</direction>`, 180},
		{"sequence is a per-frame delta", 0, `<direction type="sequence">3</direction>`, 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := mustTable(t, bml(`<action label="top"><changeDirection>`+tc.body+`<term>4</term></changeDirection></action>`))
			r := NewTop(table, bullet.New(0, 0, tc.start, 0, false))
			h := &fakeHost{tx: 0, ty: 100}
			simulate(t, r, h, 4)
			assert.InDelta(t, tc.want, r.State().Direction(), 1e-9)
		})
	}
}

func TestChangeSpeed_Kinds(t *testing.T) {
	tests := []struct {
		body string
		want float64
	}{
		{`<speed>3</speed>`, 3},
		{`<speed type="relative">-0.5</speed>`, 1.5},
		{`<speed type="sequence">0.25</speed>`, 3},
	}
	for _, tc := range tests {
		t.Run(tc.body, func(t *testing.T) {
			table := mustTable(t, bml(`<action label="top"><changeSpeed>`+tc.body+`<term>4</term></changeSpeed></action>`))
			r := NewTop(table, bullet.New(0, 0, 0, 2, false))
			simulate(t, r, &fakeHost{}, 4)
			assert.InDelta(t, tc.want, r.State().Speed(), 1e-9)
		})
	}
}

func TestChangeSpeed_TakesEffectSameFrame(t *testing.T) {
	table := mustTable(t, bml(`<action label="top"><changeSpeed><speed>5</speed><term>0</term></changeSpeed></action>`))
	r := NewTop(table, bullet.New(0, 0, 180, 1, false))
	path := simulate(t, r, &fakeHost{}, 1)
	assert.InDelta(t, 5, path[0][1], 1e-9)
}

func TestAccel(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		wantAX float64
		wantAY float64
	}{
		{
			name:   "vertical document",
			doc:    `vertical`,
			wantAX: 2,
			wantAY: -1,
		},
		{
			name:   "horizontal document swaps axes",
			doc:    `horizontal`,
			wantAX: -1,
			wantAY: 2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := mustTable(t, fmt.Sprintf(`<bulletml type=%q><action label="top"><accel>
				<horizontal>2</horizontal>
				<vertical type="relative">-1</vertical>
				<term>0</term>
			</accel></action></bulletml>`, tc.doc))
			r := NewTop(table, bullet.New(0, 0, 0, 0, false))
			_, err := r.Step(&fakeHost{})
			require.NoError(t, err)
			ax, ay := r.State().Accel()
			assert.Equal(t, tc.wantAX, ax)
			assert.Equal(t, tc.wantAY, ay)
		})
	}
}

func TestAccel_SequenceAndMirror(t *testing.T) {
	table := mustTable(t, bml(`<action label="top"><accel>
		<horizontal type="sequence">0.5</horizontal>
		<term>4</term>
	</accel></action>`))
	r := NewTop(table, bullet.New(0, 0, 0, 0, true))
	simulate(t, r, &fakeHost{}, 4)
	ax, ay := r.State().Accel()
	assert.InDelta(t, -2, ax, 1e-9)
	assert.Equal(t, 0.0, ay)
}

const mirrorDoc = `<action label="move">
	<changeDirection><direction type="absolute">$1</direction><term>10</term></changeDirection>
	<changeSpeed><speed>2</speed><term>5</term></changeSpeed>
	<wait>15</wait>
	<changeDirection><direction type="relative">$2</direction><term>8</term></changeDirection>
	<wait>10</wait>
	<changeDirection><direction type="sequence">$3</direction><term>6</term></changeDirection>
	<repeat><times>3</times><action>
		<fire><direction type="absolute">$1</direction><speed>1</speed><bullet/></fire>
		<fire><direction type="sequence">$2</direction><speed>1</speed><bullet/></fire>
	</action></repeat>
</action>`

func TestMirror_AbsoluteMatchesNegatedAngle(t *testing.T) {
	table := mustTable(t, bml(mirrorDoc))
	rapid.Check(t, func(rt *rapid.T) {
		theta := rapid.Float64Range(-170, 170).Draw(rt, "theta")
		rel := rapid.Float64Range(-90, 90).Draw(rt, "rel")
		seq := rapid.Float64Range(-5, 5).Draw(rt, "seq")

		mirrored, err := NewAction(table, bullet.New(0, 0, 0, 1, true), "move", []float64{theta, rel, seq})
		require.NoError(rt, err)
		plain, err := NewAction(table, bullet.New(0, 0, 0, 1, false), "move", []float64{-theta, -rel, -seq})
		require.NoError(rt, err)

		hm, hp := &fakeHost{}, &fakeHost{}
		pm := simulate(rt, mirrored, hm, 40)
		pp := simulate(rt, plain, hp, 40)
		for i := range pm {
			if !closeEnough(pm[i], pp[i]) {
				rt.Fatalf("frame %d: mirrored %v, plain %v", i+1, pm[i], pp[i])
			}
		}
		if len(hm.spawned) != len(hp.spawned) {
			rt.Fatalf("spawn counts differ")
		}
		for i := range hm.spawned {
			if !hm.spawned[i].Mirrored || hp.spawned[i].Mirrored {
				rt.Fatalf("spawn %d: mirrored flag not inherited", i)
			}
			if d := hm.spawned[i].Direction - hp.spawned[i].Direction; d > 1e-9 || d < -1e-9 {
				rt.Fatalf("spawn %d: direction %v vs %v", i, hm.spawned[i].Direction, hp.spawned[i].Direction)
			}
		}
	})
}

func TestMirror_ReflectsTrajectory(t *testing.T) {
	table := mustTable(t, bml(mirrorDoc))
	rapid.Check(t, func(rt *rapid.T) {
		theta := rapid.Float64Range(-170, 170).Draw(rt, "theta")
		rel := rapid.Float64Range(-90, 90).Draw(rt, "rel")
		seq := rapid.Float64Range(-5, 5).Draw(rt, "seq")
		params := []float64{theta, rel, seq}

		mirrored, err := NewAction(table, bullet.New(0, 0, 0, 1, true), "move", params)
		require.NoError(rt, err)
		plain, err := NewAction(table, bullet.New(0, 0, 0, 1, false), "move", params)
		require.NoError(rt, err)

		pm := simulate(rt, mirrored, &fakeHost{}, 40)
		pp := simulate(rt, plain, &fakeHost{}, 40)
		for i := range pm {
			want := [2]float64{-pp[i][0], pp[i][1]}
			if !closeEnough(pm[i], want) {
				rt.Fatalf("frame %d: mirrored %v, reflected plain %v", i+1, pm[i], want)
			}
		}
	})
}

func TestWait_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(-3, 30).Draw(rt, "n")
		table := mustTable(t, bml(fmt.Sprintf(`<action label="top"><wait>%d</wait>`+fire("0", "1")+`</action>`, n)))
		r := NewTop(table, bullet.New(0, 0, 0, 1, false))
		h := &fakeHost{}

		want := 1 + max(n, 0)
		for step := 1; step <= want+2; step++ {
			h.step = step
			if _, err := r.Step(h); err != nil {
				rt.Fatal(err)
			}
			fired := len(h.spawned) == 1
			if fired != (step >= want) {
				rt.Fatalf("wait %d: step %d fired=%v", n, step, fired)
			}
		}
	})
}

func closeEnough(a, b [2]float64) bool {
	const tol = 1e-6
	dx, dy := a[0]-b[0], a[1]-b[1]
	return dx < tol && dx > -tol && dy < tol && dy > -tol
}
