package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
	"github.com/roach88/bulletml/internal/parser"
	"github.com/roach88/bulletml/internal/runner"
	"github.com/roach88/bulletml/internal/runner/mocks"
)

const scenario = `<?xml version="1.0" ?>
<bulletml xmlns="http://www.asahi-net.or.jp/~cs8k-cyu/bulletml">
<action label="top">
	<wait>2</wait>
	<fire>
		<direction type="absolute">0</direction>
		<speed>2</speed>
		<bullet/>
	</fire>
	<vanish/>
</action>
</bulletml>`

func loadTable(t *testing.T, src string) *ir.Table {
	t.Helper()
	doc, err := parser.ParseString(src)
	require.NoError(t, err)
	table, err := ir.NewTable(doc)
	require.NoError(t, err)
	return table
}

// The host sees exactly one CreateBullet and one Vanish, and nothing else
// beyond the once-per-step rank read.
func TestHost_CallbackContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := loadTable(t, scenario)
	state := bullet.New(5, 6, 0, 1, false)
	r := runner.NewTop(table, state)

	host := mocks.NewMockHost(ctrl)
	host.EXPECT().Rank().Return(0.5).Times(3)

	st, err := r.Step(host)
	require.NoError(t, err)
	assert.Equal(t, runner.Continue, st)

	st, err = r.Step(host)
	require.NoError(t, err)
	assert.Equal(t, runner.Continue, st)

	gomock.InOrder(
		host.EXPECT().CreateBullet(gomock.Any()).DoAndReturn(func(req runner.SpawnRequest) runner.BulletHandle {
			assert.Equal(t, 0.0, req.Direction)
			assert.Equal(t, 2.0, req.Speed)
			assert.Equal(t, 5.0, req.X)
			assert.Equal(t, 6.0, req.Y)
			assert.False(t, req.Mirrored)
			assert.True(t, req.Program.Empty())
			return "b1"
		}),
		host.EXPECT().Vanish(state),
	)

	st, err = r.Step(host)
	require.NoError(t, err)
	assert.Equal(t, runner.Vanished, st)

	st, err = r.Step(host)
	require.NoError(t, err)
	assert.Equal(t, runner.Vanished, st)
}

func TestHost_AimReadsTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := loadTable(t, `<bulletml><action label="top"><fire><bullet/></fire></action></bulletml>`)
	r := runner.NewTop(table, bullet.New(0, 0, 0, 1, false))

	host := mocks.NewMockHost(ctrl)
	host.EXPECT().Rank().Return(0.0)
	host.EXPECT().Target().Return(-10.0, 0.0)
	host.EXPECT().DefaultSpeed().Return(1.25)
	host.EXPECT().CreateBullet(gomock.Any()).DoAndReturn(func(req runner.SpawnRequest) runner.BulletHandle {
		assert.InDelta(t, -90, req.Direction, 1e-9)
		assert.Equal(t, 1.25, req.Speed)
		return nil
	})

	_, err := r.Step(host)
	require.NoError(t, err)
}

func TestHost_RandDrawnPerOccurrence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := loadTable(t, `<bulletml><action label="top">
		<fire><direction type="absolute">$rand * 100 + $rand</direction><speed>$rank</speed><bullet/></fire>
	</action></bulletml>`)
	r := runner.NewTop(table, bullet.New(0, 0, 0, 1, false))

	host := mocks.NewMockHost(ctrl)
	host.EXPECT().Rank().Return(0.75)
	gomock.InOrder(
		host.EXPECT().Rand().Return(0.5),
		host.EXPECT().Rand().Return(0.25),
	)
	host.EXPECT().CreateBullet(gomock.Any()).DoAndReturn(func(req runner.SpawnRequest) runner.BulletHandle {
		assert.InDelta(t, 50.25, req.Direction, 1e-9)
		assert.Equal(t, 0.75, req.Speed)
		return nil
	})

	_, err := r.Step(host)
	require.NoError(t, err)
}

func TestHost_VanishOnRuntimeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := loadTable(t, `<bulletml><action label="top"><actionRef label="missing"/></action></bulletml>`)
	state := bullet.New(0, 0, 0, 1, false)
	r := runner.NewTop(table, state)

	host := mocks.NewMockHost(ctrl)
	host.EXPECT().Rank().Return(0.0)
	host.EXPECT().Vanish(state)

	st, err := r.Step(host)
	assert.Equal(t, runner.Vanished, st)
	assert.True(t, runner.IsUndefinedReference(err))
}
