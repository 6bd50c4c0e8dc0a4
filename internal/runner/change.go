package runner

import (
	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
)

// changeDirection starts a turn. Sequence values are a per-frame delta;
// every other kind names a target reached along the shortest arc.
func (r *Runner) changeDirection(th *thread, f *frame, c *ir.ChangeDirection) error {
	term, err := r.evalInt(f, c.Term)
	if err != nil {
		return err
	}
	v, err := r.eval(f, c.Direction.Value)
	if err != nil {
		return err
	}
	current := r.state.Direction()

	var target float64
	switch c.Direction.Kind {
	case ir.DirectionSequence:
		target = current + r.mirror(v)*float64(term)
		r.state.ChangeDirection(target, term)
		return nil
	case ir.DirectionAbsolute:
		target = r.absolute(v)
	case ir.DirectionRelative:
		target = current + r.mirror(v)
	default:
		target = r.aim() + r.mirror(v)
	}
	th.prevDir, th.hasPrevDir = target, true
	r.state.ChangeDirection(current+bullet.NormalizeAngle(target-current), term)
	return nil
}

func (r *Runner) changeSpeed(th *thread, f *frame, c *ir.ChangeSpeed) error {
	term, err := r.evalInt(f, c.Term)
	if err != nil {
		return err
	}
	v, err := r.eval(f, c.Speed.Value)
	if err != nil {
		return err
	}
	current := r.state.Speed()

	var target float64
	switch c.Speed.Kind {
	case ir.SpeedSequence:
		r.state.ChangeSpeed(current+v*float64(term), term)
		return nil
	case ir.SpeedRelative:
		target = current + v
	default:
		target = v
	}
	th.prevSpeed, th.hasPrevSpeed = target, true
	r.state.ChangeSpeed(target, term)
	return nil
}

// accel changes the accel velocity. Horizontal documents swap the axes;
// a mirrored bullet negates the screen x component.
func (r *Runner) accel(f *frame, c *ir.Accel) error {
	term, err := r.evalInt(f, c.Term)
	if err != nil {
		return err
	}
	xs, ys := c.Horizontal, c.Vertical
	if r.table.Orientation() == ir.OrientationHorizontal {
		xs, ys = ys, xs
	}
	ax, ay := r.state.Accel()
	if xs != nil {
		v, err := r.eval(f, xs.Value)
		if err != nil {
			return err
		}
		r.state.ChangeAccelX(accelTarget(xs.Kind, ax, r.mirror(v), term), term)
	}
	if ys != nil {
		v, err := r.eval(f, ys.Value)
		if err != nil {
			return err
		}
		r.state.ChangeAccelY(accelTarget(ys.Kind, ay, v, term), term)
	}
	return nil
}

func accelTarget(kind ir.SpeedKind, current, v float64, term int) float64 {
	switch kind {
	case ir.SpeedRelative:
		return current + v
	case ir.SpeedSequence:
		return current + v*float64(term)
	default:
		return v
	}
}
