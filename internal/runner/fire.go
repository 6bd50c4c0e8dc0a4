package runner

import (
	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
)

// fire resolves the fire and bullet definitions and asks the host for a
// new bullet. The fire's speed and direction are evaluated first and the
// bullet's second, each updating the sequence memory, so a value set on the
// bullet overrides the fire. A direction set by neither aims at the target;
// a speed set by neither is the host default.
func (r *Runner) fire(th *thread, f *frame, c *ir.Fire) error {
	fd, fireParams, fireLabel, err := r.resolveFire(f, c.Source)
	if err != nil {
		return err
	}
	bd, bulletParams, err := r.resolveBullet(fireLabel, fireParams, fd.Bullet)
	if err != nil {
		return err
	}

	var (
		dir, speed       float64
		hasDir, hasSpeed bool
	)
	apply := func(label string, params []float64, d *ir.Direction, s *ir.Speed) error {
		if s != nil {
			v, err := r.fireSpeed(th, label, params, s)
			if err != nil {
				return err
			}
			speed, hasSpeed = v, true
			th.prevSpeed, th.hasPrevSpeed = v, true
		}
		if d != nil {
			v, err := r.fireDirection(th, label, params, d)
			if err != nil {
				return err
			}
			dir, hasDir = v, true
			th.prevDir, th.hasPrevDir = v, true
		}
		return nil
	}
	if err := apply(fireLabel, fireParams, fd.Direction, fd.Speed); err != nil {
		return err
	}
	if err := apply(bd.Label, bulletParams, bd.Direction, bd.Speed); err != nil {
		return err
	}

	if !hasSpeed {
		speed = r.host.DefaultSpeed()
		th.prevSpeed, th.hasPrevSpeed = speed, true
	}
	if !hasDir {
		dir = r.aim()
		th.prevDir, th.hasPrevDir = dir, true
	}

	x, y := r.state.Position()
	req := SpawnRequest{
		Bullet:    bd,
		Program:   Program{Actions: bd.Actions, Params: bulletParams},
		X:         x,
		Y:         y,
		Direction: dir,
		Speed:     speed,
		Mirrored:  r.state.Mirrored(),
	}
	r.host.CreateBullet(req)
	r.cfg.logger.Debug("fire",
		"bullet", bd.Label,
		"direction", dir,
		"speed", speed,
		"simple", req.Program.Empty())
	return nil
}

func (r *Runner) resolveFire(f *frame, src ir.FireSource) (*ir.FireDef, []float64, string, error) {
	if src.Inline != nil {
		label := src.Inline.Label
		if label == "" {
			label = f.label
		}
		return src.Inline, f.params, label, nil
	}
	def, ok := r.table.Fire(src.Ref.Label)
	if !ok {
		return nil, nil, "", undefined(f, src.Ref)
	}
	params, err := r.bindParams(f, src.Ref, def)
	if err != nil {
		return nil, nil, "", err
	}
	return def, params, def.Label, nil
}

// resolveBullet resolves src in the scope of its fire.
func (r *Runner) resolveBullet(fireLabel string, fireParams []float64, src ir.BulletSource) (*ir.BulletDef, []float64, error) {
	if src.Inline != nil {
		return src.Inline, fireParams, nil
	}
	scope := &frame{label: fireLabel, params: fireParams}
	def, ok := r.table.Bullet(src.Ref.Label)
	if !ok {
		return nil, nil, undefined(scope, src.Ref)
	}
	params, err := r.bindParams(scope, src.Ref, def)
	if err != nil {
		return nil, nil, err
	}
	return def, params, nil
}

// aim is the direction from the bullet to the host target.
func (r *Runner) aim() float64 {
	x, y := r.state.Position()
	tx, ty := r.host.Target()
	return bullet.AngleTo(x, y, tx, ty)
}

// mirror negates v on a mirrored bullet.
func (r *Runner) mirror(v float64) float64 {
	if r.state.Mirrored() {
		return -v
	}
	return v
}

// absolute maps a document angle to the screen convention.
func (r *Runner) absolute(v float64) float64 {
	if r.table.Orientation() == ir.OrientationHorizontal {
		v -= 90
	}
	return r.mirror(v)
}

func (r *Runner) sequenceBase(th *thread) float64 {
	if th.hasPrevDir {
		return th.prevDir
	}
	if r.cfg.seqFallback == SequenceFromAim {
		return r.aim()
	}
	return r.state.Direction()
}

func (r *Runner) fireDirection(th *thread, label string, params []float64, d *ir.Direction) (float64, error) {
	v, err := r.evalIn(label, params, d.Value)
	if err != nil {
		return 0, err
	}
	switch d.Kind {
	case ir.DirectionAbsolute:
		return r.absolute(v), nil
	case ir.DirectionRelative:
		return r.state.Direction() + r.mirror(v), nil
	case ir.DirectionSequence:
		return r.sequenceBase(th) + r.mirror(v), nil
	default:
		return r.aim() + r.mirror(v), nil
	}
}

func (r *Runner) speedBase(th *thread) float64 {
	if th.hasPrevSpeed {
		return th.prevSpeed
	}
	return r.state.Speed()
}

func (r *Runner) fireSpeed(th *thread, label string, params []float64, s *ir.Speed) (float64, error) {
	v, err := r.evalIn(label, params, s.Value)
	if err != nil {
		return 0, err
	}
	switch s.Kind {
	case ir.SpeedRelative:
		return r.state.Speed() + v, nil
	case ir.SpeedSequence:
		return r.speedBase(th) + v, nil
	default:
		return v, nil
	}
}
