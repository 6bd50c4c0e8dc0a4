package runner

import (
	"fmt"
	"log/slog"

	"github.com/roach88/bulletml/internal/bullet"
	"github.com/roach88/bulletml/internal/ir"
)

// Status is the result of a Step.
type Status int

const (
	Continue Status = iota
	Vanished
)

func (s Status) String() string {
	if s == Vanished {
		return "vanished"
	}
	return "continue"
}

// frame is one activation of a command list.
type frame struct {
	commands []ir.Command
	index    int
	params   []float64

	// repeatLeft counts the iterations still to run after the current one.
	repeatLeft int

	label string
}

// thread is one independently suspended command stream.
type thread struct {
	stack []*frame
	wait  int

	prevDir      float64
	hasPrevDir   bool
	prevSpeed    float64
	hasPrevSpeed bool
}

func (th *thread) top() *frame { return th.stack[len(th.stack)-1] }

// Runner drives one bullet. It is not safe for concurrent use, but distinct
// runners sharing a table may be stepped in parallel.
type Runner struct {
	table   *ir.Table
	state   *bullet.State
	threads []*thread
	cfg     config

	frame    int
	vanished bool
	err      error

	// per-Step context
	host       Host
	rank       float64
	dispatched int
}

// New returns a runner executing program on state.
func New(table *ir.Table, state *bullet.State, program Program, opts ...Option) *Runner {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Runner{table: table, state: state, cfg: cfg}
	for _, src := range program.Actions {
		// The entry frame holds a single action command, so the first
		// dispatch resolves the source like any nested <action>.
		entry := &frame{
			commands: []ir.Command{&ir.Action{Source: src}},
			params:   program.Params,
		}
		r.threads = append(r.threads, &thread{stack: []*frame{entry}})
	}
	return r
}

// NewTop returns a runner executing every top action of table in parallel.
func NewTop(table *ir.Table, state *bullet.State, opts ...Option) *Runner {
	var program Program
	for _, def := range table.TopActions() {
		program.Actions = append(program.Actions, ir.ActionSource{Inline: def})
	}
	return New(table, state, program, opts...)
}

// NewAction returns a runner executing the action labelled label with
// params bound to $1..$N.
func NewAction(table *ir.Table, state *bullet.State, label string, params []float64, opts ...Option) (*Runner, error) {
	def, ok := table.Action(label)
	if !ok {
		return nil, &RuntimeError{
			Code:    ErrUndefinedReference,
			Message: fmt.Sprintf("action %q is not defined", label),
			Label:   label,
		}
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := checkArity(cfg, table, def, len(params)); err != nil {
		return nil, err
	}
	program := Program{
		Actions: []ir.ActionSource{{Inline: def}},
		Params:  params,
	}
	return New(table, state, program, opts...), nil
}

// NewChild builds the state and runner of a bullet spawned by req.
func NewChild(table *ir.Table, req SpawnRequest, opts ...Option) *Runner {
	state := bullet.New(req.X, req.Y, req.Direction, req.Speed, req.Mirrored)
	return New(table, state, req.Program, opts...)
}

// State returns the bullet the runner drives.
func (r *Runner) State() *bullet.State { return r.state }

// Vanished reports whether the runner has stopped for good.
func (r *Runner) Vanished() bool { return r.vanished }

// Err returns the runtime error that vanished the runner, if any.
func (r *Runner) Err() error { return r.err }

// Frame returns the number of Steps taken.
func (r *Runner) Frame() int { return r.frame }

// Idle reports whether every thread has run out of commands.
func (r *Runner) Idle() bool {
	for _, th := range r.threads {
		if len(th.stack) > 0 {
			return false
		}
	}
	return true
}

// Depth returns the number of live frames across all threads.
func (r *Runner) Depth() int {
	n := 0
	for _, th := range r.threads {
		n += len(th.stack)
	}
	return n
}

// Step advances the runner by one frame. It returns Vanished once the bullet
// has vanished, by <vanish> or by a runtime error; the error is returned from
// the Step that caused it and later Steps return (Vanished, nil).
func (r *Runner) Step(host Host) (Status, error) {
	if r.vanished {
		return Vanished, nil
	}
	r.frame++
	r.host = host
	r.rank = host.Rank()
	r.dispatched = 0
	defer func() { r.host = nil }()

	for _, th := range r.threads {
		if th.wait > 0 {
			th.wait--
			if th.wait > 0 {
				continue
			}
		}
		stop, err := r.run(th)
		if err != nil {
			r.fail(err)
			return Vanished, err
		}
		if stop == stopVanish {
			r.vanish()
			return Vanished, nil
		}
	}
	return Continue, nil
}

func (r *Runner) vanish() {
	r.vanished = true
	r.threads = nil
	r.host.Vanish(r.state)
}

func (r *Runner) fail(err error) {
	r.err = err
	r.cfg.logger.Debug("runner failed",
		"code", CodeOf(err),
		"frame", r.frame,
		"error", err)
	r.vanish()
}

type stopReason int

const (
	stopNone stopReason = iota
	stopWait
	stopVanish
)

// run dispatches commands of th until it waits, vanishes or runs dry.
func (r *Runner) run(th *thread) (stopReason, error) {
	for len(th.stack) > 0 {
		f := th.top()
		if f.index >= len(f.commands) {
			if f.repeatLeft > 0 {
				f.repeatLeft--
				f.index = 0
				continue
			}
			th.stack = th.stack[:len(th.stack)-1]
			continue
		}

		r.dispatched++
		if r.dispatched > r.cfg.stepQuota {
			return stopNone, &RuntimeError{
				Code:    ErrStepQuota,
				Message: fmt.Sprintf("more than %d commands in one step", r.cfg.stepQuota),
				Label:   f.label,
			}
		}

		cmd := f.commands[f.index]
		f.index++
		stop, err := r.dispatch(th, f, cmd)
		if err != nil || stop != stopNone {
			return stop, err
		}
	}
	return stopNone, nil
}

func (r *Runner) dispatch(th *thread, f *frame, cmd ir.Command) (stopReason, error) {
	switch c := cmd.(type) {
	case *ir.Wait:
		n, err := r.evalInt(f, c.Frames)
		if err != nil {
			return stopNone, err
		}
		if n <= 0 {
			return stopNone, nil
		}
		th.wait = n
		return stopWait, nil

	case *ir.Vanish:
		return stopVanish, nil

	case *ir.Fire:
		return stopNone, r.fire(th, f, c)

	case *ir.ChangeDirection:
		return stopNone, r.changeDirection(th, f, c)

	case *ir.ChangeSpeed:
		return stopNone, r.changeSpeed(th, f, c)

	case *ir.Accel:
		return stopNone, r.accel(f, c)

	case *ir.Action:
		callee, err := r.enter(f, c.Source)
		if err != nil {
			return stopNone, err
		}
		r.push(th, callee)
		return stopNone, nil

	case *ir.Repeat:
		times, err := r.evalInt(f, c.Times)
		if err != nil {
			return stopNone, err
		}
		if times <= 0 {
			return stopNone, nil
		}
		// The body is dispatched afresh on every iteration, so ref params
		// and $rand are evaluated once per iteration.
		r.push(th, &frame{
			commands:   []ir.Command{&ir.Action{Source: c.Action, Pos: c.Pos}},
			params:     f.params,
			label:      f.label,
			repeatLeft: times - 1,
		})
		return stopNone, nil
	}
	return stopNone, fmt.Errorf("runner: unknown command %T", cmd)
}

// enter builds the frame for src. Inline actions share the caller's params;
// refs bind params evaluated in the caller's scope.
func (r *Runner) enter(caller *frame, src ir.ActionSource) (*frame, error) {
	if src.Inline != nil {
		label := src.Inline.Label
		if label == "" {
			label = caller.label
		}
		return &frame{commands: src.Inline.Commands, params: caller.params, label: label}, nil
	}
	ref := src.Ref
	def, ok := r.table.Action(ref.Label)
	if !ok {
		return nil, undefined(caller, ref)
	}
	params, err := r.bindParams(caller, ref, def)
	if err != nil {
		return nil, err
	}
	return &frame{commands: def.Commands, params: params, label: def.Label}, nil
}

// push installs callee on top of th. A caller with nothing left to run is
// replaced rather than kept, so tail recursion runs in constant depth.
func (r *Runner) push(th *thread, callee *frame) {
	caller := th.top()
	if caller.index >= len(caller.commands) && caller.repeatLeft == 0 {
		th.stack[len(th.stack)-1] = callee
		return
	}
	th.stack = append(th.stack, callee)
}

func undefined(f *frame, ref *ir.Ref) error {
	return &RuntimeError{
		Code:    ErrUndefinedReference,
		Message: fmt.Sprintf("%s %q is not defined (%s)", ref.Kind, ref.Label, ref.Pos),
		Label:   f.label,
	}
}

// bindParams evaluates ref's params in the caller scope and checks them
// against the callee's arity.
func (r *Runner) bindParams(caller *frame, ref *ir.Ref, def ir.Definition) ([]float64, error) {
	if err := checkArity(r.cfg, r.table, def, len(ref.Params)); err != nil {
		return nil, err
	}
	if len(ref.Params) == 0 {
		return nil, nil
	}
	params := make([]float64, len(ref.Params))
	for i, p := range ref.Params {
		v, err := r.eval(caller, p)
		if err != nil {
			return nil, err
		}
		params[i] = v
	}
	return params, nil
}

func checkArity(cfg config, table *ir.Table, def ir.Definition, got int) error {
	want := table.Arity(def)
	if got < want || (cfg.strictParams && got > want) {
		return &RuntimeError{
			Code: ErrInvalidParameter,
			Message: fmt.Sprintf("%s %q takes %d params, got %d",
				def.Kind(), def.DefLabel(), want, got),
			Label: def.DefLabel(),
		}
	}
	return nil
}

// LogValue groups the runner's progress for structured logs.
func (r *Runner) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", r.frame),
		slog.Int("threads", len(r.threads)),
		slog.Int("depth", r.Depth()),
		slog.Bool("vanished", r.vanished),
	)
}
