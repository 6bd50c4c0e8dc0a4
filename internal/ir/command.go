package ir

import "github.com/roach88/bulletml/internal/expr"

// Command is one entry of an action's command list.
type Command interface {
	Position() Pos
	command()
}

// Fire spawns a bullet.
type Fire struct {
	Source FireSource
	Pos    Pos
}

// ChangeDirection turns the bullet over Term frames.
type ChangeDirection struct {
	Direction *Direction
	Term      expr.Expr
	Pos       Pos
}

// ChangeSpeed changes the bullet speed over Term frames.
type ChangeSpeed struct {
	Speed *Speed
	Term  expr.Expr
	Pos   Pos
}

// Accel changes the accel velocity over Term frames. Either component may
// be nil.
type Accel struct {
	Horizontal *AccelComponent
	Vertical   *AccelComponent
	Term       expr.Expr
	Pos        Pos
}

// Wait suspends the command list for Frames steps.
type Wait struct {
	Frames expr.Expr
	Pos    Pos
}

// Vanish removes the bullet.
type Vanish struct {
	Pos Pos
}

// Repeat runs Action Times times.
type Repeat struct {
	Times  expr.Expr
	Action ActionSource
	Pos    Pos
}

// Action runs a nested inline action or an actionRef.
type Action struct {
	Source ActionSource
	Pos    Pos
}

func (c *Fire) Position() Pos            { return c.Pos }
func (c *ChangeDirection) Position() Pos { return c.Pos }
func (c *ChangeSpeed) Position() Pos     { return c.Pos }
func (c *Accel) Position() Pos           { return c.Pos }
func (c *Wait) Position() Pos            { return c.Pos }
func (c *Vanish) Position() Pos          { return c.Pos }
func (c *Repeat) Position() Pos          { return c.Pos }
func (c *Action) Position() Pos          { return c.Pos }

func (*Fire) command()            {}
func (*ChangeDirection) command() {}
func (*ChangeSpeed) command()     {}
func (*Accel) command()           {}
func (*Wait) command()            {}
func (*Vanish) command()          {}
func (*Repeat) command()          {}
func (*Action) command()          {}
