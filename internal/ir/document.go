package ir

import (
	"fmt"

	"github.com/roach88/bulletml/internal/expr"
)

// Pos is a 1-based line/column position in the source document.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether p carries a real position.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Orientation is the document-level coordinate convention.
type Orientation int

const (
	OrientationNone Orientation = iota
	OrientationVertical
	OrientationHorizontal
)

func (o Orientation) String() string {
	switch o {
	case OrientationVertical:
		return "vertical"
	case OrientationHorizontal:
		return "horizontal"
	default:
		return "none"
	}
}

// ParseOrientation maps a document type attribute to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "", "none":
		return OrientationNone, true
	case "vertical":
		return OrientationVertical, true
	case "horizontal":
		return OrientationHorizontal, true
	}
	return OrientationNone, false
}

// Document is a parsed pattern document. Definitions keep declaration order
// within each kind.
type Document struct {
	Orientation Orientation
	Bullets     []*BulletDef
	Actions     []*ActionDef
	Fires       []*FireDef
	Pos         Pos
}

// BulletDef describes a bullet: optional initial direction and speed plus
// the actions it runs once fired.
type BulletDef struct {
	Label     string
	Direction *Direction
	Speed     *Speed
	Actions   []ActionSource
	Pos       Pos
}

// ActionDef is an ordered command list.
type ActionDef struct {
	Label    string
	Commands []Command
	Pos      Pos
}

// FireDef spawns one bullet.
type FireDef struct {
	Label     string
	Direction *Direction
	Speed     *Speed
	Bullet    BulletSource
	Pos       Pos
}

// Ref is a symbolic reference to a labelled definition. Params are
// evaluated in the caller's scope and bound to $1..$N in the callee.
type Ref struct {
	Kind   DefKind
	Label  string
	Params []expr.Expr
	Pos    Pos
}

// ActionSource holds exactly one of an inline action or a reference.
type ActionSource struct {
	Inline *ActionDef
	Ref    *Ref
}

// BulletSource holds exactly one of an inline bullet or a reference.
type BulletSource struct {
	Inline *BulletDef
	Ref    *Ref
}

// FireSource holds exactly one of an inline fire or a reference.
type FireSource struct {
	Inline *FireDef
	Ref    *Ref
}

// Definition is implemented by BulletDef, ActionDef and FireDef.
type Definition interface {
	Kind() DefKind
	DefLabel() string
	DefPos() Pos
}

func (*BulletDef) Kind() DefKind { return KindBullet }
func (*ActionDef) Kind() DefKind { return KindAction }
func (*FireDef) Kind() DefKind   { return KindFire }

func (d *BulletDef) DefLabel() string { return d.Label }
func (d *ActionDef) DefLabel() string { return d.Label }
func (d *FireDef) DefLabel() string   { return d.Label }

func (d *BulletDef) DefPos() Pos { return d.Pos }
func (d *ActionDef) DefPos() Pos { return d.Pos }
func (d *FireDef) DefPos() Pos   { return d.Pos }

// DefKind distinguishes the three label namespaces.
type DefKind int

const (
	KindBullet DefKind = iota
	KindAction
	KindFire
)

func (k DefKind) String() string {
	switch k {
	case KindBullet:
		return "bullet"
	case KindAction:
		return "action"
	case KindFire:
		return "fire"
	default:
		return fmt.Sprintf("DefKind(%d)", int(k))
	}
}

// DirectionKind says how a direction value is interpreted.
type DirectionKind int

const (
	DirectionAim DirectionKind = iota
	DirectionAbsolute
	DirectionRelative
	DirectionSequence
)

func (k DirectionKind) String() string {
	switch k {
	case DirectionAbsolute:
		return "absolute"
	case DirectionRelative:
		return "relative"
	case DirectionSequence:
		return "sequence"
	default:
		return "aim"
	}
}

// ParseDirectionKind maps a type attribute; empty means aim.
func ParseDirectionKind(s string) (DirectionKind, bool) {
	switch s {
	case "", "aim":
		return DirectionAim, true
	case "absolute":
		return DirectionAbsolute, true
	case "relative":
		return DirectionRelative, true
	case "sequence":
		return DirectionSequence, true
	}
	return DirectionAim, false
}

// SpeedKind says how a speed or acceleration value is interpreted.
type SpeedKind int

const (
	SpeedAbsolute SpeedKind = iota
	SpeedRelative
	SpeedSequence
)

func (k SpeedKind) String() string {
	switch k {
	case SpeedRelative:
		return "relative"
	case SpeedSequence:
		return "sequence"
	default:
		return "absolute"
	}
}

// ParseSpeedKind maps a type attribute; empty means absolute.
func ParseSpeedKind(s string) (SpeedKind, bool) {
	switch s {
	case "", "absolute":
		return SpeedAbsolute, true
	case "relative":
		return SpeedRelative, true
	case "sequence":
		return SpeedSequence, true
	}
	return SpeedAbsolute, false
}

// Direction is a <direction> element.
type Direction struct {
	Kind  DirectionKind
	Value expr.Expr
}

// Speed is a <speed> element.
type Speed struct {
	Kind  SpeedKind
	Value expr.Expr
}

// AccelComponent is a <horizontal> or <vertical> element of <accel>.
type AccelComponent struct {
	Kind  SpeedKind
	Value expr.Expr
}
