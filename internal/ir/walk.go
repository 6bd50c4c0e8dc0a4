package ir

import "github.com/roach88/bulletml/internal/expr"

// Inspect traverses the tree rooted at node in depth-first order, calling
// f for every *Document, definition, Command and *Ref. If f returns false
// the children of that node are skipped. References are not followed.
func Inspect(node any, f func(any) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Document:
		for _, b := range n.Bullets {
			Inspect(b, f)
		}
		for _, a := range n.Actions {
			Inspect(a, f)
		}
		for _, fd := range n.Fires {
			Inspect(fd, f)
		}
	case *BulletDef:
		for _, src := range n.Actions {
			inspectAction(src, f)
		}
	case *ActionDef:
		for _, c := range n.Commands {
			Inspect(c, f)
		}
	case *FireDef:
		if n.Bullet.Inline != nil {
			Inspect(n.Bullet.Inline, f)
		} else if n.Bullet.Ref != nil {
			Inspect(n.Bullet.Ref, f)
		}
	case *Fire:
		if n.Source.Inline != nil {
			Inspect(n.Source.Inline, f)
		} else if n.Source.Ref != nil {
			Inspect(n.Source.Ref, f)
		}
	case *Repeat:
		inspectAction(n.Action, f)
	case *Action:
		inspectAction(n.Source, f)
	}
}

func inspectAction(src ActionSource, f func(any) bool) {
	if src.Inline != nil {
		Inspect(src.Inline, f)
	} else if src.Ref != nil {
		Inspect(src.Ref, f)
	}
}

// Exprs returns the expressions held directly by node, excluding those of
// nested definitions.
func Exprs(node any) []expr.Expr {
	var out []expr.Expr
	add := func(es ...expr.Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	switch n := node.(type) {
	case *BulletDef:
		if n.Direction != nil {
			add(n.Direction.Value)
		}
		if n.Speed != nil {
			add(n.Speed.Value)
		}
	case *FireDef:
		if n.Direction != nil {
			add(n.Direction.Value)
		}
		if n.Speed != nil {
			add(n.Speed.Value)
		}
	case *Ref:
		add(n.Params...)
	case *ChangeDirection:
		add(n.Direction.Value, n.Term)
	case *ChangeSpeed:
		add(n.Speed.Value, n.Term)
	case *Accel:
		if n.Horizontal != nil {
			add(n.Horizontal.Value)
		}
		if n.Vertical != nil {
			add(n.Vertical.Value)
		}
		add(n.Term)
	case *Wait:
		add(n.Frames)
	case *Repeat:
		add(n.Times)
	}
	return out
}

// Arity returns the highest $N used anywhere inside def, including inline
// children but not the bodies of referenced definitions.
func Arity(def Definition) int {
	arity := 0
	Inspect(def, func(n any) bool {
		for _, e := range Exprs(n) {
			arity = max(arity, expr.MaxParam(e))
		}
		return true
	})
	return arity
}
