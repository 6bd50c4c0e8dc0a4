package ir

import "github.com/roach88/bulletml/internal/expr"

// DocumentJSON returns the canonical JSON encoding of doc. Expressions are
// encoded as their printed form.
func DocumentJSON(doc *Document) ([]byte, error) {
	return MarshalCanonical(DocumentValue(doc))
}

// DocumentValue converts doc to a canonical JSON value.
func DocumentValue(doc *Document) Object {
	bullets := make(Array, len(doc.Bullets))
	for i, b := range doc.Bullets {
		bullets[i] = bulletValue(b)
	}
	actions := make(Array, len(doc.Actions))
	for i, a := range doc.Actions {
		actions[i] = actionValue(a)
	}
	fires := make(Array, len(doc.Fires))
	for i, f := range doc.Fires {
		fires[i] = fireValue(f)
	}
	return Object{
		"type":    String(doc.Orientation.String()),
		"bullets": bullets,
		"actions": actions,
		"fires":   fires,
	}
}

func exprValue(e expr.Expr) Value {
	if e == nil {
		return String("")
	}
	return String(e.String())
}

func labelled(obj Object, label string) Object {
	if label != "" {
		obj["label"] = String(label)
	}
	return obj
}

func bulletValue(b *BulletDef) Object {
	obj := labelled(Object{}, b.Label)
	if b.Direction != nil {
		obj["direction"] = directionValue(b.Direction)
	}
	if b.Speed != nil {
		obj["speed"] = speedValue(b.Speed.Kind, b.Speed.Value)
	}
	actions := make(Array, len(b.Actions))
	for i, src := range b.Actions {
		actions[i] = actionSourceValue(src)
	}
	obj["actions"] = actions
	return obj
}

func actionValue(a *ActionDef) Object {
	cmds := make(Array, len(a.Commands))
	for i, c := range a.Commands {
		cmds[i] = commandValue(c)
	}
	return labelled(Object{"commands": cmds}, a.Label)
}

func fireValue(f *FireDef) Object {
	obj := labelled(Object{}, f.Label)
	if f.Direction != nil {
		obj["direction"] = directionValue(f.Direction)
	}
	if f.Speed != nil {
		obj["speed"] = speedValue(f.Speed.Kind, f.Speed.Value)
	}
	if f.Bullet.Inline != nil {
		obj["bullet"] = bulletValue(f.Bullet.Inline)
	} else if f.Bullet.Ref != nil {
		obj["bullet"] = refValue(f.Bullet.Ref)
	}
	return obj
}

func refValue(r *Ref) Object {
	params := make(Array, len(r.Params))
	for i, p := range r.Params {
		params[i] = exprValue(p)
	}
	return Object{
		"ref":    String(r.Kind.String()),
		"label":  String(r.Label),
		"params": params,
	}
}

func actionSourceValue(src ActionSource) Value {
	if src.Inline != nil {
		return actionValue(src.Inline)
	}
	if src.Ref != nil {
		return refValue(src.Ref)
	}
	return Object{}
}

func directionValue(d *Direction) Object {
	return Object{"type": String(d.Kind.String()), "value": exprValue(d.Value)}
}

func speedValue(k SpeedKind, v expr.Expr) Object {
	return Object{"type": String(k.String()), "value": exprValue(v)}
}

func commandValue(c Command) Object {
	switch n := c.(type) {
	case *Fire:
		obj := Object{"op": String("fire")}
		if n.Source.Inline != nil {
			obj["fire"] = fireValue(n.Source.Inline)
		} else if n.Source.Ref != nil {
			obj["fire"] = refValue(n.Source.Ref)
		}
		return obj
	case *ChangeDirection:
		return Object{
			"op":        String("changeDirection"),
			"direction": directionValue(n.Direction),
			"term":      exprValue(n.Term),
		}
	case *ChangeSpeed:
		return Object{
			"op":    String("changeSpeed"),
			"speed": speedValue(n.Speed.Kind, n.Speed.Value),
			"term":  exprValue(n.Term),
		}
	case *Accel:
		obj := Object{"op": String("accel"), "term": exprValue(n.Term)}
		if n.Horizontal != nil {
			obj["horizontal"] = speedValue(n.Horizontal.Kind, n.Horizontal.Value)
		}
		if n.Vertical != nil {
			obj["vertical"] = speedValue(n.Vertical.Kind, n.Vertical.Value)
		}
		return obj
	case *Wait:
		return Object{"op": String("wait"), "frames": exprValue(n.Frames)}
	case *Vanish:
		return Object{"op": String("vanish")}
	case *Repeat:
		return Object{
			"op":     String("repeat"),
			"times":  exprValue(n.Times),
			"action": actionSourceValue(n.Action),
		}
	case *Action:
		return Object{"op": String("action"), "action": actionSourceValue(n.Source)}
	default:
		return Object{"op": String("unknown")}
	}
}
