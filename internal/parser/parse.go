package parser

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/roach88/bulletml/internal/expr"
	"github.com/roach88/bulletml/internal/ir"
)

// Parse parses a BulletML document.
func Parse(src []byte) (*ir.Document, error) {
	return ParseReader(bytes.NewReader(src))
}

// ParseString parses a BulletML document held in a string.
func ParseString(src string) (*ir.Document, error) {
	return ParseReader(strings.NewReader(src))
}

// ParseReader parses a BulletML document read from r.
func ParseReader(r io.Reader) (*ir.Document, error) {
	root, err := readTree(r)
	if err != nil {
		return nil, err
	}
	doc, err := buildDocument(root)
	if err != nil {
		return nil, err
	}

	// Labels must be unique per kind; the table is the single place that
	// checks it.
	if _, err := ir.NewTable(doc); err != nil {
		var dup *ir.DuplicateLabelError
		if errors.As(err, &dup) {
			return nil, &ParseError{
				Code:    ErrDuplicateLabel,
				Message: dup.Error(),
				Element: dup.Kind.String(),
				Pos:     dup.Pos,
				Err:     err,
			}
		}
		return nil, err
	}
	return doc, nil
}

func buildDocument(root *element) (*ir.Document, error) {
	if root.name != "bulletml" {
		return nil, errorf(ErrUnexpectedElement, root, "root element must be <bulletml>, got %s", root)
	}
	if err := noText(root); err != nil {
		return nil, err
	}

	doc := &ir.Document{Pos: root.pos}
	if v, ok := root.attr("type"); ok {
		o, known := ir.ParseOrientation(v)
		if !known {
			return nil, errorf(ErrUnknownDocumentType, root, "unknown document type %q", v)
		}
		doc.Orientation = o
	}

	for _, c := range root.children {
		switch c.name {
		case "bullet":
			b, err := buildBullet(c)
			if err != nil {
				return nil, err
			}
			doc.Bullets = append(doc.Bullets, b)
		case "action":
			a, err := buildAction(c)
			if err != nil {
				return nil, err
			}
			doc.Actions = append(doc.Actions, a)
		case "fire":
			f, err := buildFire(c)
			if err != nil {
				return nil, err
			}
			doc.Fires = append(doc.Fires, f)
		default:
			return nil, unexpected(c, root)
		}
	}
	return doc, nil
}

func buildBullet(el *element) (*ir.BulletDef, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	b := &ir.BulletDef{Pos: el.pos}
	b.Label, _ = el.attr("label")

	var seen singular
	for _, c := range el.children {
		var err error
		switch c.name {
		case "direction":
			if err = seen.once(c); err == nil {
				b.Direction, err = buildDirection(c)
			}
		case "speed":
			if err = seen.once(c); err == nil {
				b.Speed, err = buildSpeed(c)
			}
		case "action":
			var a *ir.ActionDef
			if a, err = buildAction(c); err == nil {
				b.Actions = append(b.Actions, ir.ActionSource{Inline: a})
			}
		case "actionRef":
			var r *ir.Ref
			if r, err = buildRef(c, ir.KindAction); err == nil {
				b.Actions = append(b.Actions, ir.ActionSource{Ref: r})
			}
		default:
			err = unexpected(c, el)
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildAction(el *element) (*ir.ActionDef, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	a := &ir.ActionDef{Pos: el.pos}
	a.Label, _ = el.attr("label")

	for _, c := range el.children {
		cmd, err := buildCommand(c, el)
		if err != nil {
			return nil, err
		}
		a.Commands = append(a.Commands, cmd)
	}
	return a, nil
}

func buildCommand(el, parent *element) (ir.Command, error) {
	switch el.name {
	case "fire":
		f, err := buildFire(el)
		if err != nil {
			return nil, err
		}
		return &ir.Fire{Source: ir.FireSource{Inline: f}, Pos: el.pos}, nil
	case "fireRef":
		r, err := buildRef(el, ir.KindFire)
		if err != nil {
			return nil, err
		}
		return &ir.Fire{Source: ir.FireSource{Ref: r}, Pos: el.pos}, nil
	case "action":
		a, err := buildAction(el)
		if err != nil {
			return nil, err
		}
		return &ir.Action{Source: ir.ActionSource{Inline: a}, Pos: el.pos}, nil
	case "actionRef":
		r, err := buildRef(el, ir.KindAction)
		if err != nil {
			return nil, err
		}
		return &ir.Action{Source: ir.ActionSource{Ref: r}, Pos: el.pos}, nil
	case "changeDirection":
		return buildChangeDirection(el)
	case "changeSpeed":
		return buildChangeSpeed(el)
	case "accel":
		return buildAccel(el)
	case "wait":
		e, err := buildExpr(el)
		if err != nil {
			return nil, err
		}
		return &ir.Wait{Frames: e, Pos: el.pos}, nil
	case "vanish":
		if err := empty(el); err != nil {
			return nil, err
		}
		return &ir.Vanish{Pos: el.pos}, nil
	case "repeat":
		return buildRepeat(el)
	default:
		return nil, unexpected(el, parent)
	}
}

func buildFire(el *element) (*ir.FireDef, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	f := &ir.FireDef{Pos: el.pos}
	f.Label, _ = el.attr("label")

	var seen singular
	for _, c := range el.children {
		var err error
		switch c.name {
		case "direction":
			if err = seen.once(c); err == nil {
				f.Direction, err = buildDirection(c)
			}
		case "speed":
			if err = seen.once(c); err == nil {
				f.Speed, err = buildSpeed(c)
			}
		case "bullet":
			if err = seen.onceAs(c, "bullet"); err == nil {
				f.Bullet.Inline, err = buildBullet(c)
			}
		case "bulletRef":
			if err = seen.onceAs(c, "bullet"); err == nil {
				f.Bullet.Ref, err = buildRef(c, ir.KindBullet)
			}
		default:
			err = unexpected(c, el)
		}
		if err != nil {
			return nil, err
		}
	}
	if f.Bullet.Inline == nil && f.Bullet.Ref == nil {
		return nil, errorf(ErrMissingElement, el, "<fire> requires <bullet> or <bulletRef>")
	}
	return f, nil
}

func buildRef(el *element, kind ir.DefKind) (*ir.Ref, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	label, ok := el.attr("label")
	if !ok {
		return nil, errorf(ErrMissingAttribute, el, "<%s> requires a label attribute", el.name)
	}
	r := &ir.Ref{Kind: kind, Label: label, Pos: el.pos}
	for _, c := range el.children {
		if c.name != "param" {
			return nil, unexpected(c, el)
		}
		e, err := buildExpr(c)
		if err != nil {
			return nil, err
		}
		r.Params = append(r.Params, e)
	}
	return r, nil
}

func buildChangeDirection(el *element) (ir.Command, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	cmd := &ir.ChangeDirection{Pos: el.pos}
	var seen singular
	for _, c := range el.children {
		var err error
		switch c.name {
		case "direction":
			if err = seen.once(c); err == nil {
				cmd.Direction, err = buildDirection(c)
			}
		case "term":
			if err = seen.once(c); err == nil {
				cmd.Term, err = buildExpr(c)
			}
		default:
			err = unexpected(c, el)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := seen.require(el, "direction", "term"); err != nil {
		return nil, err
	}
	return cmd, nil
}

func buildChangeSpeed(el *element) (ir.Command, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	cmd := &ir.ChangeSpeed{Pos: el.pos}
	var seen singular
	for _, c := range el.children {
		var err error
		switch c.name {
		case "speed":
			if err = seen.once(c); err == nil {
				cmd.Speed, err = buildSpeed(c)
			}
		case "term":
			if err = seen.once(c); err == nil {
				cmd.Term, err = buildExpr(c)
			}
		default:
			err = unexpected(c, el)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := seen.require(el, "speed", "term"); err != nil {
		return nil, err
	}
	return cmd, nil
}

func buildAccel(el *element) (ir.Command, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	cmd := &ir.Accel{Pos: el.pos}
	var seen singular
	for _, c := range el.children {
		var err error
		switch c.name {
		case "horizontal":
			if err = seen.once(c); err == nil {
				cmd.Horizontal, err = buildAccelComponent(c)
			}
		case "vertical":
			if err = seen.once(c); err == nil {
				cmd.Vertical, err = buildAccelComponent(c)
			}
		case "term":
			if err = seen.once(c); err == nil {
				cmd.Term, err = buildExpr(c)
			}
		default:
			err = unexpected(c, el)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := seen.require(el, "term"); err != nil {
		return nil, err
	}
	return cmd, nil
}

func buildRepeat(el *element) (ir.Command, error) {
	if err := noText(el); err != nil {
		return nil, err
	}
	cmd := &ir.Repeat{Pos: el.pos}
	var seen singular
	for _, c := range el.children {
		var err error
		switch c.name {
		case "times":
			if err = seen.once(c); err == nil {
				cmd.Times, err = buildExpr(c)
			}
		case "action":
			if err = seen.onceAs(c, "action"); err == nil {
				cmd.Action.Inline, err = buildAction(c)
			}
		case "actionRef":
			if err = seen.onceAs(c, "action"); err == nil {
				cmd.Action.Ref, err = buildRef(c, ir.KindAction)
			}
		default:
			err = unexpected(c, el)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := seen.require(el, "times", "action"); err != nil {
		return nil, err
	}
	return cmd, nil
}

func buildDirection(el *element) (*ir.Direction, error) {
	t, _ := el.attr("type")
	kind, ok := ir.ParseDirectionKind(t)
	if !ok {
		return nil, errorf(ErrUnknownDirectionType, el, "unknown direction type %q", t)
	}
	e, err := buildExpr(el)
	if err != nil {
		return nil, err
	}
	return &ir.Direction{Kind: kind, Value: e}, nil
}

func buildSpeed(el *element) (*ir.Speed, error) {
	t, _ := el.attr("type")
	kind, ok := ir.ParseSpeedKind(t)
	if !ok {
		return nil, errorf(ErrUnknownSpeedType, el, "unknown speed type %q", t)
	}
	e, err := buildExpr(el)
	if err != nil {
		return nil, err
	}
	return &ir.Speed{Kind: kind, Value: e}, nil
}

func buildAccelComponent(el *element) (*ir.AccelComponent, error) {
	t, _ := el.attr("type")
	kind, ok := ir.ParseSpeedKind(t)
	if !ok {
		return nil, errorf(ErrUnknownAccelType, el, "unknown %s type %q", el.name, t)
	}
	e, err := buildExpr(el)
	if err != nil {
		return nil, err
	}
	return &ir.AccelComponent{Kind: kind, Value: e}, nil
}

// buildExpr parses the text content of an expression element.
func buildExpr(el *element) (expr.Expr, error) {
	if len(el.children) > 0 {
		c := el.children[0]
		return nil, errorf(ErrUnexpectedNode, c, "element %s inside expression element %s", c, el)
	}
	e, err := expr.Parse(el.text.String())
	if err != nil {
		pe := errorf(ErrExpression, el, "%s: %v", el, err)
		if el.hasText() {
			pe.Pos = el.textPos
		}
		pe.Err = err
		return nil, pe
	}
	return e, nil
}

func noText(el *element) error {
	if el.hasText() {
		return &ParseError{
			Code:    ErrUnexpectedNode,
			Message: "unexpected text in " + el.String(),
			Element: el.name,
			Pos:     el.textPos,
		}
	}
	return nil
}

func empty(el *element) error {
	if err := noText(el); err != nil {
		return err
	}
	if len(el.children) > 0 {
		return unexpected(el.children[0], el)
	}
	return nil
}

func unexpected(el, parent *element) error {
	return errorf(ErrUnexpectedElement, el, "unexpected element %s in %s", el, parent)
}

// singular tracks children that may appear at most once.
type singular map[string]bool

func (s *singular) once(el *element) error {
	return s.onceAs(el, el.name)
}

func (s *singular) onceAs(el *element, slot string) error {
	if *s == nil {
		*s = make(singular)
	}
	if (*s)[slot] {
		return errorf(ErrDuplicateElement, el, "duplicate %s", el)
	}
	(*s)[slot] = true
	return nil
}

func (s singular) require(el *element, slots ...string) error {
	for _, slot := range slots {
		if !s[slot] {
			return errorf(ErrMissingElement, el, "%s requires <%s>", el, slot)
		}
	}
	return nil
}
