package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/roach88/bulletml/internal/expr"
	"github.com/roach88/bulletml/internal/ir"
)

// Namespace is the conventional BulletML namespace written by Marshal.
const Namespace = "http://www.asahi-net.or.jp/~cs8k-cyu/bulletml"

// Marshal renders doc as BulletML XML. Parsing the output yields a document
// equal to doc apart from source positions.
func Marshal(doc *ir.Document) ([]byte, error) {
	w := &xmlWriter{}
	w.buf.WriteString(xml.Header)

	attrs := []string{"xmlns", Namespace}
	if doc.Orientation != ir.OrientationNone {
		attrs = append(attrs, "type", doc.Orientation.String())
	}
	w.open("bulletml", attrs...)
	for _, b := range doc.Bullets {
		w.bullet(b)
	}
	for _, a := range doc.Actions {
		w.action(a)
	}
	for _, f := range doc.Fires {
		w.fire(f)
	}
	w.close("bulletml")

	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

type xmlWriter struct {
	buf   bytes.Buffer
	depth int
	err   error
}

func (w *xmlWriter) indent() {
	w.buf.WriteString(strings.Repeat("  ", w.depth))
}

func (w *xmlWriter) startTag(name string, attrs []string) {
	w.indent()
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		fmt.Fprintf(&w.buf, ` %s="`, attrs[i])
		w.escape(attrs[i+1])
		w.buf.WriteByte('"')
	}
}

func (w *xmlWriter) open(name string, attrs ...string) {
	w.startTag(name, attrs)
	w.buf.WriteString(">\n")
	w.depth++
}

func (w *xmlWriter) close(name string) {
	w.depth--
	w.indent()
	fmt.Fprintf(&w.buf, "</%s>\n", name)
}

func (w *xmlWriter) leaf(name string, attrs ...string) {
	w.startTag(name, attrs)
	w.buf.WriteString("/>\n")
}

func (w *xmlWriter) text(name string, e expr.Expr, attrs ...string) {
	if e == nil {
		if w.err == nil {
			w.err = fmt.Errorf("marshal: <%s> has no expression", name)
		}
		return
	}
	w.startTag(name, attrs)
	w.buf.WriteByte('>')
	w.escape(e.String())
	fmt.Fprintf(&w.buf, "</%s>\n", name)
}

func (w *xmlWriter) escape(s string) {
	if err := xml.EscapeText(&w.buf, []byte(s)); err != nil && w.err == nil {
		w.err = err
	}
}

func labelAttr(label string) []string {
	if label == "" {
		return nil
	}
	return []string{"label", label}
}

func (w *xmlWriter) bullet(b *ir.BulletDef) {
	if b.Direction == nil && b.Speed == nil && len(b.Actions) == 0 {
		w.leaf("bullet", labelAttr(b.Label)...)
		return
	}
	w.open("bullet", labelAttr(b.Label)...)
	if b.Direction != nil {
		w.text("direction", b.Direction.Value, "type", b.Direction.Kind.String())
	}
	if b.Speed != nil {
		w.text("speed", b.Speed.Value, "type", b.Speed.Kind.String())
	}
	for _, src := range b.Actions {
		w.actionSource(src)
	}
	w.close("bullet")
}

func (w *xmlWriter) action(a *ir.ActionDef) {
	if len(a.Commands) == 0 {
		w.leaf("action", labelAttr(a.Label)...)
		return
	}
	w.open("action", labelAttr(a.Label)...)
	for _, c := range a.Commands {
		w.command(c)
	}
	w.close("action")
}

func (w *xmlWriter) fire(f *ir.FireDef) {
	w.open("fire", labelAttr(f.Label)...)
	if f.Direction != nil {
		w.text("direction", f.Direction.Value, "type", f.Direction.Kind.String())
	}
	if f.Speed != nil {
		w.text("speed", f.Speed.Value, "type", f.Speed.Kind.String())
	}
	switch {
	case f.Bullet.Inline != nil:
		w.bullet(f.Bullet.Inline)
	case f.Bullet.Ref != nil:
		w.ref(f.Bullet.Ref)
	default:
		if w.err == nil {
			w.err = fmt.Errorf("marshal: fire %q has no bullet", f.Label)
		}
	}
	w.close("fire")
}

func refElement(kind ir.DefKind) string {
	return kind.String() + "Ref"
}

func (w *xmlWriter) ref(r *ir.Ref) {
	name := refElement(r.Kind)
	if len(r.Params) == 0 {
		w.leaf(name, "label", r.Label)
		return
	}
	w.open(name, "label", r.Label)
	for _, p := range r.Params {
		w.text("param", p)
	}
	w.close(name)
}

func (w *xmlWriter) actionSource(src ir.ActionSource) {
	switch {
	case src.Inline != nil:
		w.action(src.Inline)
	case src.Ref != nil:
		w.ref(src.Ref)
	}
}

func (w *xmlWriter) command(c ir.Command) {
	switch n := c.(type) {
	case *ir.Fire:
		if n.Source.Inline != nil {
			w.fire(n.Source.Inline)
		} else if n.Source.Ref != nil {
			w.ref(n.Source.Ref)
		}
	case *ir.Action:
		w.actionSource(n.Source)
	case *ir.ChangeDirection:
		w.open("changeDirection")
		w.text("direction", n.Direction.Value, "type", n.Direction.Kind.String())
		w.text("term", n.Term)
		w.close("changeDirection")
	case *ir.ChangeSpeed:
		w.open("changeSpeed")
		w.text("speed", n.Speed.Value, "type", n.Speed.Kind.String())
		w.text("term", n.Term)
		w.close("changeSpeed")
	case *ir.Accel:
		w.open("accel")
		if n.Horizontal != nil {
			w.text("horizontal", n.Horizontal.Value, "type", n.Horizontal.Kind.String())
		}
		if n.Vertical != nil {
			w.text("vertical", n.Vertical.Value, "type", n.Vertical.Kind.String())
		}
		w.text("term", n.Term)
		w.close("accel")
	case *ir.Wait:
		w.text("wait", n.Frames)
	case *ir.Vanish:
		w.leaf("vanish")
	case *ir.Repeat:
		w.open("repeat")
		w.text("times", n.Times)
		w.actionSource(n.Action)
		w.close("repeat")
	default:
		if w.err == nil {
			w.err = fmt.Errorf("marshal: unsupported command %T", c)
		}
	}
}
