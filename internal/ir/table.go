package ir

import (
	"fmt"
	"strings"
)

// TopPrefix marks the actions a bullet runs when started from the top.
const TopPrefix = "top"

// DuplicateLabelError reports two definitions of the same kind sharing a
// label.
type DuplicateLabelError struct {
	Kind  DefKind
	Label string
	Pos   Pos
	First Pos
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate %s label %q (first defined at %s)", e.Kind, e.Label, e.First)
}

// Table indexes the labelled definitions of a document. It is read-only
// after NewTable returns and safe for concurrent use.
type Table struct {
	doc     *Document
	defs    []Definition
	bullets map[string]*BulletDef
	actions map[string]*ActionDef
	fires   map[string]*FireDef
	top     []*ActionDef
	arity   map[Definition]int
}

// NewTable indexes every labelled definition in doc, top-level or nested.
// References are not resolved; a dangling reference only fails when it is
// executed.
func NewTable(doc *Document) (*Table, error) {
	t := &Table{
		doc:     doc,
		bullets: make(map[string]*BulletDef),
		actions: make(map[string]*ActionDef),
		fires:   make(map[string]*FireDef),
		arity:   make(map[Definition]int),
	}

	var err error
	Inspect(doc, func(n any) bool {
		if err != nil {
			return false
		}
		def, ok := n.(Definition)
		if !ok {
			return true
		}
		t.arity[def] = Arity(def)
		if def.DefLabel() == "" {
			return true
		}
		if prev, dup := t.Lookup(def.Kind(), def.DefLabel()); dup {
			err = &DuplicateLabelError{
				Kind:  def.Kind(),
				Label: def.DefLabel(),
				Pos:   def.DefPos(),
				First: prev.DefPos(),
			}
			return false
		}
		switch d := def.(type) {
		case *BulletDef:
			t.bullets[d.Label] = d
		case *ActionDef:
			t.actions[d.Label] = d
		case *FireDef:
			t.fires[d.Label] = d
		}
		t.defs = append(t.defs, def)
		return true
	})
	if err != nil {
		return nil, err
	}

	for _, a := range doc.Actions {
		if strings.HasPrefix(a.Label, TopPrefix) {
			t.top = append(t.top, a)
		}
	}
	return t, nil
}

// Lookup finds a definition by kind and label.
func (t *Table) Lookup(kind DefKind, label string) (Definition, bool) {
	switch kind {
	case KindBullet:
		d, ok := t.bullets[label]
		return d, ok
	case KindAction:
		d, ok := t.actions[label]
		return d, ok
	case KindFire:
		d, ok := t.fires[label]
		return d, ok
	}
	return nil, false
}

// Bullet returns the bullet labelled label.
func (t *Table) Bullet(label string) (*BulletDef, bool) {
	d, ok := t.bullets[label]
	return d, ok
}

// Action returns the action labelled label.
func (t *Table) Action(label string) (*ActionDef, bool) {
	d, ok := t.actions[label]
	return d, ok
}

// Fire returns the fire labelled label.
func (t *Table) Fire(label string) (*FireDef, bool) {
	d, ok := t.fires[label]
	return d, ok
}

// TopActions returns the top-level actions whose label starts with "top",
// in declaration order.
func (t *Table) TopActions() []*ActionDef {
	return t.top
}

// Definitions returns every labelled definition in document order.
func (t *Table) Definitions() []Definition {
	return t.defs
}

// Arity returns the highest $N def uses.
func (t *Table) Arity(def Definition) int {
	if n, ok := t.arity[def]; ok {
		return n
	}
	return Arity(def)
}

// Orientation returns the document orientation.
func (t *Table) Orientation() Orientation {
	return t.doc.Orientation
}

// Document returns the indexed document.
func (t *Table) Document() *Document {
	return t.doc
}
