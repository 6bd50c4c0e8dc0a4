package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/bulletml/internal/ir"
)

// element is a positioned XML element with namespaces stripped.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
	text     strings.Builder
	textPos  ir.Pos // first non-whitespace text, zero if none
	pos      ir.Pos
}

func (e *element) attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *element) hasText() bool {
	return e.textPos.IsValid()
}

// readTree decodes r into an element tree. Comments, processing
// instructions and directives are dropped.
func readTree(r io.Reader) (*element, error) {
	d := xml.NewDecoder(r)

	var (
		root  *element
		stack []*element
	)
	for {
		line, col := d.InputPos()
		pos := ir.Pos{Line: line, Col: col}

		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, col := d.InputPos()
			return nil, &ParseError{
				Code:    ErrXML,
				Message: xmlMessage(err),
				Pos:     ir.Pos{Line: line, Col: col},
				Err:     err,
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr)), pos: pos}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errorf(ErrUnexpectedElement, el, "second root element <%s>", el.name)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, &ParseError{Code: ErrUnexpectedNode, Message: "text outside the root element", Pos: pos}
				}
				continue
			}
			el := stack[len(stack)-1]
			if !el.hasText() {
				if off := firstNonSpace(string(t)); off >= 0 {
					el.textPos = advance(pos, string(t)[:off])
				}
			}
			el.text.Write(t)
		}
	}

	if root == nil {
		return nil, &ParseError{Code: ErrXML, Message: "document has no root element"}
	}
	return root, nil
}

func xmlMessage(err error) string {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return se.Msg
	}
	return err.Error()
}

func firstNonSpace(s string) int {
	return strings.IndexFunc(s, func(r rune) bool {
		return r != ' ' && r != '\t' && r != '\n' && r != '\r'
	})
}

// advance moves p over s.
func advance(p ir.Pos, s string) ir.Pos {
	for _, r := range s {
		if r == '\n' {
			p.Line++
			p.Col = 1
		} else {
			p.Col++
		}
	}
	return p
}

func (e *element) String() string {
	return fmt.Sprintf("<%s>", e.name)
}
