// Package parser reads BulletML documents into the ir AST and writes them
// back out.
//
// Parsing is strict. Unknown elements, misplaced text, missing or duplicated
// required children, unknown type qualifiers and malformed expressions all
// fail the whole parse with a *ParseError carrying the line and column of
// the offending node. A document that parses is structurally complete;
// references are still symbolic and are checked separately by Validate.
package parser
