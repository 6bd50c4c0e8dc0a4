// Package ir holds the parsed form of a BulletML document: the definition
// AST, the definition table built from it, and a canonical JSON encoding
// used for content hashing.
//
// ir imports only internal/expr. Parsing lives in internal/parser and
// execution in internal/runner; both depend on ir, never the reverse.
//
// Documents are immutable once built. References between definitions are
// kept symbolic (a label plus parameter expressions) and resolved through
// a Table at execution time, so forward and mutually recursive references
// need no special handling here.
package ir
