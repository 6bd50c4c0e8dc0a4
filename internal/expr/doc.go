// Package expr implements the numeric expression language embedded in
// BulletML documents.
//
// Expressions are small arithmetic formulas over constants and three kinds of
// variables:
//
//	$rank   difficulty scalar in [0, 1] supplied by the host
//	$rand   uniform draw in [0, 1), drawn once per occurrence per evaluation
//	$1..$N  parameters bound by the enclosing actionRef/bulletRef/fireRef
//
// The operators are + - * / % with the usual precedence, unary minus and
// parentheses.
//
// Evaluation is pure: everything an expression can observe is passed in a
// Scope. No expression reads global state, so one parsed document can be
// evaluated by any number of runners at once.
package expr
