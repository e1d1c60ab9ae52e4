// Package eval implements executable semantics for expression trees and
// uses them to check that return elimination preserves behavior.
//
// The evaluator models:
//   - sequential blocks whose last statement is the block value
//   - conditions that evaluate exactly one arm
//   - return statements that stop evaluation of the enclosing root
//   - local variables, struct records and field reads
//   - function calls as opaque effects: order and arguments are tracked
//     and the call yields the zero value of its type
//
// A root whose properties are all bool can be verified exhaustively by
// enumerating every assignment of its inputs.
package eval
