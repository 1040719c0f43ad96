// Package vm implements the dunder object model.
//
// This package contains:
//   - The closed set of dispatchable operations and their signatures
//   - Per-type slot tables with an empty sentinel for every operation
//   - Type objects, C3 method resolution and native layout selection
//   - Slot propagation when special methods change on mutable types
//   - The descriptor protocol and generic attribute resolution
//   - Binary/unary operator dispatch with reflected operands
//   - Guarded inline caches for call sites
//   - The built-in types (object, type, int, float, str, ...)
//
// The bytecode loop, parser and module system live outside this package.
// They drive the model through Runtime: GetAttr, SetAttr, DelAttr, UnaryOp,
// BinaryOp and CreateType.
package vm
