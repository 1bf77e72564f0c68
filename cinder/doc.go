// Package cinder implements an incremental compile-and-execute engine for a
// small statically typed C/C++ dialect. Fragments are accepted one at a time:
//   - Declarations (`int x = 5;`, functions, classes, namespaces, `extern "C"`)
//     extend a persistent translation unit.
//   - Statements and expressions are wrapped in a uniquely named function,
//     compiled, run, and the value of a trailing expression is captured.
//   - Every successful fragment becomes a sealed Transaction in the session
//     history; failed fragments leave no trace in the symbol table.
//
// Comments use `//` and `/* */`. Lines starting with `#` are directives
// (`#include`, `#pragma`). Execution is bounded by an optional step quota and
// a recursion limit.
package cinder
