// Package fuzztests holds fuzz harnesses for the checking pipeline: arbitrary
// bytes are decoded as a JSON syntax tree and, when that succeeds, lowered,
// solved and concretized. The pipeline must report problems as diagnostics,
// never panic and never hang.
//
// Зависимости: internal/ast, internal/lower, internal/mono, internal/testkit.
package fuzztests
