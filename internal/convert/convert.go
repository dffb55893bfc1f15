// Package convert exposes the convertibility test of spec.md 4.4 under
// the name the rest of the core calls it by. The decision procedure
// itself lives in internal/reduce (eqmodulo.go) so the pattern matcher
// can call it directly without an import cycle; this package is the
// stable, documented entry point spec.md 2 describes as its own
// component ("Convertibility (10%)").
package convert

import (
	"github.com/funvibe/lambdapi/internal/reduce"
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

// EqModulo decides whether t and u are convertible modulo
// alpha-beta-rule equivalence.
func EqModulo(t, u term.Term, rdr symtab.Reader) bool {
	return reduce.EqModulo(t, u, rdr)
}
