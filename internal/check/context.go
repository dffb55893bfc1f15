// Package check implements the bidirectional type inference/checking
// algorithm of spec.md 4.5, grounded on funxy's internal/analyzer
// inference.go/inference_calls.go infer-then-compare shape (there
// driven by Hindley-Milner unification, here by whnf + eq_modulo since
// this core has no unification beyond first-order pattern matching).
package check

import "github.com/funvibe/lambdapi/internal/term"

// Context is the ordered typing context of spec.md 3: a persistent,
// append-only sequence of (variable, type) pairs. Because the term
// kernel is locally nameless, variables are looked up by FreeVar ID
// rather than by de Bruijn position — every Prod/Abst body is opened
// before infer/check recurses into it, so no raw Var ever reaches a
// Context lookup in a well-scoped term.
type Context struct {
	parent *Context
	fv     term.FreeVar
	typ    term.Term
}

// Empty is the empty typing context.
func Empty() *Context { return nil }

// Extend returns a new context with (fv, typ) prepended; the receiver
// is left untouched, so a single base context can be safely reused
// across sibling branches (e.g. checking each argument of a spine).
func (c *Context) Extend(fv term.FreeVar, typ term.Term) *Context {
	return &Context{parent: c, fv: fv, typ: typ}
}

// Lookup finds the type bound to fv, searching innermost-first so
// shadowing (a later Extend of the same FreeVar, which cannot
// normally happen since IDs are unique, or of a same-named hint)
// resolves to the most recent binding.
func (c *Context) Lookup(fv term.FreeVar) (term.Term, bool) {
	for n := c; n != nil; n = n.parent {
		if n.fv.ID == fv.ID {
			return n.typ, true
		}
	}
	return nil, false
}
