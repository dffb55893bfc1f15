// Package reduce implements the weak-head/full normalisers and the
// higher-order pattern matcher of spec.md 4.2-4.3. It is grounded on
// funxy's internal/typesystem/unify.go: the same "walk two term trees,
// thread a substitution, recurse" shape, with a fall-back to a
// convertibility check when a hole is bound twice, here specialised from type
// unification to rule-LHS pattern matching against a concrete subject,
// and augmented with the Miller higher-order-hole case spec.md 4.3
// calls for.
package reduce

import (
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

// Assignment is a rule match's meta-variable substitution, sigma[k]
// for k in 0..arity-1.
type Assignment []term.Term

// Match attempts to match pattern pat against subject, threading
// bindings into sigma (sized to the rule's arity, entries nil until
// bound). depth counts how many pattern-side binders have been
// descended through so far; it is 0 for a top-level lhs_arg.
//
// Per spec.md 4.3 step 1, the subject is unfolded and whnf'd only at
// the outermost position of each recursive call; it is not
// pre-normalised before the call.
func Match(pat, subject term.Term, rdr symtab.Reader, sigma Assignment, depth int) bool {
	subject = Whnf(term.Unfold(subject), rdr)
	pat = term.Unfold(pat)

	switch p := pat.(type) {
	case term.PatHole:
		return bindHole(p.Index, subject, rdr, sigma)

	case term.Var:
		sv, ok := subject.(term.Var)
		return ok && sv.Index == p.Index

	case term.Sym:
		sv, ok := subject.(term.Sym)
		return ok && sv.Module == p.Module && sv.Name == p.Name

	case term.App:
		head, args := term.Spine(p)
		if hole, ok := head.(term.PatHole); ok {
			return matchHigherOrderHole(hole.Index, args, subject, rdr, sigma, depth)
		}
		sHead, sArgs := term.Spine(subject)
		if len(sArgs) != len(args) {
			return false
		}
		if !Match(head, sHead, rdr, sigma, depth) {
			return false
		}
		for i := range args {
			if !Match(args[i], sArgs[i], rdr, sigma, depth) {
				return false
			}
		}
		return true

	case term.Abst:
		sv, ok := subject.(term.Abst)
		if !ok {
			return false
		}
		if (p.Domain == nil) != (sv.Domain == nil) {
			return false
		}
		if p.Domain != nil && !Match(p.Domain, sv.Domain, rdr, sigma, depth) {
			return false
		}
		return Match(p.Body, sv.Body, rdr, sigma, depth+1)

	case term.Prod:
		sv, ok := subject.(term.Prod)
		if !ok {
			return false
		}
		if !Match(p.Domain, sv.Domain, rdr, sigma, depth) {
			return false
		}
		return Match(p.Body, sv.Body, rdr, sigma, depth+1)

	case term.Kind:
		_, ok := subject.(term.Kind)
		return ok

	case term.Type:
		_, ok := subject.(term.Type)
		return ok

	default:
		return false
	}
}

// bindHole handles a bare PatHole(k) occurrence (no applied
// arguments). If k is already bound, the existing binding and the new
// candidate must be eq_modulo-equal (spec.md 4.3 step 2). EqModulo
// lives in this package (see eqmodulo.go) rather than in
// internal/convert so the matcher can call it directly without an
// import cycle; internal/convert re-exports it as the public name
// spec.md 4.4 uses.
func bindHole(k int, subject term.Term, rdr symtab.Reader, sigma Assignment) bool {
	if k < 0 || k >= len(sigma) {
		return false
	}
	if sigma[k] == nil {
		sigma[k] = subject
		return true
	}
	return EqModulo(sigma[k], subject, rdr)
}

// matchHigherOrderHole implements spec.md 4.3 step 3: PatHole(k) v1..vj
// binds k to lambda v1...vj. subject, where subject is re-expressed
// relative to a fresh j-ary binder frame. args must be distinct bound
// Vars (the Miller pattern condition); internal/rules validates this
// statically before a rule is admitted, so a violation here is
// treated as a match failure rather than a panic.
func matchHigherOrderHole(k int, args []term.Term, subject term.Term, rdr symtab.Reader, sigma Assignment, depth int) bool {
	indices := make([]int, len(args))
	seen := make(map[int]bool, len(args))
	for i, a := range args {
		v, ok := a.(term.Var)
		if !ok || v.Index >= depth || seen[v.Index] {
			return false
		}
		seen[v.Index] = true
		indices[i] = v.Index
	}
	abstracted := abstractOverIndices(subject, indices, depth)
	if abstracted == nil {
		return false
	}
	value := abstracted
	for range args {
		value = term.Abst{Body: value}
	}
	return bindHole(k, value, rdr, sigma)
}

// abstractOverIndices re-expresses t (at the given original depth)
// relative to a new len(indices)-ary binder frame: Var(indices[len-1])
// becomes the new Var(0) (innermost new binder), ..., Var(indices[0])
// becomes Var(len(indices)-1). Any other Var(i) with i < depth not in
// indices makes the subject unrepresentable as a function of exactly
// these parameters (returns nil); Var(i) with i >= depth refers past
// the rule's own local scope and is shifted down to sit under the new
// frame instead.
func abstractOverIndices(t term.Term, indices []int, depth int) term.Term {
	newIndexOf := make(map[int]int, len(indices))
	for newIdx, orig := range indices {
		newIndexOf[orig] = len(indices) - 1 - newIdx
	}
	var rec func(t term.Term, d int) term.Term
	rec = func(t term.Term, d int) term.Term {
		switch tt := t.(type) {
		case term.Var:
			if tt.Index < d {
				return tt // bound locally within the subject itself, untouched
			}
			orig := tt.Index - d
			if orig < depth {
				ni, ok := newIndexOf[orig]
				if !ok {
					return nil
				}
				return term.Var{Index: ni + d}
			}
			return term.Var{Index: tt.Index - depth + len(indices)}
		case term.FreeVar, term.Sym, term.Kind, term.Type, term.PatHole:
			return tt
		case term.App:
			f := rec(tt.Fun, d)
			a := rec(tt.Arg, d)
			if f == nil || a == nil {
				return nil
			}
			return term.App{Fun: f, Arg: a}
		case term.Prod:
			dm := rec(tt.Domain, d)
			bd := rec(tt.Body, d+1)
			if dm == nil || bd == nil {
				return nil
			}
			return term.Prod{Domain: dm, Body: bd, Hint: tt.Hint}
		case term.Abst:
			var dm term.Term
			if tt.Domain != nil {
				dm = rec(tt.Domain, d)
				if dm == nil {
					return nil
				}
			}
			bd := rec(tt.Body, d+1)
			if bd == nil {
				return nil
			}
			return term.Abst{Domain: dm, Body: bd, Hint: tt.Hint}
		default:
			return nil
		}
	}
	return rec(t, 0)
}
