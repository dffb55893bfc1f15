package term

import (
	"strconv"
	"sync/atomic"
)

var freeVarCounter int64

// NewFreeVar mints a process-unique free variable. hint is a display
// name only; it plays no role in equality or matching.
func NewFreeVar(hint string) FreeVar {
	id := atomic.AddInt64(&freeVarCounter, 1)
	return FreeVar{ID: int(id), Hint: hint}
}

// Open pulls the outermost bound variable of body out into a fresh
// FreeVar and returns both. It is the only way to look inside a
// Prod/Abst body; every downstream package opens before it recurses
// into binder bodies for whnf/snf/infer/check so that Var indices
// never dangle past the scope they were bound in.
func Open(body Term, hint string) (FreeVar, Term) {
	fv := NewFreeVar(hint)
	return fv, substAt(body, 0, fv)
}

// OpenWith substitutes the binder's bound variable by an arbitrary
// term rather than minting a fresh variable; internal/check and
// internal/reduce.EqModulo use it to open a second binder with the
// FreeVar minted by opening the first.
func OpenWith(body Term, v Term) Term {
	return substAt(body, 0, v)
}

// Close re-abstracts a free variable back into a binder: the inverse
// of Open, used when a term built under an opened context (e.g. the
// inferred type of a checked lambda body) must be wrapped back into a
// Prod/Abst.
func Close(fv FreeVar, body Term) Term {
	return closeAt(body, fv, 0)
}

// substAt implements the substitution lemma for a single de Bruijn
// slot: replace Var(depth) by v (shifted to account for the depth
// binders already crossed) and decrement indices that point past it.
func substAt(t Term, depth int, v Term) Term {
	switch tt := t.(type) {
	case Var:
		switch {
		case tt.Index == depth:
			return shift(v, depth, 0)
		case tt.Index > depth:
			return Var{Index: tt.Index - 1}
		default:
			return tt
		}
	case FreeVar, Sym, Kind, Type, PatHole:
		return t
	case App:
		return App{Fun: substAt(tt.Fun, depth, v), Arg: substAt(tt.Arg, depth, v)}
	case Prod:
		return Prod{Domain: substAt(tt.Domain, depth, v), Body: substAt(tt.Body, depth+1, v), Hint: tt.Hint}
	case Abst:
		var dom Term
		if tt.Domain != nil {
			dom = substAt(tt.Domain, depth, v)
		}
		return Abst{Domain: dom, Body: substAt(tt.Body, depth+1, v), Hint: tt.Hint}
	default:
		panic("term: substAt: unknown shape")
	}
}

// shift adds d to every Var index in t that is >= cutoff. It is the
// counterpart needed when a replacement term is substituted under
// additional binders.
func shift(t Term, d, cutoff int) Term {
	if d == 0 {
		return t
	}
	switch tt := t.(type) {
	case Var:
		if tt.Index >= cutoff {
			return Var{Index: tt.Index + d}
		}
		return tt
	case FreeVar, Sym, Kind, Type, PatHole:
		return t
	case App:
		return App{Fun: shift(tt.Fun, d, cutoff), Arg: shift(tt.Arg, d, cutoff)}
	case Prod:
		return Prod{Domain: shift(tt.Domain, d, cutoff), Body: shift(tt.Body, d, cutoff+1), Hint: tt.Hint}
	case Abst:
		var dom Term
		if tt.Domain != nil {
			dom = shift(tt.Domain, d, cutoff)
		}
		return Abst{Domain: dom, Body: shift(tt.Body, d, cutoff+1), Hint: tt.Hint}
	default:
		panic("term: shift: unknown shape")
	}
}

// closeAt is the inverse of substAt specialised to a free variable:
// replace fv by Var(depth) and shift up any index already >= depth to
// make room for the newly introduced binder.
func closeAt(t Term, fv FreeVar, depth int) Term {
	switch tt := t.(type) {
	case FreeVar:
		if tt.ID == fv.ID {
			return Var{Index: depth}
		}
		return tt
	case Var:
		if tt.Index >= depth {
			return Var{Index: tt.Index + 1}
		}
		return tt
	case Sym, Kind, Type, PatHole:
		return t
	case App:
		return App{Fun: closeAt(tt.Fun, fv, depth), Arg: closeAt(tt.Arg, fv, depth)}
	case Prod:
		return Prod{Domain: closeAt(tt.Domain, fv, depth), Body: closeAt(tt.Body, fv, depth+1), Hint: tt.Hint}
	case Abst:
		var dom Term
		if tt.Domain != nil {
			dom = closeAt(tt.Domain, fv, depth)
		}
		return Abst{Domain: dom, Body: closeAt(tt.Body, fv, depth+1), Hint: tt.Hint}
	default:
		panic("term: closeAt: unknown shape")
	}
}

// Subst implements spec.md 4.2's subst(body, v): substitute v for the
// variable bound by body's own (implicit, already-stripped) binder.
// Callers hold a Prod/Abst's Body field, which is exactly this shape.
func Subst(body Term, v Term) Term {
	return substAt(body, 0, v)
}

// MultiSubst replaces every PatHole(k) in t by sigma[k], shifting each
// replacement to account for the binders crossed to reach its
// occurrence. Free meta-variables of a rule's RHS are exactly
// {0..arity-1} (spec.md 3), so sigma must be total on that range for
// any hole actually occurring in t.
func MultiSubst(t Term, sigma []Term) Term {
	return multiSubstAt(t, 0, sigma)
}

func multiSubstAt(t Term, depth int, sigma []Term) Term {
	switch tt := t.(type) {
	case PatHole:
		if tt.Index < 0 || tt.Index >= len(sigma) || sigma[tt.Index] == nil {
			panic("term: MultiSubst: unbound meta-variable ?" + strconv.Itoa(tt.Index))
		}
		return shift(sigma[tt.Index], depth, 0)
	case Var, FreeVar, Sym, Kind, Type:
		return t
	case App:
		return App{Fun: multiSubstAt(tt.Fun, depth, sigma), Arg: multiSubstAt(tt.Arg, depth, sigma)}
	case Prod:
		return Prod{Domain: multiSubstAt(tt.Domain, depth, sigma), Body: multiSubstAt(tt.Body, depth+1, sigma), Hint: tt.Hint}
	case Abst:
		var dom Term
		if tt.Domain != nil {
			dom = multiSubstAt(tt.Domain, depth, sigma)
		}
		return Abst{Domain: dom, Body: multiSubstAt(tt.Body, depth+1, sigma), Hint: tt.Hint}
	default:
		panic("term: MultiSubst: unknown shape")
	}
}

