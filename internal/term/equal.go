package term

// Equal is structural equality up to alpha: since bound variables are
// de Bruijn indices, two terms built without stray FreeVars compare
// equal exactly when their shapes and indices agree recursively.
// FreeVars compare equal only by identical ID, which is correct for
// every caller in this codebase because open terms being compared are
// always produced by opening the *same* binder with a shared fresh
// variable (see internal/reduce.EqModulo's congruence step) rather than by
// independently opening two unrelated binders.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case Kind:
		_, ok := b.(Kind)
		return ok
	case Type:
		_, ok := b.(Type)
		return ok
	case Var:
		y, ok := b.(Var)
		return ok && x.Index == y.Index
	case FreeVar:
		y, ok := b.(FreeVar)
		return ok && x.ID == y.ID
	case Sym:
		y, ok := b.(Sym)
		return ok && x.Module == y.Module && x.Name == y.Name
	case App:
		y, ok := b.(App)
		return ok && Equal(x.Fun, y.Fun) && Equal(x.Arg, y.Arg)
	case Prod:
		y, ok := b.(Prod)
		return ok && Equal(x.Domain, y.Domain) && Equal(x.Body, y.Body)
	case Abst:
		y, ok := b.(Abst)
		if !ok {
			return false
		}
		if (x.Domain == nil) != (y.Domain == nil) {
			return false
		}
		if x.Domain != nil && !Equal(x.Domain, y.Domain) {
			return false
		}
		return Equal(x.Body, y.Body)
	case PatHole:
		y, ok := b.(PatHole)
		return ok && x.Index == y.Index
	default:
		return false
	}
}

// FreeVars returns the set of FreeVar IDs occurring in t (opened
// variables only; de Bruijn Var occurrences that are still bound by
// an enclosing binder in t are not free).
func FreeVars(t Term) map[int]bool {
	out := make(map[int]bool)
	collectFreeVars(t, out)
	return out
}

func collectFreeVars(t Term, out map[int]bool) {
	switch tt := t.(type) {
	case FreeVar:
		out[tt.ID] = true
	case App:
		collectFreeVars(tt.Fun, out)
		collectFreeVars(tt.Arg, out)
	case Prod:
		collectFreeVars(tt.Domain, out)
		collectFreeVars(tt.Body, out)
	case Abst:
		if tt.Domain != nil {
			collectFreeVars(tt.Domain, out)
		}
		collectFreeVars(tt.Body, out)
	}
}

// PatHoles returns the set of PatHole indices occurring in t. Used by
// internal/rules to check that a candidate rule's LHS covers every
// meta-variable in {0..arity-1} (spec.md 3).
func PatHoles(t Term) map[int]bool {
	out := make(map[int]bool)
	collectPatHoles(t, out)
	return out
}

func collectPatHoles(t Term, out map[int]bool) {
	switch tt := t.(type) {
	case PatHole:
		out[tt.Index] = true
	case App:
		collectPatHoles(tt.Fun, out)
		collectPatHoles(tt.Arg, out)
	case Prod:
		collectPatHoles(tt.Domain, out)
		collectPatHoles(tt.Body, out)
	case Abst:
		if tt.Domain != nil {
			collectPatHoles(tt.Domain, out)
		}
		collectPatHoles(tt.Body, out)
	}
}
