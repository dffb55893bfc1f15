package reduce

import (
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

// EqModulo decides convertibility modulo alpha-beta-rule equivalence
// (spec.md 4.4): structural alpha-equality first, then whnf both
// sides and recurse as a congruence, with eta in both directions.
func EqModulo(t, u term.Term, rdr symtab.Reader) bool {
	if term.Equal(t, u) {
		return true
	}
	t = Whnf(t, rdr)
	u = Whnf(u, rdr)
	if term.Equal(t, u) {
		return true
	}
	if ua, ok := u.(term.Abst); ok {
		if _, tIsAbst := t.(term.Abst); !tIsAbst {
			return etaLeft(ua, t, rdr)
		}
	}

	switch tt := t.(type) {
	case term.Kind:
		_, ok := u.(term.Kind)
		return ok
	case term.Type:
		_, ok := u.(term.Type)
		return ok
	case term.Var:
		uv, ok := u.(term.Var)
		return ok && tt.Index == uv.Index
	case term.FreeVar:
		uv, ok := u.(term.FreeVar)
		return ok && tt.ID == uv.ID

	case term.Prod:
		up, ok := u.(term.Prod)
		if !ok {
			return false
		}
		if !EqModulo(tt.Domain, up.Domain, rdr) {
			return false
		}
		fv, tBody := term.Open(tt.Body, tt.Hint)
		uBody := term.OpenWith(up.Body, fv)
		return EqModulo(tBody, uBody, rdr)

	case term.Abst:
		if ua, ok := u.(term.Abst); ok {
			if tt.Domain != nil && ua.Domain != nil && !EqModulo(tt.Domain, ua.Domain, rdr) {
				return false
			}
			fv, tBody := term.Open(tt.Body, tt.Hint)
			uBody := term.OpenWith(ua.Body, fv)
			return EqModulo(tBody, uBody, rdr)
		}
		return etaLeft(tt, u, rdr)

	case term.App:
		if etaRightOf(u, tt, rdr) {
			return true
		}
		uApp, ok := u.(term.App)
		if !ok {
			return false
		}
		tHead, tArgs := term.Spine(tt)
		uHead, uArgs := term.Spine(uApp)
		if len(tArgs) != len(uArgs) {
			return false
		}
		if !EqModulo(tHead, uHead, rdr) {
			return false
		}
		for i := range tArgs {
			if !EqModulo(tArgs[i], uArgs[i], rdr) {
				return false
			}
		}
		return true

	case term.Sym:
		us, ok := u.(term.Sym)
		return ok && tt.Module == us.Module && tt.Name == us.Name

	default:
		if ua, ok := u.(term.Abst); ok {
			return etaLeft(ua, t, rdr)
		}
		return false
	}
}

// etaLeft checks Abst(_,<x.tBody>) === other via eta: other applied to
// x must equal tBody once x does not occur free in other's own shape
// outside of being applied — concretely, x ∉ FV(other) and
// tBody ≡ App(other, x) after opening (spec.md 4.4 step 5).
func etaLeft(abs term.Abst, other term.Term, rdr symtab.Reader) bool {
	fv, body := term.Open(abs.Body, abs.Hint)
	if term.FreeVars(other)[fv.ID] {
		return false
	}
	return EqModulo(body, term.App{Fun: other, Arg: fv}, rdr)
}

// etaRightOf checks the mirror direction: App(other, x) ≡ abs.Body
// when t itself (an App) is compared against an Abst on the other
// side; used from the App case so both syntactic orderings are
// covered without duplicating the Abst case's logic.
func etaRightOf(u term.Term, appTerm term.App, rdr symtab.Reader) bool {
	abs, ok := u.(term.Abst)
	if !ok {
		return false
	}
	return etaLeft(abs, appTerm, rdr)
}
