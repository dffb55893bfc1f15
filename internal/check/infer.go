package check

import (
	"github.com/funvibe/lambdapi/internal/lambdaerr"
	"github.com/funvibe/lambdapi/internal/reduce"
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
	"github.com/funvibe/lambdapi/internal/token"
)

// Infer implements infer(Gamma, t) of spec.md 4.5, defined for every
// term shape except Kind and unannotated Abst.
func Infer(ctx *Context, t term.Term, rdr symtab.Reader, pos token.Position) (term.Term, error) {
	t = term.Unfold(t)
	switch tt := t.(type) {
	case term.Type:
		return term.Kind{}, nil

	case term.Kind:
		return nil, &lambdaerr.UninferableKind{Pos: pos}

	case term.Var:
		// A raw bound Var should never reach Infer directly; every
		// caller opens binders before recursing. Treated as a lookup
		// failure rather than a panic so a malformed surface term
		// surfaces as a normal diagnostic.
		return nil, &lambdaerr.SymbolNotFound{Pos: pos, Module: "<local>", Name: "bound variable"}

	case term.FreeVar:
		typ, ok := ctx.Lookup(tt)
		if !ok {
			return nil, &lambdaerr.SymbolNotFound{Pos: pos, Module: "<local>", Name: tt.String()}
		}
		return typ, nil

	case term.Sym:
		sym, ok := rdr.Find(tt.Module, tt.Name)
		if !ok {
			return nil, &lambdaerr.SymbolNotFound{Pos: pos, Module: tt.Module, Name: tt.Name}
		}
		return sym.Type, nil

	case term.Prod:
		if err := Check(ctx, tt.Domain, term.Type{}, rdr, pos); err != nil {
			return nil, err
		}
		fv, body := term.Open(tt.Body, tt.Hint)
		extended := ctx.Extend(fv, tt.Domain)
		sort, err := SortOf(extended, body, rdr, pos)
		if err != nil {
			return nil, err
		}
		return sort, nil

	case term.Abst:
		if tt.Domain == nil {
			return nil, &lambdaerr.UninferableAbstraction{Pos: pos}
		}
		if err := Check(ctx, tt.Domain, term.Type{}, rdr, pos); err != nil {
			return nil, err
		}
		fv, body := term.Open(tt.Body, tt.Hint)
		extended := ctx.Extend(fv, tt.Domain)
		bodyType, err := Infer(extended, body, rdr, pos)
		if err != nil {
			return nil, err
		}
		return term.Prod{Domain: tt.Domain, Body: term.Close(fv, bodyType), Hint: tt.Hint}, nil

	case term.App:
		funType, err := Infer(ctx, tt.Fun, rdr, pos)
		if err != nil {
			return nil, err
		}
		whnfFunType := reduce.Whnf(funType, rdr)
		prod, ok := whnfFunType.(term.Prod)
		if !ok {
			return nil, &lambdaerr.NotAFunction{Pos: pos, FunType: whnfFunType}
		}
		if err := Check(ctx, tt.Arg, prod.Domain, rdr, pos); err != nil {
			return nil, err
		}
		return term.Subst(prod.Body, tt.Arg), nil

	case term.PatHole:
		// Rule admissibility (internal/rules) replaces every PatHole
		// by a typed FreeVar before calling Infer, so a bare PatHole
		// reaching Infer is a caller error.
		return nil, &lambdaerr.NotAPattern{Pos: pos, Reason: "pattern hole outside a rule admissibility check"}

	default:
		return nil, &lambdaerr.NotAPattern{Pos: pos, Reason: "unknown term shape"}
	}
}

// Check implements check(Gamma, t, expected) of spec.md 4.5: infer
// when possible and compare via eq_modulo, with the one special case
// an unannotated Abst needs against an expected Prod.
func Check(ctx *Context, t term.Term, expected term.Term, rdr symtab.Reader, pos token.Position) error {
	t = term.Unfold(t)
	if abs, ok := t.(term.Abst); ok && abs.Domain == nil {
		whnfExpected := reduce.Whnf(expected, rdr)
		prod, ok := whnfExpected.(term.Prod)
		if !ok {
			return &lambdaerr.NotAFunction{Pos: pos, FunType: whnfExpected}
		}
		fv, body := term.Open(abs.Body, abs.Hint)
		expectedBody := term.OpenWith(prod.Body, fv)
		return Check(ctx.Extend(fv, prod.Domain), body, expectedBody, rdr, pos)
	}

	got, err := Infer(ctx, t, rdr, pos)
	if err != nil {
		return err
	}
	if !reduce.EqModulo(got, expected, rdr) {
		return &lambdaerr.TypeMismatch{Pos: pos, Expected: expected, Got: got}
	}
	return nil
}

// SortOf infers A's type and demands it be Type or Kind (spec.md 4.5's
// sort-checking helper), returning that sort.
func SortOf(ctx *Context, a term.Term, rdr symtab.Reader, pos token.Position) (term.Term, error) {
	got, err := Infer(ctx, a, rdr, pos)
	if err != nil {
		return nil, err
	}
	whnfGot := reduce.Whnf(got, rdr)
	switch whnfGot.(type) {
	case term.Type, term.Kind:
		return whnfGot, nil
	default:
		return nil, &lambdaerr.SortError{Pos: pos, Term: a, Got: whnfGot}
	}
}
