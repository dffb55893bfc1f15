// Package rules implements the rule admissibility check of spec.md
// 4.6: before a rewrite rule is appended to a definable symbol's rule
// list, its left-hand side must be a valid (Miller) pattern assigning
// every metavariable a type, and its right-hand side must check
// against the type the left-hand side synthesises. It is grounded on
// funxy's internal/analyzer declarations.go/kind_checker.go style of
// collecting a constraint set while walking a declaration before
// admitting it into the symbol table, adapted here from Hindley-Milner
// constraint generation to pattern-directed type elaboration.
package rules

import (
	"strconv"

	"github.com/funvibe/lambdapi/internal/check"
	"github.com/funvibe/lambdapi/internal/lambdaerr"
	"github.com/funvibe/lambdapi/internal/reduce"
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
	"github.com/funvibe/lambdapi/internal/token"
)

// metaState threads a rule's metavariable bookkeeping through the
// pattern walk: vars holds one fresh FreeVar per metavariable (used to
// stand in for pattern holes when type-checking the right-hand side),
// types holds each metavariable's type once its first left-hand-side
// occurrence has determined it.
type metaState struct {
	vars  []term.FreeVar
	types []term.Term
}

func (ms *metaState) terms() []term.Term {
	out := make([]term.Term, len(ms.vars))
	for i, v := range ms.vars {
		out[i] = v
	}
	return out
}

// Admit runs the admissibility check of spec.md 4.6 against rule and,
// if it passes, appends it to head's rule list. rule.Head must already
// be a Definable symbol of tab; Admit does not declare symbols, only
// rules.
func Admit(tab *symtab.Table, rule *symtab.Rule, pos token.Position, rdr symtab.Reader) error {
	ms := &metaState{
		vars:  make([]term.FreeVar, rule.Arity),
		types: make([]term.Term, rule.Arity),
	}
	for k := range ms.vars {
		ms.vars[k] = term.NewFreeVar("?" + strconv.Itoa(k))
	}

	currentType := rule.Head.Type
	for _, pat := range rule.LHSArgs {
		prod, ok := reduce.Whnf(currentType, rdr).(term.Prod)
		if !ok {
			return &lambdaerr.NotAPattern{Pos: pos, Reason: "left-hand side applies more arguments than " + rule.Head.String() + " takes"}
		}
		if err := checkPattern(pat, prod.Domain, nil, ms, rdr, pos); err != nil {
			return err
		}
		currentType = term.Subst(prod.Body, term.MultiSubst(pat, ms.terms()))
	}
	lhsType := currentType

	for k, t := range ms.types {
		if t == nil {
			return &lambdaerr.NotAPattern{Pos: pos, Reason: "metavariable ?" + strconv.Itoa(k) + " does not occur in the left-hand side"}
		}
	}

	ctx := check.Empty()
	for k := range ms.vars {
		ctx = ctx.Extend(ms.vars[k], ms.types[k])
	}
	rhs := term.MultiSubst(rule.RHS, ms.terms())
	rhsType, err := check.Infer(ctx, rhs, rdr, pos)
	if err != nil {
		return err
	}
	if !reduce.EqModulo(lhsType, rhsType, rdr) {
		return &lambdaerr.RuleNotAdmissible{Pos: pos, LHSType: lhsType, RHSType: rhsType}
	}
	return tab.AdmitRule(rule.Head, rule)
}

// checkPattern walks pat against expected, assigning or checking
// metavariable types in ms as it goes. localDomains is the stack of
// domain types of the pattern-local binders entered so far, nearest
// last, mirroring the depth convention internal/reduce.Match uses.
func checkPattern(pat term.Term, expected term.Term, localDomains []term.Term, ms *metaState, rdr symtab.Reader, pos token.Position) error {
	expected = reduce.Whnf(expected, rdr)

	switch p := pat.(type) {
	case term.PatHole:
		if len(localDomains) > 0 {
			return &lambdaerr.NotAPattern{Pos: pos, Reason: "metavariable occurs directly under a binder; apply it to the bound variables it may depend on"}
		}
		return assignMetaType(p.Index, expected, ms, rdr, pos)

	case term.Abst:
		prod, ok := expected.(term.Prod)
		if !ok {
			return &lambdaerr.NotAFunction{Pos: pos, FunType: expected}
		}
		return checkPattern(p.Body, prod.Body, append(localDomains, prod.Domain), ms, rdr, pos)

	case term.App:
		head, args := term.Spine(p)
		if hole, ok := head.(term.PatHole); ok {
			domains := make([]term.Term, len(args))
			seen := make(map[int]bool, len(args))
			for i, a := range args {
				v, ok := a.(term.Var)
				if !ok {
					return &lambdaerr.NotAPattern{Pos: pos, Reason: "higher-order metavariable applied to a non-variable argument"}
				}
				if seen[v.Index] {
					return &lambdaerr.NotAPattern{Pos: pos, Reason: "higher-order metavariable applied to the same variable twice"}
				}
				seen[v.Index] = true
				d, ok := domainOf(localDomains, v.Index)
				if !ok {
					return &lambdaerr.NotAPattern{Pos: pos, Reason: "higher-order metavariable applied to a variable out of its scope"}
				}
				domains[i] = d
			}
			return assignMetaType(hole.Index, buildFnType(domains, expected), ms, rdr, pos)
		}

		synth, err := inferPatternType(head, localDomains, ms, rdr, pos)
		if err != nil {
			return err
		}
		for _, a := range args {
			prod, ok := reduce.Whnf(synth, rdr).(term.Prod)
			if !ok {
				return &lambdaerr.NotAFunction{Pos: pos, FunType: synth}
			}
			if err := checkPattern(a, prod.Domain, localDomains, ms, rdr, pos); err != nil {
				return err
			}
			synth = term.Subst(prod.Body, term.MultiSubst(a, ms.terms()))
		}
		if !reduce.EqModulo(synth, expected, rdr) {
			return &lambdaerr.TypeMismatch{Pos: pos, Expected: expected, Got: synth}
		}
		return nil

	default:
		synth, err := inferPatternType(pat, localDomains, ms, rdr, pos)
		if err != nil {
			return err
		}
		if !reduce.EqModulo(synth, expected, rdr) {
			return &lambdaerr.TypeMismatch{Pos: pos, Expected: expected, Got: synth}
		}
		return nil
	}
}

// inferPatternType synthesises a type for a pattern fragment used in
// function-head position: a declared symbol, a pattern-locally bound
// variable, or a metavariable whose type an earlier occurrence has
// already fixed.
func inferPatternType(pat term.Term, localDomains []term.Term, ms *metaState, rdr symtab.Reader, pos token.Position) (term.Term, error) {
	switch p := pat.(type) {
	case term.Sym:
		sym, ok := rdr.Find(p.Module, p.Name)
		if !ok {
			return nil, &lambdaerr.SymbolNotFound{Pos: pos, Module: p.Module, Name: p.Name}
		}
		return sym.Type, nil

	case term.Var:
		d, ok := domainOf(localDomains, p.Index)
		if !ok {
			return nil, &lambdaerr.NotAPattern{Pos: pos, Reason: "variable out of the rule pattern's local scope"}
		}
		return d, nil

	case term.PatHole:
		if ms.types[p.Index] == nil {
			return nil, &lambdaerr.NotAPattern{Pos: pos, Reason: "metavariable used as a function before its type is fixed by an earlier occurrence"}
		}
		return ms.types[p.Index], nil

	default:
		return nil, &lambdaerr.NotAPattern{Pos: pos, Reason: "this term cannot appear in function position on a left-hand side"}
	}
}

func assignMetaType(k int, t term.Term, ms *metaState, rdr symtab.Reader, pos token.Position) error {
	if k < 0 || k >= len(ms.types) {
		return &lambdaerr.NotAPattern{Pos: pos, Reason: "metavariable index exceeds the rule's declared arity"}
	}
	if ms.types[k] == nil {
		ms.types[k] = t
		return nil
	}
	if !reduce.EqModulo(ms.types[k], t, rdr) {
		return &lambdaerr.NotAPattern{Pos: pos, Reason: "metavariable used at incompatible types"}
	}
	return nil
}

// domainOf resolves a pattern-local Var index against localDomains,
// where index 0 is nearest (last appended).
func domainOf(localDomains []term.Term, index int) (term.Term, bool) {
	if index < 0 || index >= len(localDomains) {
		return nil, false
	}
	return localDomains[len(localDomains)-1-index], true
}

// buildFnType builds the curried function type domains[0] -> domains[1]
// -> ... -> codomain, the type a Miller metavariable gets when applied
// to arguments of these domains (spec.md 4.3's higher-order hole case).
func buildFnType(domains []term.Term, codomain term.Term) term.Term {
	t := codomain
	for i := len(domains) - 1; i >= 0; i-- {
		t = term.Prod{Domain: domains[i], Body: t}
	}
	return t
}
