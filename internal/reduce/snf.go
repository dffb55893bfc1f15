package reduce

import (
	"github.com/funvibe/lambdapi/internal/lambdaerr"
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
	"github.com/funvibe/lambdapi/internal/token"
)

// Snf computes the strong (full) normal form of t: whnf followed by
// recursive normalisation under binders and in argument positions
// (spec.md 4.2).
func Snf(t term.Term, rdr symtab.Reader) term.Term {
	t = Whnf(t, rdr)
	switch tt := t.(type) {
	case term.Kind, term.Type, term.Var, term.FreeVar, term.Sym, term.PatHole:
		return tt
	case term.App:
		return term.App{Fun: Snf(tt.Fun, rdr), Arg: Snf(tt.Arg, rdr)}
	case term.Prod:
		fv, body := term.Open(tt.Body, tt.Hint)
		nBody := Snf(body, rdr)
		return term.Prod{Domain: Snf(tt.Domain, rdr), Body: term.Close(fv, nBody), Hint: tt.Hint}
	case term.Abst:
		var dom term.Term
		if tt.Domain != nil {
			dom = Snf(tt.Domain, rdr)
		}
		fv, body := term.Open(tt.Body, tt.Hint)
		nBody := Snf(body, rdr)
		return term.Abst{Domain: dom, Body: term.Close(fv, nBody), Hint: tt.Hint}
	default:
		return tt
	}
}

// Config selects eval's reduction mode and an optional step budget
// (Design Notes 9). Mode is either Whnf-to-spec.md's whnf or snf;
// StepBudget, if positive, caps how many head-reduction steps eval
// will take before raising lambdaerr.StepBudgetExceeded. eq_modulo
// never consults a Config: it must be total on well-typed terms in a
// sound theory (spec.md 4.4).
type Config struct {
	Mode       Mode
	StepBudget int // 0 means unbounded
}

type Mode int

const (
	ModeWhnf Mode = iota
	ModeSnf
)

// Reduce implements the eval directive of spec.md 6: whnf or snf under
// an optional step budget. Only head-reduction steps are counted
// against the budget; in snf mode the recursive descent under
// binders/arguments draws on the same counter, so the budget bounds
// the total number of head steps across the whole term.
func Reduce(t term.Term, rdr symtab.Reader, cfg Config, pos token.Position) (term.Term, error) {
	if cfg.StepBudget <= 0 {
		if cfg.Mode == ModeSnf {
			return Snf(t, rdr), nil
		}
		return Whnf(t, rdr), nil
	}
	budget := cfg.StepBudget
	return reduceBudgeted(t, rdr, cfg, &budget, pos)
}

func reduceBudgeted(t term.Term, rdr symtab.Reader, cfg Config, budget *int, pos token.Position) (term.Term, error) {
	whnfResult, err := whnfBudgeted(t, rdr, budget, pos, cfg.StepBudget)
	if err != nil {
		return nil, err
	}
	if cfg.Mode == ModeWhnf {
		return whnfResult, nil
	}
	switch tt := whnfResult.(type) {
	case term.App:
		f, err := reduceBudgeted(tt.Fun, rdr, cfg, budget, pos)
		if err != nil {
			return nil, err
		}
		a, err := reduceBudgeted(tt.Arg, rdr, cfg, budget, pos)
		if err != nil {
			return nil, err
		}
		return term.App{Fun: f, Arg: a}, nil
	case term.Prod:
		dom, err := reduceBudgeted(tt.Domain, rdr, cfg, budget, pos)
		if err != nil {
			return nil, err
		}
		fv, body := term.Open(tt.Body, tt.Hint)
		nBody, err := reduceBudgeted(body, rdr, cfg, budget, pos)
		if err != nil {
			return nil, err
		}
		return term.Prod{Domain: dom, Body: term.Close(fv, nBody), Hint: tt.Hint}, nil
	case term.Abst:
		var dom term.Term
		if tt.Domain != nil {
			dom, err = reduceBudgeted(tt.Domain, rdr, cfg, budget, pos)
			if err != nil {
				return nil, err
			}
		}
		fv, body := term.Open(tt.Body, tt.Hint)
		nBody, err := reduceBudgeted(body, rdr, cfg, budget, pos)
		if err != nil {
			return nil, err
		}
		return term.Abst{Domain: dom, Body: term.Close(fv, nBody), Hint: tt.Hint}, nil
	default:
		return whnfResult, nil
	}
}

// whnfBudgeted mirrors Whnf's head-reduction loop but decrements a
// shared step counter on every beta/rule splice, raising
// lambdaerr.StepBudgetExceeded when it runs out (Design Notes 9: a
// configurable step budget for eval, never consulted by eq_modulo).
func whnfBudgeted(t term.Term, rdr symtab.Reader, budget *int, pos token.Position, total int) (term.Term, error) {
	t = term.Unfold(t)
	head, stack := term.Spine(t)

	for {
		switch h := head.(type) {
		case term.App:
			newHead, newArgs := term.Spine(h)
			head = newHead
			stack = append(newArgs, stack...)

		case term.Abst:
			if len(stack) == 0 {
				return reassemble(h, stack), nil
			}
			if *budget <= 0 {
				return nil, &lambdaerr.StepBudgetExceeded{Pos: pos, Budget: total}
			}
			*budget--
			arg := stack[0]
			stack = stack[1:]
			newHead, newArgs := term.Spine(term.Subst(h.Body, arg))
			head = newHead
			stack = append(newArgs, stack...)

		case term.Sym:
			sym, ok := rdr.Find(h.Module, h.Name)
			if !ok || len(rdr.RulesOf(sym)) == 0 {
				return reassemble(h, stack), nil
			}
			rule, sigma, consumed, matched := tryRules(rdr.RulesOf(sym), stack, rdr)
			if !matched {
				return reassemble(h, stack), nil
			}
			if *budget <= 0 {
				return nil, &lambdaerr.StepBudgetExceeded{Pos: pos, Budget: total}
			}
			*budget--
			rest := stack[consumed:]
			newHead, newArgs := term.Spine(term.MultiSubst(rule.RHS, sigma))
			head = newHead
			stack = append(newArgs, rest...)

		default:
			return reassemble(head, stack), nil
		}
	}
}
