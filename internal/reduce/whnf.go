package reduce

import (
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

// Whnf computes the weak-head normal form of t (spec.md 4.2): a term
// whose head is a variable, a sort, a product, an abstraction, or a
// symbol applied to arguments such that no rule of that symbol
// applies and no beta-redex is exposed. It is pure with respect to
// rdr: rules are only ever read, never created, here.
func Whnf(t term.Term, rdr symtab.Reader) term.Term {
	t = term.Unfold(t)
	head, stack := term.Spine(t)

	for {
		switch h := head.(type) {
		case term.App:
			// Only reached right after a beta/rule step spliced in a
			// new, possibly compound, head term; re-flatten it.
			newHead, newArgs := term.Spine(h)
			head = newHead
			stack = append(newArgs, stack...)

		case term.Abst:
			if len(stack) == 0 {
				return reassemble(h, stack)
			}
			arg := stack[0]
			stack = stack[1:]
			newHead, newArgs := term.Spine(term.Subst(h.Body, arg))
			head = newHead
			stack = append(newArgs, stack...)

		case term.Sym:
			sym, ok := rdr.Find(h.Module, h.Name)
			if !ok || len(rdr.RulesOf(sym)) == 0 {
				return reassemble(h, stack)
			}
			rule, sigma, consumed, matched := tryRules(rdr.RulesOf(sym), stack, rdr)
			if !matched {
				return reassemble(h, stack)
			}
			rest := stack[consumed:]
			newHead, newArgs := term.Spine(term.MultiSubst(rule.RHS, sigma))
			head = newHead
			stack = append(newArgs, rest...)

		default:
			return reassemble(head, stack)
		}
	}
}

func reassemble(head term.Term, stack []term.Term) term.Term {
	return term.ApplySpine(head, stack)
}

// tryRules attempts each rule in declaration order (spec.md 4.2's
// rule-selection policy: first match wins, no specificity ranking).
// A rule matches the spine if the stack has at least len(lhs_args)
// many entries and each lhs_arg matches the
// corresponding stack entry positionally from the left.
func tryRules(rules []*symtab.Rule, stack []term.Term, rdr symtab.Reader) (*symtab.Rule, Assignment, int, bool) {
	for _, rule := range rules {
		need := len(rule.LHSArgs)
		if len(stack) < need {
			continue
		}
		sigma := make(Assignment, rule.Arity)
		ok := true
		for i, pat := range rule.LHSArgs {
			if !Match(pat, stack[i], rdr, sigma, 0) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if !fullyBound(sigma) {
			continue
		}
		return rule, sigma, need, true
	}
	return nil, nil, 0, false
}

func fullyBound(sigma Assignment) bool {
	for _, v := range sigma {
		if v == nil {
			return false
		}
	}
	return true
}
