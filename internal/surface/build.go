package surface

import (
	"fmt"

	"github.com/funvibe/lambdapi/internal/term"
)

// Resolver maps a bare (unqualified) name to the module that declares
// it -- internal/dispatch supplies one that tries the current module
// first, then each of its imports, per spec.md 4.11's note that
// surface resolution needs nothing beyond what internal/universe
// already tracks.
type Resolver func(name string) (module string, ok bool)

// Build converts a surface Expr into a closed internal/term.Term,
// resolving bound names to de Bruijn indices against env (innermost
// last, matching internal/lexer's left-to-right scan order is
// irrelevant here; what matters is that a new binder is appended to
// the end and looked up from the end) and free names via resolve.
func Build(e Expr, env []string, resolve Resolver) (term.Term, error) {
	switch ex := e.(type) {
	case Ident:
		if idx, ok := lookupVar(ex.Name, env); ok {
			return term.Var{Index: idx}, nil
		}
		mod, ok := resolve(ex.Name)
		if !ok {
			return nil, fmt.Errorf("%s: undeclared symbol %q", ex.Pos, ex.Name)
		}
		return term.Sym{Module: mod, Name: ex.Name}, nil

	case Sort:
		return term.Type{}, nil

	case PatHole:
		return term.PatHole{Index: ex.Index}, nil

	case App:
		fn, err := Build(ex.Fun, env, resolve)
		if err != nil {
			return nil, err
		}
		arg, err := Build(ex.Arg, env, resolve)
		if err != nil {
			return nil, err
		}
		return term.App{Fun: fn, Arg: arg}, nil

	case Lambda:
		var domain term.Term
		if ex.Domain != nil {
			d, err := Build(ex.Domain, env, resolve)
			if err != nil {
				return nil, err
			}
			domain = d
		}
		body, err := Build(ex.Body, append(env, ex.Param), resolve)
		if err != nil {
			return nil, err
		}
		return term.Abst{Domain: domain, Body: body, Hint: ex.Param}, nil

	case Pi:
		domain, err := Build(ex.Domain, env, resolve)
		if err != nil {
			return nil, err
		}
		body, err := Build(ex.Body, append(env, ex.Param), resolve)
		if err != nil {
			return nil, err
		}
		return term.Prod{Domain: domain, Body: body, Hint: ex.Param}, nil

	default:
		return nil, fmt.Errorf("surface: unknown expression node %T", e)
	}
}

// lookupVar finds name in env, nearest binder last, and returns its de
// Bruijn index (0 = nearest enclosing binder).
func lookupVar(name string, env []string) (int, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i] == name {
			return len(env) - 1 - i, true
		}
	}
	return 0, false
}

// MaxPatHoleIndex walks e and returns the highest PatHole index found
// plus one (the arity a rule built from e implies), or 0 if e contains
// no pattern holes.
func MaxPatHoleIndex(e Expr) int {
	max := -1
	var walk func(Expr)
	walk = func(e Expr) {
		switch ex := e.(type) {
		case PatHole:
			if ex.Index > max {
				max = ex.Index
			}
		case App:
			walk(ex.Fun)
			walk(ex.Arg)
		case Lambda:
			if ex.Domain != nil {
				walk(ex.Domain)
			}
			walk(ex.Body)
		case Pi:
			walk(ex.Domain)
			walk(ex.Body)
		}
	}
	walk(e)
	return max + 1
}
