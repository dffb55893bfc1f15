// Package term implements the core representation of the lambdaPi calculus:
// the eight term shapes of the data model plus FreeVar, and the binder
// discipline (opening, closing, substitution) that every other package
// builds on.
//
// The concrete binder representation is locally nameless: a bound
// occurrence that has not yet been descended into is a de Bruijn Var,
// while a variable pulled out of a binder for inspection becomes a
// FreeVar carrying a process-unique integer. Var and FreeVar are
// exported shapes, and other packages (internal/reduce,
// internal/check, internal/rules, internal/objfile) switch on them
// directly alongside Open/Close/Subst/MultiSubst.
package term

import "fmt"

// Term is the base interface implemented by every term shape.
type Term interface {
	isTerm()
	String() string
}

// Kind is the universe of types of types. It only appears as a type,
// never as a subject of typing.
type Kind struct{}

func (Kind) isTerm()        {}
func (Kind) String() string { return "Kind" }

// Type is the universe of ordinary types.
type Type struct{}

func (Type) isTerm()        {}
func (Type) String() string { return "Type" }

// Var is a bound variable referenced by de Bruijn index (0 = nearest
// enclosing binder).
type Var struct {
	Index int
}

func (Var) isTerm()        {}
func (v Var) String() string { return fmt.Sprintf("#%d", v.Index) }

// FreeVar is a variable that has been opened out of its binder. IDs
// are minted by NewFreeVar and are unique for the lifetime of the
// process; they never appear in serialised terms (see internal/objfile,
// which always re-encodes binders as de Bruijn indices).
type FreeVar struct {
	ID   int
	Hint string // display name only, not part of identity
}

func (FreeVar) isTerm() {}
func (v FreeVar) String() string {
	if v.Hint != "" {
		return v.Hint
	}
	return fmt.Sprintf("x%d", v.ID)
}

// Sym is a reference to a declared symbol under a module path.
type Sym struct {
	Module string
	Name   string
}

func (Sym) isTerm() {}
func (s Sym) String() string {
	if s.Module == "" {
		return s.Name
	}
	return s.Module + "." + s.Name
}

// App is left-associative application; App(App(f,a),b) is the spine f a b.
type App struct {
	Fun Term
	Arg Term
}

func (App) isTerm() {}
func (a App) String() string {
	return fmt.Sprintf("(%s %s)", a.Fun.String(), a.Arg.String())
}

// Prod is a dependent product (x:A) -> B. Body scopes one variable
// (Var(0) inside Body refers to the product's own bound variable).
type Prod struct {
	Domain Term
	Body   Term
	Hint   string
}

func (Prod) isTerm() {}
func (p Prod) String() string {
	return fmt.Sprintf("((%s:%s) -> %s)", hintOr(p.Hint), p.Domain.String(), p.Body.String())
}

// Abst is a lambda abstraction. Domain is nil for an unannotated
// lambda, which can only be checked, never inferred (spec.md 4.5).
type Abst struct {
	Domain Term // may be nil
	Body   Term
	Hint   string
}

func (Abst) isTerm() {}
func (a Abst) String() string {
	if a.Domain == nil {
		return fmt.Sprintf("(\\%s. %s)", hintOr(a.Hint), a.Body.String())
	}
	return fmt.Sprintf("(\\%s:%s. %s)", hintOr(a.Hint), a.Domain.String(), a.Body.String())
}

// PatHole is a placeholder for the k-th meta-variable of a rewrite
// rule. It is only ever valid inside a rule's LHS (and, after
// matching, substituted away from the RHS); it must never appear in a
// term handed to the type checker or the reducer's output.
type PatHole struct {
	Index int
}

func (PatHole) isTerm()        {}
func (h PatHole) String() string { return fmt.Sprintf("?%d", h.Index) }

func hintOr(h string) string {
	if h == "" {
		return "_"
	}
	return h
}

// Spine decomposes a left-leaning application chain into its head and
// the ordered list of arguments: App(App(f,a),b) -> (f, [a,b]).
func Spine(t Term) (head Term, args []Term) {
	for {
		if app, ok := t.(App); ok {
			args = append(args, app.Arg)
			t = app.Fun
			continue
		}
		break
	}
	// args were collected innermost-first; reverse.
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return t, args
}

// ApplySpine reconstructs head @ args as a left-leaning application,
// the inverse of Spine.
func ApplySpine(head Term, args []Term) Term {
	t := head
	for _, a := range args {
		t = App{Fun: t, Arg: a}
	}
	return t
}
