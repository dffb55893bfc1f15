// Package lambdaerr collects the fatal error kinds of spec.md 7, one
// concrete type per kind, following the one-struct-per-kind style of
// funxy's internal/typesystem/error.go (there applied only to symbol
// lookup; generalised here to the whole error taxonomy this core
// needs). Every error carries a token.Position supplied by the caller
// so the dispatcher can format it without reaching back into the core.
package lambdaerr

import (
	"fmt"

	"github.com/funvibe/lambdapi/internal/term"
	"github.com/funvibe/lambdapi/internal/token"
)

// SortError: a term that should be a type or kind is neither.
type SortError struct {
	Pos  token.Position
	Term term.Term
	Got  term.Term // the inferred type of Term, for display
}

func (e *SortError) Error() string {
	return fmt.Sprintf("%s: expected a sort (Type or Kind), got %s : %s", e.Pos, e.Term, e.Got)
}

// TypeMismatch: inferred and expected types are not convertible.
type TypeMismatch struct {
	Pos      token.Position
	Expected term.Term
	Got      term.Term
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("%s: type mismatch: expected %s, got %s", e.Pos, e.Expected, e.Got)
}

// NotAFunction: application whose function's type does not whnf to a product.
type NotAFunction struct {
	Pos      token.Position
	FunType  term.Term
}

func (e *NotAFunction) Error() string {
	return fmt.Sprintf("%s: not a function: %s is not a product type", e.Pos, e.FunType)
}

// UninferableKind: Kind was used as a subject of typing; it only ever
// appears as a type (spec.md 3), never as a term to infer a type for.
type UninferableKind struct {
	Pos token.Position
}

func (e *UninferableKind) Error() string {
	return fmt.Sprintf("%s: Kind has no type; it cannot appear as a subject of typing", e.Pos)
}

// UninferableAbstraction: unannotated lambda used in inference position.
type UninferableAbstraction struct {
	Pos token.Position
}

func (e *UninferableAbstraction) Error() string {
	return fmt.Sprintf("%s: cannot infer the type of an unannotated lambda; check it against an expected type instead", e.Pos)
}

// NotAPattern: LHS violates the pattern grammar or the Miller
// condition, or misses a meta-variable.
type NotAPattern struct {
	Pos    token.Position
	Reason string
}

func (e *NotAPattern) Error() string {
	return fmt.Sprintf("%s: not a valid rule pattern: %s", e.Pos, e.Reason)
}

// RuleNotAdmissible: LHS/RHS type mismatch under the admissibility check.
type RuleNotAdmissible struct {
	Pos      token.Position
	LHSType  term.Term
	RHSType  term.Term
	Reason   string
}

func (e *RuleNotAdmissible) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: rule not admissible: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("%s: rule not admissible: LHS type %s is not convertible with RHS type %s", e.Pos, e.LHSType, e.RHSType)
}

// SymbolRedefinition: declaring a name already present. Non-fatal at
// the dispatcher level (a warning), but still a structured error value
// so the dispatcher can decide what to do with it uniformly.
type SymbolRedefinition struct {
	Pos    token.Position
	Module string
	Name   string
}

func (e *SymbolRedefinition) Error() string {
	return fmt.Sprintf("%s: symbol %s.%s is already declared", e.Pos, e.Module, e.Name)
}

// SymbolNotFound: reference to an unknown (module, name).
type SymbolNotFound struct {
	Pos    token.Position
	Module string
	Name   string
}

func (e *SymbolNotFound) Error() string {
	return fmt.Sprintf("%s: symbol not found: %s.%s", e.Pos, e.Module, e.Name)
}

// StepBudgetExceeded: eval's configurable step budget (Design Notes 9)
// was exhausted. Recoverable for eval; never raised by eq_modulo.
type StepBudgetExceeded struct {
	Pos    token.Position
	Budget int
}

func (e *StepBudgetExceeded) Error() string {
	return fmt.Sprintf("%s: reduction did not converge within %d steps", e.Pos, e.Budget)
}
