// Package surface is the minimal concrete syntax of spec.md 4.11: just
// enough to drive static/definable declarations, rule addition, and
// the infer/eval/assert/check directives through to internal/dispatch.
// It is the "external collaborator" spec.md 1 explicitly keeps outside
// the core -- no operator precedence table, no fixity declarations,
// no on-disk module search (internal/projectfile.ResolveImport and
// cmd/lambdapi's source loader own that),
// grounded on funxy's internal/parser curToken/peekToken recursive-
// descent style (types.go, expressions_core.go) pared down to one
// small grammar.
package surface

import "github.com/funvibe/lambdapi/internal/token"

// Expr is a surface-syntax term, not yet converted to the locally-
// nameless internal/term representation (see Build).
type Expr interface {
	exprNode()
}

// Ident is a bare name: either a pattern-local bound variable (resolved
// against the lambda/pi environment Build threads through) or a
// reference to a declared symbol (resolved by the caller-supplied
// resolver).
type Ident struct {
	Name string
	Pos  token.Position
}

// Sort is the "Type" sort keyword. Kind is never user-writable
// (spec.md 4.5: Kind is not an inferable subject).
type Sort struct {
	Pos token.Position
}

// PatHole is a `?k` metavariable, valid only inside a rule's left- and
// right-hand sides.
type PatHole struct {
	Index int
	Pos   token.Position
}

// App is function application by juxtaposition.
type App struct {
	Fun Expr
	Arg Expr
}

// Lambda is `\x. body` or `\x : A. body`. Domain is nil for the
// unannotated form (only checkable, never inferable, per spec.md 4.5).
type Lambda struct {
	Param  string
	Domain Expr
	Body   Expr
	Pos    token.Position
}

// Pi is `(x : A) -> B` or, for the non-dependent form `A -> B`, Param
// is "_" and B does not mention the bound variable.
type Pi struct {
	Param  string
	Domain Expr
	Body   Expr
	Pos    token.Position
}

func (Ident) exprNode()   {}
func (Sort) exprNode()    {}
func (PatHole) exprNode() {}
func (App) exprNode()     {}
func (Lambda) exprNode()  {}
func (Pi) exprNode()      {}

// Directive is one top-level command of spec.md 6.
type Directive interface {
	directiveNode()
}

type ImportDirective struct {
	ModulePath string
	Pos        token.Position
}

type DeclStaticDirective struct {
	Name string
	Type Expr
	Pos  token.Position
}

type DeclDefinableDirective struct {
	Name string
	Type Expr
	Pos  token.Position
}

// RuleDirective adds one rewrite rule `LHS => RHS.`. LHS must build to
// a symbol applied to patterns; internal/dispatch decomposes it via
// term.Spine before handing it to internal/rules.Admit.
type RuleDirective struct {
	LHS Expr
	RHS Expr
	Pos token.Position
}

type InferDirective struct {
	Term Expr
	Pos  token.Position
}

// EvalMode selects whnf vs snf for an EvalDirective (spec.md 6 eval
// configuration).
type EvalMode int

const (
	EvalSNF EvalMode = iota
	EvalWHNF
)

type EvalDirective struct {
	Mode EvalMode
	Term Expr
	Pos  token.Position
}

// AssertOp distinguishes `t == u` (convertibility) from `t : A` (type
// checking), spec.md 6's two assertion forms.
type AssertOp int

const (
	AssertEquiv AssertOp = iota
	AssertHasType
)

// AssertDirective is `assert`/`check` per spec.md 6; Warn is true for
// the non-asserting `check` form, which only warns on failure instead
// of aborting.
type AssertDirective struct {
	Left  Expr
	Op    AssertOp
	Right Expr
	Warn  bool
	Pos   token.Position
}

func (ImportDirective) directiveNode()        {}
func (DeclStaticDirective) directiveNode()    {}
func (DeclDefinableDirective) directiveNode() {}
func (RuleDirective) directiveNode()          {}
func (InferDirective) directiveNode()         {}
func (EvalDirective) directiveNode()          {}
func (AssertDirective) directiveNode()        {}
