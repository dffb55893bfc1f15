// Package dispatch implements the command dispatcher of spec.md 6: it
// drives internal/surface's parsed directives through
// internal/check, internal/reduce, internal/convert and
// internal/rules against an internal/universe.Universe, exactly the
// role funxy's internal/pipeline.Pipeline.Run plays for its own
// parse/analyze/evaluate stages and cmd/funxy/main.go's per-module
// driver loop plays for module loading order.
package dispatch

import (
	"fmt"
	"io"

	"github.com/funvibe/lambdapi/internal/check"
	"github.com/funvibe/lambdapi/internal/convert"
	"github.com/funvibe/lambdapi/internal/lambdaerr"
	"github.com/funvibe/lambdapi/internal/lexer"
	"github.com/funvibe/lambdapi/internal/reduce"
	"github.com/funvibe/lambdapi/internal/rules"
	"github.com/funvibe/lambdapi/internal/surface"
	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
	"github.com/funvibe/lambdapi/internal/token"
	"github.com/funvibe/lambdapi/internal/universe"
)

// SourceLoader fetches the source text for an imported module path,
// supplied by the caller (cmd/lambdapi reads files; tests can supply
// an in-memory map) so internal/dispatch stays free of any filesystem
// dependency.
type SourceLoader func(modulePath string) ([]byte, error)

// Result records the observable outcome of one directive, for callers
// (the CLI, internal/rpcapi, tests) that want to inspect what `infer`/
// `eval`/`assert`/`check` produced rather than just pass/fail.
type Result struct {
	Pos     token.Position
	Kind    string // "infer", "eval", "assert", "check"
	Term    term.Term
	Warning string // non-empty only for a non-asserting check that failed
}

// Dispatcher owns the Universe every module is compiled into and the
// import graph discovered while loading it.
type Dispatcher struct {
	U          *universe.Universe
	StepBudget int
	Sources    SourceLoader
	Warn       io.Writer

	imports map[string][]string
}

func New(u *universe.Universe, stepBudget int, sources SourceLoader, warn io.Writer) *Dispatcher {
	return &Dispatcher{U: u, StepBudget: stepBudget, Sources: sources, Warn: warn, imports: make(map[string][]string)}
}

// moduleReader implements symtab.Reader across one module's own table
// (for its own, not-yet-Finished symbols) and the Universe (for
// already-loaded dependencies) -- the dual-reader split Design Notes 9
// calls for in internal/universe.Universe's own doc comment.
type moduleReader struct {
	m *universe.Module
	u *universe.Universe
}

func (r moduleReader) Find(module, name string) (*symtab.Symbol, bool) {
	if module == r.m.Path {
		return r.m.Table.Find(module, name)
	}
	return r.u.Find(module, name)
}

func (r moduleReader) RulesOf(s *symtab.Symbol) []*symtab.Rule {
	if s.Module == r.m.Path {
		return r.m.Table.RulesOf(s)
	}
	return r.u.RulesOf(s)
}

// resolver builds the surface.Resolver for m: an unqualified name is
// looked up in m's own table first, then each module m imports, in
// import order.
func (d *Dispatcher) resolver(m *universe.Module) surface.Resolver {
	return func(name string) (string, bool) {
		if _, ok := m.Table.Find(m.Path, name); ok {
			return m.Path, true
		}
		for _, imp := range d.imports[m.Path] {
			if _, ok := d.U.Find(imp, name); ok {
				return imp, true
			}
		}
		return "", false
	}
}

// ResolverFor returns the surface.Resolver for an already-loaded
// module, for callers (internal/rpcapi) that parse and build terms
// against a module outside of a Load call.
func (d *Dispatcher) ResolverFor(modulePath string) (surface.Resolver, error) {
	m, ok := d.U.Get(modulePath)
	if !ok {
		return nil, fmt.Errorf("dispatch: module %s is not loaded", modulePath)
	}
	return d.resolver(m), nil
}

func (d *Dispatcher) ownerTable(m *universe.Module, module string) (*symtab.Table, error) {
	if module == m.Path {
		return m.Table, nil
	}
	dep, ok := d.U.Get(module)
	if !ok {
		return nil, fmt.Errorf("dispatch: module %s referenced before it was loaded", module)
	}
	return dep.Table, nil
}

// Load parses source as modulePath's source text and runs every
// directive against a fresh Module, loading any `import`ed modules
// (via Sources) first. Returns the finished Module and the Results of
// its infer/eval/assert/check directives, in order.
func (d *Dispatcher) Load(modulePath string, source []byte) (*universe.Module, []Result, error) {
	m, already, err := d.U.Load(modulePath)
	if err != nil {
		return nil, nil, err
	}
	if already {
		return m, nil, nil
	}

	p := surface.New(lexer.New(modulePath, string(source)))
	dirs, err := p.ParseProgram()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", modulePath, err)
	}

	var results []Result
	for _, dir := range dirs {
		res, err := d.runDirective(m, dir)
		if err != nil {
			return nil, results, fmt.Errorf("%s: %w", modulePath, err)
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	if err := d.U.Finish(m); err != nil {
		return nil, results, err
	}
	return m, results, nil
}

func (d *Dispatcher) warnf(format string, args ...interface{}) {
	if d.Warn != nil {
		fmt.Fprintf(d.Warn, format+"\n", args...)
	}
}

func (d *Dispatcher) runDirective(m *universe.Module, dir surface.Directive) (*Result, error) {
	rdr := moduleReader{m: m, u: d.U}

	switch dd := dir.(type) {
	case surface.ImportDirective:
		if _, ok := d.U.Get(dd.ModulePath); !ok {
			src, err := d.Sources(dd.ModulePath)
			if err != nil {
				return nil, fmt.Errorf("%s: importing %s: %w", dd.Pos, dd.ModulePath, err)
			}
			if _, _, err := d.Load(dd.ModulePath, src); err != nil {
				return nil, err
			}
		}
		d.imports[m.Path] = append(d.imports[m.Path], dd.ModulePath)
		return nil, nil

	case surface.DeclStaticDirective:
		typ, err := surface.Build(dd.Type, nil, d.resolver(m))
		if err != nil {
			return nil, err
		}
		if _, err := check.SortOf(check.Empty(), typ, rdr, dd.Pos); err != nil {
			return nil, err
		}
		if _, err := m.Table.DeclareStatic(m.Path, dd.Name, typ); err != nil {
			d.warnf("%s", (&lambdaerr.SymbolRedefinition{Pos: dd.Pos, Module: m.Path, Name: dd.Name}).Error())
		}
		return nil, nil

	case surface.DeclDefinableDirective:
		typ, err := surface.Build(dd.Type, nil, d.resolver(m))
		if err != nil {
			return nil, err
		}
		if _, err := check.SortOf(check.Empty(), typ, rdr, dd.Pos); err != nil {
			return nil, err
		}
		if _, err := m.Table.DeclareDefinable(m.Path, dd.Name, typ); err != nil {
			d.warnf("%s", (&lambdaerr.SymbolRedefinition{Pos: dd.Pos, Module: m.Path, Name: dd.Name}).Error())
		}
		return nil, nil

	case surface.RuleDirective:
		return nil, d.runRule(m, dd, rdr)

	case surface.InferDirective:
		t, err := surface.Build(dd.Term, nil, d.resolver(m))
		if err != nil {
			return nil, err
		}
		typ, err := check.Infer(check.Empty(), t, rdr, dd.Pos)
		if err != nil {
			return nil, err
		}
		return &Result{Pos: dd.Pos, Kind: "infer", Term: reduce.Snf(typ, rdr)}, nil

	case surface.EvalDirective:
		t, err := surface.Build(dd.Term, nil, d.resolver(m))
		if err != nil {
			return nil, err
		}
		if _, err := check.Infer(check.Empty(), t, rdr, dd.Pos); err != nil {
			return nil, err
		}
		mode := reduce.ModeSnf
		if dd.Mode == surface.EvalWHNF {
			mode = reduce.ModeWhnf
		}
		evaled, err := reduce.Reduce(t, rdr, reduce.Config{Mode: mode, StepBudget: d.StepBudget}, dd.Pos)
		if err != nil {
			return nil, err
		}
		return &Result{Pos: dd.Pos, Kind: "eval", Term: evaled}, nil

	case surface.AssertDirective:
		return d.runAssert(m, dd, rdr)

	default:
		return nil, fmt.Errorf("dispatch: unknown directive %T", dir)
	}
}

func (d *Dispatcher) runRule(m *universe.Module, dd surface.RuleDirective, rdr moduleReader) error {
	resolve := d.resolver(m)
	lhs, err := surface.Build(dd.LHS, nil, resolve)
	if err != nil {
		return err
	}
	rhs, err := surface.Build(dd.RHS, nil, resolve)
	if err != nil {
		return err
	}
	head, args := term.Spine(lhs)
	sym, ok := head.(term.Sym)
	if !ok {
		return &lambdaerr.NotAPattern{Pos: dd.Pos, Reason: "a rule's left-hand side must apply a declared symbol"}
	}

	ownerTab, err := d.ownerTable(m, sym.Module)
	if err != nil {
		return err
	}
	headSym, ok := ownerTab.Find(sym.Module, sym.Name)
	if !ok {
		return &lambdaerr.SymbolNotFound{Pos: dd.Pos, Module: sym.Module, Name: sym.Name}
	}

	arity := surface.MaxPatHoleIndex(dd.LHS)
	if rhsArity := surface.MaxPatHoleIndex(dd.RHS); rhsArity > arity {
		arity = rhsArity
	}

	rule := &symtab.Rule{Head: headSym, Arity: arity, LHSArgs: args, RHS: rhs, DeclModule: m.Path}
	if err := rules.Admit(ownerTab, rule, dd.Pos, rdr); err != nil {
		return err
	}

	if sym.Module != m.Path {
		owner, ok := d.U.Get(sym.Module)
		if !ok {
			return fmt.Errorf("dispatch: module %s vanished after rule admission", sym.Module)
		}
		d.U.RecordForeignRule(owner, m.Path, rule)
	}
	return nil
}

func (d *Dispatcher) runAssert(m *universe.Module, dd surface.AssertDirective, rdr moduleReader) (*Result, error) {
	resolve := d.resolver(m)
	left, err := surface.Build(dd.Left, nil, resolve)
	if err != nil {
		return nil, err
	}

	var failErr error
	switch dd.Op {
	case surface.AssertEquiv:
		right, err := surface.Build(dd.Right, nil, resolve)
		if err != nil {
			failErr = err
			break
		}
		if !convert.EqModulo(left, right, rdr) {
			failErr = &lambdaerr.TypeMismatch{Pos: dd.Pos, Expected: right, Got: left}
		}
	case surface.AssertHasType:
		expected, err := surface.Build(dd.Right, nil, resolve)
		if err != nil {
			failErr = err
			break
		}
		failErr = check.Check(check.Empty(), left, expected, rdr, dd.Pos)
	}

	kind := "assert"
	if dd.Warn {
		kind = "check"
	}
	if failErr != nil {
		if !dd.Warn {
			return nil, failErr
		}
		d.warnf("%s: %v", dd.Pos, failErr)
		return &Result{Pos: dd.Pos, Kind: kind, Warning: failErr.Error()}, nil
	}
	return &Result{Pos: dd.Pos, Kind: kind, Term: left}, nil
}
