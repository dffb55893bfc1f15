// Package symtab implements the read-only symbol table abstraction of
// spec.md 6: lookup by (module, name), the static/definable tag, and
// the ordered rule list of a definable symbol. It is grounded on
// funxy's internal/symbols/symbol_table_core.go Symbol struct, pared
// down to the two tags spec.md 3 actually needs (Static/Definable in
// place of funxy's five-way SymbolKind) and extended with the ordered
// Rules slice spec.md 3 requires.
//
// Mutation happens only through Declare*/AdmitRule, matching spec.md 6
// ("the symbol table is mutated only through the admission
// interface"); every other method is a pure read.
package symtab

import (
	"fmt"

	"github.com/funvibe/lambdapi/internal/term"
)

// Tag distinguishes a static (rigid, rule-free) symbol from a
// definable one (fixed type plus a growing rule list).
type Tag int

const (
	Static Tag = iota
	Definable
)

func (t Tag) String() string {
	if t == Static {
		return "static"
	}
	return "definable"
}

// Rule is a rewrite head lhs_args... -> rhs, spec.md 3.
type Rule struct {
	Head       *Symbol
	Arity      int
	LHSArgs    []term.Term
	RHS        term.Term
	DeclModule string // the module that added the rule (may differ from Head.Module, spec.md 3)
}

// Symbol is an identified, typed constant (spec.md 3). Type is fixed
// at creation and Tag never changes; Rules grows monotonically for a
// Definable symbol and is never empty-ed or reordered once appended.
type Symbol struct {
	Module string
	Name   string
	Type   term.Term
	Tag    Tag
	Rules  []*Rule
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s.%s : %s", s.Module, s.Name, s.Type)
}

// Key identifies a symbol by (module, name).
type Key struct {
	Module string
	Name   string
}

// Reader is the read-only view the reducer, checker and admissibility
// pass are given; they never see the mutating methods of Table.
type Reader interface {
	Find(module, name string) (*Symbol, bool)
	RulesOf(s *Symbol) []*Rule
}

// Table is the concrete, mutable symbol table. It is the sole owner of
// Symbol and Rule values; once a *Symbol is handed out its Type and
// Tag are never changed in place, so callers that keep a pointer to it
// can treat those two fields as immutable.
type Table struct {
	symbols map[Key]*Symbol
}

func New() *Table {
	return &Table{symbols: make(map[Key]*Symbol)}
}

// Find looks up a symbol by (module, name).
func (t *Table) Find(module, name string) (*Symbol, bool) {
	s, ok := t.symbols[Key{Module: module, Name: name}]
	return s, ok
}

// RulesOf returns the current, ordered rule list of a definable
// symbol. Static symbols return nil; the symbol's own rule list is
// returned whether or not this table owns it.
func (t *Table) RulesOf(s *Symbol) []*Rule {
	if s == nil || s.Tag != Definable {
		return nil
	}
	return s.Rules
}

// DeclareStatic declares a new static symbol. Returns an error if the
// name is already present in module (spec.md 7 SymbolRedefinition;
// non-fatal, the dispatcher decides whether to warn or reject).
func (t *Table) DeclareStatic(module, name string, typ term.Term) (*Symbol, error) {
	return t.declare(module, name, typ, Static)
}

// DeclareDefinable declares a new definable symbol with an empty rule list.
func (t *Table) DeclareDefinable(module, name string, typ term.Term) (*Symbol, error) {
	return t.declare(module, name, typ, Definable)
}

func (t *Table) declare(module, name string, typ term.Term, tag Tag) (*Symbol, error) {
	key := Key{Module: module, Name: name}
	if existing, ok := t.symbols[key]; ok {
		return existing, fmt.Errorf("symbol %s.%s already declared", module, name)
	}
	s := &Symbol{Module: module, Name: name, Type: typ, Tag: tag}
	t.symbols[key] = s
	return s, nil
}

// AdmitRule appends rule to sym's rule list. It is the only mutator of
// Rules; callers (internal/rules) must have already run the
// admissibility check of spec.md 4.6 before calling this. Rules are
// appended only — no rule is ever removed (spec.md 3).
func (t *Table) AdmitRule(sym *Symbol, rule *Rule) error {
	if sym.Tag != Definable {
		return fmt.Errorf("cannot add rules to static symbol %s.%s", sym.Module, sym.Name)
	}
	sym.Rules = append(sym.Rules, rule)
	return nil
}

// All returns every declared symbol, for serialisation (internal/objfile).
func (t *Table) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		out = append(out, s)
	}
	return out
}
