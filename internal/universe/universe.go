// Package universe is the explicit replacement (Design Notes 9) for
// funxy's package-level Loader/moduleCache globals: a Universe value
// owns every loaded module's symbol table and the stack of modules
// currently being loaded, grounded on funxy's internal/modules
// (loader.go's LoadedModules/Processing maps, module.go's Module
// struct) with fields renamed to the lambdaPi domain and turned into
// an explicit, passed-around value instead of package state.
package universe

import (
	"fmt"
	"strings"

	"github.com/funvibe/lambdapi/internal/symtab"
)

// Module is one loaded compilation unit.
type Module struct {
	Path    string
	Table   *symtab.Table
	Exports map[string]bool

	// Dependents is the set of module paths that have admitted a rule
	// against one of this module's own symbols -- tracked purely for
	// diagnostics (which modules would be affected by a reload).
	Dependents map[string]bool

	// ForeignRules are the rules other modules admitted against
	// symbols this module owns, in admission order. They are replayed
	// against a freshly rematerialised Table when this module reloads
	// (Design Notes 9's cross-module rule attachment), since rebuilding
	// Table mints new *symtab.Symbol values and loses any rule list
	// foreign modules had appended to the old ones.
	ForeignRules []*symtab.Rule
}

func newModule(path string) *Module {
	return &Module{
		Path:       path,
		Table:      symtab.New(),
		Exports:    make(map[string]bool),
		Dependents: make(map[string]bool),
	}
}

// Universe owns every loaded module plus the stack of module paths
// currently mid-load, for the circularity check Load performs.
type Universe struct {
	modules map[string]*Module
	loading []string
}

func New() *Universe {
	return &Universe{modules: make(map[string]*Module)}
}

// Get returns an already-loaded module.
func (u *Universe) Get(path string) (*Module, bool) {
	m, ok := u.modules[path]
	return m, ok
}

// Load begins loading path. If path is already loaded, its cached
// Module is returned and the caller should not repopulate it. If path
// is already on the loading stack this is a circular import. Otherwise
// a fresh Module is returned for the caller (internal/dispatch, as it
// runs declarations from internal/surface against it) to populate;
// Finish must be called exactly once to complete the load.
func (u *Universe) Load(path string) (m *Module, alreadyLoaded bool, err error) {
	if m, ok := u.modules[path]; ok {
		return m, true, nil
	}
	for _, p := range u.loading {
		if p == path {
			return nil, false, fmt.Errorf("circular import: %s", strings.Join(append(append([]string{}, u.loading...), path), " -> "))
		}
	}
	u.loading = append(u.loading, path)
	return newModule(path), false, nil
}

// Reload behaves like Load but always starts a fresh Module even if
// path is already registered, for explicit recompilation; it still
// takes part in the same loading-stack circularity check as Load.
func (u *Universe) Reload(path string) (*Module, error) {
	for _, p := range u.loading {
		if p == path {
			return nil, fmt.Errorf("circular import: %s", strings.Join(append(append([]string{}, u.loading...), path), " -> "))
		}
	}
	u.loading = append(u.loading, path)
	return newModule(path), nil
}

// Finish completes a Load begun for m.Path: pops the loading stack,
// replays any foreign rules recorded against a prior version of this
// module, and registers m as the loaded module for its path.
func (u *Universe) Finish(m *Module) error {
	if len(u.loading) == 0 || u.loading[len(u.loading)-1] != m.Path {
		return fmt.Errorf("universe: Finish(%s) called out of order with Load", m.Path)
	}
	u.loading = u.loading[:len(u.loading)-1]

	if prior, ok := u.modules[m.Path]; ok {
		for k := range prior.Dependents {
			m.Dependents[k] = true
		}
		for _, r := range prior.ForeignRules {
			sym, ok := m.Table.Find(r.Head.Module, r.Head.Name)
			if !ok {
				return fmt.Errorf("universe: reload of %s dropped symbol %s.%s needed to replay a foreign rule", m.Path, r.Head.Module, r.Head.Name)
			}
			replayed := &symtab.Rule{Head: sym, Arity: r.Arity, LHSArgs: r.LHSArgs, RHS: r.RHS, DeclModule: r.DeclModule}
			if err := m.Table.AdmitRule(sym, replayed); err != nil {
				return err
			}
			m.ForeignRules = append(m.ForeignRules, replayed)
		}
	}
	u.modules[m.Path] = m
	return nil
}

// RecordForeignRule registers that declaringModule admitted rule
// against one of owner's own symbols (rule.DeclModule != owner.Path),
// so a future reload of owner knows to replay it.
func (u *Universe) RecordForeignRule(owner *Module, declaringModule string, rule *symtab.Rule) {
	owner.Dependents[declaringModule] = true
	owner.ForeignRules = append(owner.ForeignRules, rule)
}

// Find implements symtab.Reader across every loaded module: a Sym
// carries its own module path, so lookup routes to that module's
// table regardless of which module is asking. A module still mid-Load
// (on the loading stack, not yet Finished) is not visible here; its
// own Table must be passed directly as the symtab.Reader while it is
// being compiled.
func (u *Universe) Find(module, name string) (*symtab.Symbol, bool) {
	m, ok := u.modules[module]
	if !ok {
		return nil, false
	}
	return m.Table.Find(module, name)
}

// RulesOf implements symtab.Reader across every loaded module.
func (u *Universe) RulesOf(s *symtab.Symbol) []*symtab.Rule {
	m, ok := u.modules[s.Module]
	if !ok {
		return nil
	}
	return m.Table.RulesOf(s)
}
