package universe

import (
	"testing"

	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

func TestLoadFinishAndFind(t *testing.T) {
	u := New()
	m, already, err := u.Load("nat")
	if err != nil {
		t.Fatal(err)
	}
	if already {
		t.Fatal("nat should not already be loaded")
	}
	if _, err := m.Table.DeclareStatic("nat", "Nat", term.Type{}); err != nil {
		t.Fatal(err)
	}
	if err := u.Finish(m); err != nil {
		t.Fatal(err)
	}

	sym, ok := u.Find("nat", "Nat")
	if !ok {
		t.Fatal("Nat should be visible through the universe-wide reader")
	}
	if sym.Module != "nat" || sym.Name != "Nat" {
		t.Fatalf("unexpected symbol %v", sym)
	}
}

func TestLoadReturnsCachedModule(t *testing.T) {
	u := New()
	m, _, err := u.Load("a")
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Finish(m); err != nil {
		t.Fatal(err)
	}
	m2, already, err := u.Load("a")
	if err != nil {
		t.Fatal(err)
	}
	if !already {
		t.Fatal("second Load of the same path should report already loaded")
	}
	if m2 != m {
		t.Fatal("second Load should return the identical cached Module")
	}
}

func TestLoadDetectsCircularImport(t *testing.T) {
	u := New()
	a, _, err := u.Load("a")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = u.Load("b")
	if err != nil {
		t.Fatal(err)
	}
	// a and b are both still on the loading stack; a re-entrant load
	// of b while b is mid-load is a cycle.
	if _, _, err := u.Load("b"); err == nil {
		t.Fatal("expected a circular import error re-loading b while it is still loading")
	}
	_ = a
}

func TestFinishReplaysForeignRulesOnReload(t *testing.T) {
	u := New()

	owner, _, err := u.Load("owner")
	if err != nil {
		t.Fatal(err)
	}
	owner.Table.DeclareStatic("owner", "Nat", term.Type{})
	natSym := term.Sym{Module: "owner", Name: "Nat"}
	owner.Table.DeclareStatic("owner", "zero", natSym)
	add, err := owner.Table.DeclareDefinable("owner", "add", term.Prod{Domain: natSym, Body: natSym})
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Finish(owner); err != nil {
		t.Fatal(err)
	}

	// A foreign module (consumer) admits a rule against owner's "add".
	rule := &symtab.Rule{Head: add, Arity: 0, LHSArgs: []term.Term{term.Sym{Module: "owner", Name: "zero"}}, RHS: term.Sym{Module: "owner", Name: "zero"}, DeclModule: "consumer"}
	if err := owner.Table.AdmitRule(add, rule); err != nil {
		t.Fatal(err)
	}
	u.RecordForeignRule(owner, "consumer", rule)

	// owner is recompiled from scratch: fresh Table, fresh Symbol
	// pointers, no rules yet.
	reloaded, err := u.Reload("owner")
	if err != nil {
		t.Fatal(err)
	}
	reloaded.Table.DeclareStatic("owner", "Nat", term.Type{})
	reloaded.Table.DeclareStatic("owner", "zero", natSym)
	newAdd, err := reloaded.Table.DeclareDefinable("owner", "add", term.Prod{Domain: natSym, Body: natSym})
	if err != nil {
		t.Fatal(err)
	}
	_ = newAdd

	if err := u.Finish(reloaded); err != nil {
		t.Fatal(err)
	}

	finalAdd, ok := u.Find("owner", "add")
	if !ok {
		t.Fatal("add should be visible after reload")
	}
	if len(u.RulesOf(finalAdd)) != 1 {
		t.Fatalf("expected the foreign rule to be replayed onto the reloaded module, got %d rules", len(u.RulesOf(finalAdd)))
	}
}
