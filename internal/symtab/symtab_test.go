package symtab

import (
	"testing"

	"github.com/funvibe/lambdapi/internal/term"
)

func TestDeclareAndFind(t *testing.T) {
	tab := New()
	if _, err := tab.DeclareStatic("nat", "zero", term.Sym{Module: "nat", Name: "Nat"}); err != nil {
		t.Fatalf("declare static: %v", err)
	}
	sym, ok := tab.Find("nat", "zero")
	if !ok || sym.Tag != Static {
		t.Fatalf("expected static symbol zero, got %+v ok=%v", sym, ok)
	}

	if _, err := tab.DeclareStatic("nat", "zero", term.Sym{}); err == nil {
		t.Fatalf("expected redefinition error")
	}
}

func TestAdmitRuleAppendsInOrder(t *testing.T) {
	tab := New()
	add, _ := tab.DeclareDefinable("nat", "add", term.Sym{Module: "nat", Name: "Nat"})

	r1 := &Rule{Head: add, Arity: 1, RHS: term.PatHole{Index: 0}, DeclModule: "nat"}
	r2 := &Rule{Head: add, Arity: 1, RHS: term.Sym{Name: "zero"}, DeclModule: "nat"}

	if err := tab.AdmitRule(add, r1); err != nil {
		t.Fatalf("admit r1: %v", err)
	}
	if err := tab.AdmitRule(add, r2); err != nil {
		t.Fatalf("admit r2: %v", err)
	}

	rules := tab.RulesOf(add)
	if len(rules) != 2 || rules[0] != r1 || rules[1] != r2 {
		t.Fatalf("rules not appended in declaration order: %+v", rules)
	}
}

func TestRulesOfStaticIsNil(t *testing.T) {
	tab := New()
	sym, _ := tab.DeclareStatic("nat", "Nat", term.Type{})
	if rules := tab.RulesOf(sym); rules != nil {
		t.Fatalf("expected nil rules for static symbol, got %v", rules)
	}
}
