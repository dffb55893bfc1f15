package objfile

import (
	"testing"

	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

func sym(mod, name string) term.Sym { return term.Sym{Module: mod, Name: name} }

func buildNatTable(t *testing.T) *symtab.Table {
	tab := symtab.New()
	if _, err := tab.DeclareStatic("nat", "Nat", term.Type{}); err != nil {
		t.Fatal(err)
	}
	natSym := sym("nat", "Nat")
	if _, err := tab.DeclareStatic("nat", "zero", natSym); err != nil {
		t.Fatal(err)
	}
	zeroSym := sym("nat", "zero")
	succType := term.Prod{Domain: natSym, Body: natSym, Hint: "n"}
	if _, err := tab.DeclareStatic("nat", "succ", succType); err != nil {
		t.Fatal(err)
	}
	succSym := sym("nat", "succ")

	addType := term.Prod{Domain: natSym, Body: term.Prod{Domain: natSym, Body: natSym, Hint: "m"}, Hint: "n"}
	add, err := tab.DeclareDefinable("nat", "add", addType)
	if err != nil {
		t.Fatal(err)
	}

	r1 := &symtab.Rule{
		Head:       add,
		Arity:      1,
		LHSArgs:    []term.Term{zeroSym, term.PatHole{Index: 0}},
		RHS:        term.PatHole{Index: 0},
		DeclModule: "nat",
	}
	if err := tab.AdmitRule(add, r1); err != nil {
		t.Fatal(err)
	}
	r2 := &symtab.Rule{
		Head:  add,
		Arity: 2,
		LHSArgs: []term.Term{
			term.App{Fun: succSym, Arg: term.PatHole{Index: 0}},
			term.PatHole{Index: 1},
		},
		RHS: term.App{
			Fun: succSym,
			Arg: term.App{Fun: term.App{Fun: sym("nat", "add"), Arg: term.PatHole{Index: 0}}, Arg: term.PatHole{Index: 1}},
		},
		DeclModule: "nat",
	}
	if err := tab.AdmitRule(add, r2); err != nil {
		t.Fatal(err)
	}
	return tab
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tab := buildNatTable(t)

	data, err := Encode(tab)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, name := range []string{"Nat", "zero", "succ", "add"} {
		orig, ok := tab.Find("nat", name)
		if !ok {
			t.Fatalf("test setup missing %s", name)
		}
		got, ok := out.Find("nat", name)
		if !ok {
			t.Fatalf("decoded table missing %s", name)
		}
		if got.Tag != orig.Tag {
			t.Fatalf("%s: tag mismatch, want %v got %v", name, orig.Tag, got.Tag)
		}
		if !term.Equal(got.Type, orig.Type) {
			t.Fatalf("%s: type mismatch, want %v got %v", name, orig.Type, got.Type)
		}
	}

	add, _ := out.Find("nat", "add")
	rules := out.RulesOf(add)
	origAdd, _ := tab.Find("nat", "add")
	origRules := tab.RulesOf(origAdd)
	if len(rules) != len(origRules) {
		t.Fatalf("expected %d rules, got %d", len(origRules), len(rules))
	}
	for i := range rules {
		if rules[i].Arity != origRules[i].Arity {
			t.Fatalf("rule %d: arity mismatch", i)
		}
		if len(rules[i].LHSArgs) != len(origRules[i].LHSArgs) {
			t.Fatalf("rule %d: LHS arg count mismatch", i)
		}
		for j := range rules[i].LHSArgs {
			if !term.Equal(rules[i].LHSArgs[j], origRules[i].LHSArgs[j]) {
				t.Fatalf("rule %d arg %d: mismatch, want %v got %v", i, j, origRules[i].LHSArgs[j], rules[i].LHSArgs[j])
			}
		}
		if !term.Equal(rules[i].RHS, origRules[i].RHS) {
			t.Fatalf("rule %d: RHS mismatch, want %v got %v", i, origRules[i].RHS, rules[i].RHS)
		}
		if rules[i].Head != add {
			t.Fatalf("rule %d: Head should point at the decoded add symbol, not a stale pointer", i)
		}
		if rules[i].DeclModule != origRules[i].DeclModule {
			t.Fatalf("rule %d: DeclModule mismatch", i)
		}
	}
}

func TestEncodeRejectsOpenTerm(t *testing.T) {
	tab := symtab.New()
	fv := term.NewFreeVar("x")
	if _, err := tab.DeclareStatic("m", "bad", fv); err != nil {
		t.Fatal(err)
	}
	if _, err := Encode(tab); err == nil {
		t.Fatal("expected Encode to reject a symbol type containing a free variable")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	tab := buildNatTable(t)
	data, err := Encode(tab)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data[:len(data)-5]); err == nil {
		t.Fatal("expected Decode to fail on truncated input")
	}
}
