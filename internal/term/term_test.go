package term

import "testing"

func TestSpineRoundTrip(t *testing.T) {
	f := Sym{Name: "add"}
	a := Sym{Name: "zero"}
	b := Sym{Name: "one"}
	spine := ApplySpine(f, []Term{a, b})

	head, args := Spine(spine)
	if !Equal(head, f) {
		t.Fatalf("head = %v, want %v", head, f)
	}
	if len(args) != 2 || !Equal(args[0], a) || !Equal(args[1], b) {
		t.Fatalf("args = %v", args)
	}
}

func TestOpenCloseRoundTrip(t *testing.T) {
	// Prod(Type, Var(0)) ~ (x:Type) -> x
	body := Prod{Domain: Type{}, Body: Var{Index: 0}}
	fv, opened := Open(body.Body, "x")
	if !Equal(opened, fv) {
		t.Fatalf("opening Var(0) should yield the fresh free var, got %v", opened)
	}
	closed := Close(fv, opened)
	if !Equal(closed, Var{Index: 0}) {
		t.Fatalf("Close(Open(t)) should restore Var(0), got %v", closed)
	}
}

func TestSubstBeta(t *testing.T) {
	// (\x. x) applied to Sym{zero} should yield Sym{zero}.
	abs := Abst{Body: Var{Index: 0}}
	result := Subst(abs.Body, Sym{Name: "zero"})
	if !Equal(result, Sym{Name: "zero"}) {
		t.Fatalf("beta-substitution failed: %v", result)
	}
}

func TestSubstUnderNestedBinder(t *testing.T) {
	// \y. (x y) with x = Var(1) referring one level out: after
	// substituting the outer variable by Sym{f}, the inner Var(0)
	// (y) must remain untouched and the outer reference becomes f.
	inner := App{Fun: Var{Index: 1}, Arg: Var{Index: 0}}
	outer := Abst{Body: inner}
	result := Subst(outer, Sym{Name: "f"})
	want := Abst{Body: App{Fun: Sym{Name: "f"}, Arg: Var{Index: 0}}}
	if !Equal(result, want) {
		t.Fatalf("got %v, want %v", result, want)
	}
}

func TestMultiSubst(t *testing.T) {
	// rhs = succ ?0, sigma = [zero] -> succ zero
	rhs := App{Fun: Sym{Name: "succ"}, Arg: PatHole{Index: 0}}
	result := MultiSubst(rhs, []Term{Sym{Name: "zero"}})
	want := App{Fun: Sym{Name: "succ"}, Arg: Sym{Name: "zero"}}
	if !Equal(result, want) {
		t.Fatalf("got %v, want %v", result, want)
	}
}

func TestMultiSubstUnderBinder(t *testing.T) {
	// rhs = \y. ?0 applied under a binder: substituting a term that
	// itself contains no free Var(0) should leave the binder's own
	// bound occurrences alone.
	rhs := Abst{Body: PatHole{Index: 0}}
	result := MultiSubst(rhs, []Term{Sym{Name: "zero"}})
	want := Abst{Body: Sym{Name: "zero"}}
	if !Equal(result, want) {
		t.Fatalf("got %v, want %v", result, want)
	}
}

func TestFreeVarsAndPatHoles(t *testing.T) {
	fv := NewFreeVar("x")
	tm := App{Fun: fv, Arg: PatHole{Index: 2}}
	fvs := FreeVars(tm)
	if !fvs[fv.ID] {
		t.Fatalf("expected free var %d in %v", fv.ID, fvs)
	}
	holes := PatHoles(tm)
	if !holes[2] {
		t.Fatalf("expected pattern hole 2 in %v", holes)
	}
}
