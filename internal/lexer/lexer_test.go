package lexer

import (
	"testing"

	"github.com/funvibe/lambdapi/internal/token"
)

func collect(t *testing.T, input string) []token.Token {
	l := New("<test>", input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLexDeclarations(t *testing.T) {
	toks := collect(t, "static Nat : Type.\ndefinable add : Nat -> Nat -> Nat.")
	want := []token.Type{
		token.STATIC, token.IDENT, token.COLON, token.TYPESORT, token.DOT,
		token.DEFINABLE, token.IDENT, token.COLON, token.IDENT, token.ARROW, token.IDENT, token.ARROW, token.IDENT, token.DOT,
		token.EOF,
	}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: want %d got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestLexRuleWithPatternHoles(t *testing.T) {
	toks := collect(t, "rule add ?0 zero => ?0.")
	want := []token.Type{
		token.RULE, token.IDENT, token.QUESTION, token.INT, token.IDENT, token.FATARROW, token.QUESTION, token.INT, token.DOT,
		token.EOF,
	}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: want %d got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestLexSkipsLineComments(t *testing.T) {
	toks := collect(t, "// a comment\nstatic Nat : Type.")
	if toks[0].Type != token.STATIC {
		t.Fatalf("expected comment to be skipped, first token was %v", toks[0].Type)
	}
}

func TestLexAssertEquiv(t *testing.T) {
	toks := collect(t, "assert add zero zero == zero.")
	want := []token.Type{token.ASSERT, token.IDENT, token.IDENT, token.IDENT, token.EQUIV, token.IDENT, token.DOT, token.EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: want %d got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestLexLambdaAndPatternHole(t *testing.T) {
	toks := collect(t, `\x . ?0 x`)
	want := []token.Type{token.BACKSLASH, token.IDENT, token.DOT, token.QUESTION, token.INT, token.IDENT, token.EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: want %d got %d (%v)", len(want), len(got), got)
	}
}

func TestPositionsTrackLineAndColumn(t *testing.T) {
	l := New("f.lpi", "static\nNat")
	first := l.NextToken()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("expected 1:1, got %d:%d", first.Pos.Line, first.Pos.Column)
	}
	second := l.NextToken()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Fatalf("expected 2:1, got %d:%d", second.Pos.Line, second.Pos.Column)
	}
}
