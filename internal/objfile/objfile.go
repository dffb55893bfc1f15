// Package objfile encodes a compiled module's symbol table to a byte
// string and decodes it back (Design Notes 9, "Serialised closures").
// Each field is built and matched with github.com/funvibe/funbit's
// Builder/Matcher API -- the same segment-at-a-time bitstring style
// funxy's go.mod carries for its own binary-literal evaluation -- while
// the recursive tree shape of a term is walked in plain Go, one
// funbit-encoded field at a time, rather than describing an entire
// variable-depth term as a single flat Matcher segment list (funbit
// segment lists must be fully known before a Match call, which a
// recursive, data-dependent tree is not). Binders are always written
// as de Bruijn indices; a FreeVar reaching Encode is a caller error --
// only closed terms (a symbol's declared type, a rule's patterns and
// right-hand side) are ever written to an object file.
package objfile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/funvibe/lambdapi/internal/symtab"
	"github.com/funvibe/lambdapi/internal/term"
)

const (
	tagKind = iota
	tagType
	tagVar
	tagSym
	tagApp
	tagProd
	tagAbst
	tagPatHole
)

const (
	tagStatic = iota
	tagDefinable
)

func encodeUint8(w *bytes.Buffer, v int) error {
	b := funbit.NewBuilder()
	funbit.AddInteger(b, v, funbit.WithSize(8))
	bs, err := funbit.Build(b)
	if err != nil {
		return fmt.Errorf("objfile: encoding uint8: %w", err)
	}
	w.Write(bs.ToBytes())
	return nil
}

func encodeUint32(w *bytes.Buffer, v int) error {
	b := funbit.NewBuilder()
	funbit.AddInteger(b, v, funbit.WithSize(32))
	bs, err := funbit.Build(b)
	if err != nil {
		return fmt.Errorf("objfile: encoding uint32: %w", err)
	}
	w.Write(bs.ToBytes())
	return nil
}

func encodeBytes(w *bytes.Buffer, data []byte) error {
	if err := encodeUint32(w, len(data)); err != nil {
		return err
	}
	b := funbit.NewBuilder()
	funbit.AddBinary(b, data)
	bs, err := funbit.Build(b)
	if err != nil {
		return fmt.Errorf("objfile: encoding binary: %w", err)
	}
	w.Write(bs.ToBytes())
	return nil
}

func encodeString(w *bytes.Buffer, s string) error {
	return encodeBytes(w, []byte(s))
}

func encodeTerm(w *bytes.Buffer, t term.Term) error {
	switch tt := t.(type) {
	case term.Kind:
		return encodeUint8(w, tagKind)

	case term.Type:
		return encodeUint8(w, tagType)

	case term.Var:
		if err := encodeUint8(w, tagVar); err != nil {
			return err
		}
		return encodeUint32(w, tt.Index)

	case term.Sym:
		if err := encodeUint8(w, tagSym); err != nil {
			return err
		}
		if err := encodeString(w, tt.Module); err != nil {
			return err
		}
		return encodeString(w, tt.Name)

	case term.App:
		if err := encodeUint8(w, tagApp); err != nil {
			return err
		}
		if err := encodeTerm(w, tt.Fun); err != nil {
			return err
		}
		return encodeTerm(w, tt.Arg)

	case term.Prod:
		if err := encodeUint8(w, tagProd); err != nil {
			return err
		}
		if err := encodeString(w, tt.Hint); err != nil {
			return err
		}
		if err := encodeTerm(w, tt.Domain); err != nil {
			return err
		}
		return encodeTerm(w, tt.Body)

	case term.Abst:
		if err := encodeUint8(w, tagAbst); err != nil {
			return err
		}
		if err := encodeString(w, tt.Hint); err != nil {
			return err
		}
		hasDomain := 0
		if tt.Domain != nil {
			hasDomain = 1
		}
		if err := encodeUint8(w, hasDomain); err != nil {
			return err
		}
		if tt.Domain != nil {
			if err := encodeTerm(w, tt.Domain); err != nil {
				return err
			}
		}
		return encodeTerm(w, tt.Body)

	case term.PatHole:
		if err := encodeUint8(w, tagPatHole); err != nil {
			return err
		}
		return encodeUint32(w, tt.Index)

	case term.FreeVar:
		return fmt.Errorf("objfile: cannot serialise an open term (free variable %s); close it first", tt.String())

	default:
		return fmt.Errorf("objfile: unknown term shape %T", t)
	}
}

// reader decodes the sequence of funbit-encoded fields Encode wrote,
// slicing off exactly as many bytes as each field declares itself to
// need before handing that slice to a fresh funbit.Matcher.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	chunk := r.data[r.pos : r.pos+n]
	r.pos += n
	return chunk, nil
}

func (r *reader) readUint8() (int, error) {
	chunk, err := r.take(1)
	if err != nil {
		return 0, err
	}
	m := funbit.NewMatcher()
	var v int
	funbit.Integer(m, &v, funbit.WithSize(8))
	if _, err := funbit.Match(m, funbit.NewBitStringFromBytes(chunk)); err != nil {
		return 0, fmt.Errorf("objfile: decoding uint8: %w", err)
	}
	return v, nil
}

func (r *reader) readUint32() (int, error) {
	chunk, err := r.take(4)
	if err != nil {
		return 0, err
	}
	m := funbit.NewMatcher()
	var v int
	funbit.Integer(m, &v, funbit.WithSize(32))
	if _, err := funbit.Match(m, funbit.NewBitStringFromBytes(chunk)); err != nil {
		return 0, fmt.Errorf("objfile: decoding uint32: %w", err)
	}
	return v, nil
}

func (r *reader) readBytes() ([]byte, error) {
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	chunk, err := r.take(n)
	if err != nil {
		return nil, err
	}
	m := funbit.NewMatcher()
	var out []byte
	funbit.Binary(m, &out)
	if _, err := funbit.Match(m, funbit.NewBitStringFromBytes(chunk)); err != nil {
		return nil, fmt.Errorf("objfile: decoding binary: %w", err)
	}
	return out, nil
}

func (r *reader) readString() (string, error) {
	b, err := r.readBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTerm(r *reader) (term.Term, error) {
	tag, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagKind:
		return term.Kind{}, nil

	case tagType:
		return term.Type{}, nil

	case tagVar:
		idx, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		return term.Var{Index: idx}, nil

	case tagSym:
		mod, err := r.readString()
		if err != nil {
			return nil, err
		}
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		return term.Sym{Module: mod, Name: name}, nil

	case tagApp:
		fn, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		arg, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return term.App{Fun: fn, Arg: arg}, nil

	case tagProd:
		hint, err := r.readString()
		if err != nil {
			return nil, err
		}
		dom, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		body, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return term.Prod{Domain: dom, Body: body, Hint: hint}, nil

	case tagAbst:
		hint, err := r.readString()
		if err != nil {
			return nil, err
		}
		hasDomain, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		var dom term.Term
		if hasDomain != 0 {
			dom, err = decodeTerm(r)
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return term.Abst{Domain: dom, Body: body, Hint: hint}, nil

	case tagPatHole:
		idx, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		return term.PatHole{Index: idx}, nil

	default:
		return nil, fmt.Errorf("objfile: unknown term tag %d", tag)
	}
}

func encodeRule(w *bytes.Buffer, rule *symtab.Rule) error {
	if err := encodeUint32(w, rule.Arity); err != nil {
		return err
	}
	if err := encodeUint32(w, len(rule.LHSArgs)); err != nil {
		return err
	}
	for _, a := range rule.LHSArgs {
		if err := encodeTerm(w, a); err != nil {
			return err
		}
	}
	if err := encodeTerm(w, rule.RHS); err != nil {
		return err
	}
	return encodeString(w, rule.DeclModule)
}

func decodeRule(r *reader, head *symtab.Symbol) (*symtab.Rule, error) {
	arity, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	argCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	args := make([]term.Term, argCount)
	for i := range args {
		a, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	rhs, err := decodeTerm(r)
	if err != nil {
		return nil, err
	}
	declModule, err := r.readString()
	if err != nil {
		return nil, err
	}
	return &symtab.Rule{Head: head, Arity: arity, LHSArgs: args, RHS: rhs, DeclModule: declModule}, nil
}

// Encode serialises every symbol and rule of tab to a self-contained
// byte string.
func Encode(tab *symtab.Table) ([]byte, error) {
	var w bytes.Buffer
	symbols := tab.All()
	if err := encodeUint32(&w, len(symbols)); err != nil {
		return nil, err
	}
	for _, s := range symbols {
		if err := encodeString(&w, s.Module); err != nil {
			return nil, err
		}
		if err := encodeString(&w, s.Name); err != nil {
			return nil, err
		}
		if err := encodeTerm(&w, s.Type); err != nil {
			return nil, err
		}
		tag := tagStatic
		if s.Tag == symtab.Definable {
			tag = tagDefinable
		}
		if err := encodeUint8(&w, tag); err != nil {
			return nil, err
		}
		rules := tab.RulesOf(s)
		if err := encodeUint32(&w, len(rules)); err != nil {
			return nil, err
		}
		for _, r := range rules {
			if err := encodeRule(&w, r); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

// Decode rebuilds a fresh symbol table from bytes produced by Encode.
// Symbols are redeclared in the order Encode wrote them, which follows
// the table's map iteration and is not the declaration order; each
// symbol's rules are readmitted in their original order, so
// rule-ordering determinism (spec.md 4.2) is preserved.
func Decode(data []byte) (*symtab.Table, error) {
	r := &reader{data: data}
	tab := symtab.New()

	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		mod, err := r.readString()
		if err != nil {
			return nil, err
		}
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		typ, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		tag, err := r.readUint8()
		if err != nil {
			return nil, err
		}

		var sym *symtab.Symbol
		if tag == tagDefinable {
			sym, err = tab.DeclareDefinable(mod, name, typ)
		} else {
			sym, err = tab.DeclareStatic(mod, name, typ)
		}
		if err != nil {
			return nil, err
		}

		ruleCount, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		for j := 0; j < ruleCount; j++ {
			rule, err := decodeRule(r, sym)
			if err != nil {
				return nil, err
			}
			if err := tab.AdmitRule(sym, rule); err != nil {
				return nil, err
			}
		}
	}
	return tab, nil
}
