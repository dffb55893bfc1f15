package rpcapi

import (
	"strings"
	"testing"

	"github.com/jhump/protoreflect/dynamic"

	"github.com/funvibe/lambdapi/internal/dispatch"
	"github.com/funvibe/lambdapi/internal/universe"
)

const natSrc = `
static Nat : Type.
static zero : Nat.
static succ : Nat -> Nat.
definable add : Nat -> Nat -> Nat.
rule add zero ?0 => ?0.
rule add (succ ?0) ?1 => succ (add ?0 ?1).
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	d := dispatch.New(universe.New(), 10000, nil, &strings.Builder{})
	if _, _, err := d.Load("nat", []byte(natSrc)); err != nil {
		t.Fatalf("loading nat: %v", err)
	}
	s, err := NewServer(d)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestServiceDescriptorHasThreeMethods(t *testing.T) {
	s := newTestServer(t)
	methods := s.sd.GetMethods()
	if len(methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(methods))
	}
}

func TestInferOverRPC(t *testing.T) {
	s := newTestServer(t)
	md := s.sd.FindMethodByName("Infer")
	req := dynamic.NewMessage(md.GetInputType())
	req.SetFieldByName("module", "nat")
	req.SetFieldByName("term", "add zero zero")
	resp := dynamic.NewMessage(md.GetOutputType())

	s.infer(req, resp)

	if errMsg, _ := resp.GetFieldByName("error").(string); errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	got, _ := resp.GetFieldByName("term").(string)
	if got != "nat.Nat" {
		t.Fatalf("expected inferred type nat.Nat, got %q", got)
	}
}

func TestEvalOverRPC(t *testing.T) {
	s := newTestServer(t)
	md := s.sd.FindMethodByName("Eval")
	req := dynamic.NewMessage(md.GetInputType())
	req.SetFieldByName("module", "nat")
	req.SetFieldByName("term", "add (succ zero) (succ zero)")
	req.SetFieldByName("mode", "snf")
	resp := dynamic.NewMessage(md.GetOutputType())

	s.eval(req, resp)

	if errMsg, _ := resp.GetFieldByName("error").(string); errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	got, _ := resp.GetFieldByName("term").(string)
	if got == "" {
		t.Fatal("expected a non-empty reduced term")
	}
}

func TestAssertOverRPC(t *testing.T) {
	s := newTestServer(t)
	md := s.sd.FindMethodByName("Assert")
	req := dynamic.NewMessage(md.GetInputType())
	req.SetFieldByName("module", "nat")
	req.SetFieldByName("left", "add zero (succ zero)")
	req.SetFieldByName("op", "equiv")
	req.SetFieldByName("right", "succ zero")
	resp := dynamic.NewMessage(md.GetOutputType())

	s.assert(req, resp)

	ok, _ := resp.GetFieldByName("ok").(bool)
	if !ok {
		msg, _ := resp.GetFieldByName("message").(string)
		t.Fatalf("expected assertion to hold, got message %q", msg)
	}
}

func TestAssertOverRPCReportsFailureWithoutError(t *testing.T) {
	s := newTestServer(t)
	md := s.sd.FindMethodByName("Assert")
	req := dynamic.NewMessage(md.GetInputType())
	req.SetFieldByName("module", "nat")
	req.SetFieldByName("left", "zero")
	req.SetFieldByName("op", "equiv")
	req.SetFieldByName("right", "succ zero")
	resp := dynamic.NewMessage(md.GetOutputType())

	s.assert(req, resp)

	ok, _ := resp.GetFieldByName("ok").(bool)
	if ok {
		t.Fatal("expected the assertion to fail")
	}
	msg, _ := resp.GetFieldByName("message").(string)
	if msg == "" {
		t.Fatal("expected a failure message")
	}
}
