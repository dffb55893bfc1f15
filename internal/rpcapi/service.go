// Package rpcapi is the gRPC front end of spec.md 4.10: three RPCs,
// Infer/Eval/Assert, mirroring the infer/eval/assert directives of
// spec.md 6. Following internal/evaluator/builtins_grpc.go's exact
// pattern, request/response wire types are not protoc-generated -- the
// service embeds a .proto source string, parses it at construction
// time with github.com/jhump/protoreflect/desc/protoparse, and
// exchanges github.com/jhump/protoreflect/dynamic messages built
// from the resulting descriptor, registered onto a *grpc.Server via
// a hand-built grpc.ServiceDesc exactly as builtinGrpcRegister does.
package rpcapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/funvibe/lambdapi/internal/check"
	"github.com/funvibe/lambdapi/internal/convert"
	"github.com/funvibe/lambdapi/internal/dispatch"
	"github.com/funvibe/lambdapi/internal/reduce"
	"github.com/funvibe/lambdapi/internal/surface"
	"github.com/funvibe/lambdapi/internal/term"
	"github.com/funvibe/lambdapi/internal/token"
	"github.com/funvibe/lambdapi/pkg/ids"
)

const protoSource = `syntax = "proto3";
package lambdapi;

message TermRequest {
  string module = 1;
  string term = 2;
}

message TermResponse {
  string term = 1;
  string error = 2;
  string request_id = 3;
}

message EvalRequest {
  string module = 1;
  string term = 2;
  string mode = 3;
}

message AssertRequest {
  string module = 1;
  string left = 2;
  string op = 3;
  string right = 4;
  bool warn = 5;
}

message AssertResponse {
  bool ok = 1;
  string message = 2;
  string request_id = 3;
}

service LambdaPi {
  rpc Infer(TermRequest) returns (TermResponse);
  rpc Eval(EvalRequest) returns (TermResponse);
  rpc Assert(AssertRequest) returns (AssertResponse);
}
`

// Server implements the LambdaPi gRPC service over one Dispatcher.
// Every RPC is funnelled through mu, matching spec.md 5's
// single-threaded-core invariant even though grpc-go serves
// connections concurrently.
type Server struct {
	mu sync.Mutex
	d  *dispatch.Dispatcher
	fd *desc.FileDescriptor
	sd *desc.ServiceDescriptor
}

// NewServer parses the embedded proto source and binds it to d.
func NewServer(d *dispatch.Dispatcher) (*Server, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{"lambdapi.proto": protoSource}),
	}
	fds, err := parser.ParseFiles("lambdapi.proto")
	if err != nil {
		return nil, fmt.Errorf("rpcapi: parsing embedded proto: %w", err)
	}
	fd := fds[0]
	sd := fd.FindService("lambdapi.LambdaPi")
	if sd == nil {
		return nil, fmt.Errorf("rpcapi: service lambdapi.LambdaPi not found in embedded proto")
	}
	return &Server{d: d, fd: fd, sd: sd}, nil
}

// Register wires the service onto gs, grounded on
// builtinGrpcRegister's ServiceDesc-from-descriptor construction.
func (s *Server) Register(gs *grpc.Server) {
	serviceDesc := &grpc.ServiceDesc{
		ServiceName: s.sd.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    s.fd.GetName(),
	}
	for _, method := range s.sd.GetMethods() {
		md := method
		serviceDesc.Methods = append(serviceDesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(_ interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				return s.handleUnary(ctx, md, dec)
			},
		})
	}
	gs.RegisterService(serviceDesc, s)
}

func (s *Server) handleUnary(_ context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	req := dynamic.NewMessage(md.GetInputType())
	if err := dec(req); err != nil {
		return nil, err
	}
	resp := dynamic.NewMessage(md.GetOutputType())

	s.mu.Lock()
	defer s.mu.Unlock()

	switch md.GetName() {
	case "Infer":
		s.infer(req, resp)
	case "Eval":
		s.eval(req, resp)
	case "Assert":
		s.assert(req, resp)
	default:
		return nil, fmt.Errorf("rpcapi: unknown method %s", md.GetName())
	}
	// request_id has no bearing on the result; it's a correlation token
	// for callers that log or retry across a stream of calls sharing
	// this Server's connection.
	_ = resp.TrySetFieldByName("request_id", ids.New())
	return resp, nil
}

func stringField(m *dynamic.Message, name string) string {
	v, _ := m.GetFieldByName(name).(string)
	return v
}

func boolField(m *dynamic.Message, name string) bool {
	v, _ := m.GetFieldByName(name).(bool)
	return v
}

func (s *Server) parseAndBuild(module, termSrc string) (term.Term, error) {
	resolve, err := s.d.ResolverFor(module)
	if err != nil {
		return nil, err
	}
	e, err := surface.ParseTermString("<rpc>", termSrc)
	if err != nil {
		return nil, err
	}
	return surface.Build(e, nil, resolve)
}

func (s *Server) infer(req, resp *dynamic.Message) {
	t, err := s.parseAndBuild(stringField(req, "module"), stringField(req, "term"))
	if err != nil {
		_ = resp.TrySetFieldByName("error", err.Error())
		return
	}
	typ, err := check.Infer(check.Empty(), t, s.d.U, token.Position{})
	if err != nil {
		_ = resp.TrySetFieldByName("error", err.Error())
		return
	}
	_ = resp.TrySetFieldByName("term", reduce.Snf(typ, s.d.U).String())
}

func (s *Server) eval(req, resp *dynamic.Message) {
	module := stringField(req, "module")
	t, err := s.parseAndBuild(module, stringField(req, "term"))
	if err != nil {
		_ = resp.TrySetFieldByName("error", err.Error())
		return
	}
	if _, err := check.Infer(check.Empty(), t, s.d.U, token.Position{}); err != nil {
		_ = resp.TrySetFieldByName("error", err.Error())
		return
	}
	mode := reduce.ModeSnf
	if stringField(req, "mode") == "whnf" {
		mode = reduce.ModeWhnf
	}
	evaled, err := reduce.Reduce(t, s.d.U, reduce.Config{Mode: mode, StepBudget: s.d.StepBudget}, token.Position{})
	if err != nil {
		_ = resp.TrySetFieldByName("error", err.Error())
		return
	}
	_ = resp.TrySetFieldByName("term", evaled.String())
}

func (s *Server) assert(req, resp *dynamic.Message) {
	module := stringField(req, "module")
	resolve, err := s.d.ResolverFor(module)
	if err != nil {
		_ = resp.TrySetFieldByName("message", err.Error())
		return
	}
	leftExpr, err := surface.ParseTermString("<rpc>", stringField(req, "left"))
	if err != nil {
		_ = resp.TrySetFieldByName("message", err.Error())
		return
	}
	left, err := surface.Build(leftExpr, nil, resolve)
	if err != nil {
		_ = resp.TrySetFieldByName("message", err.Error())
		return
	}
	rightExpr, err := surface.ParseTermString("<rpc>", stringField(req, "right"))
	if err != nil {
		_ = resp.TrySetFieldByName("message", err.Error())
		return
	}
	right, err := surface.Build(rightExpr, nil, resolve)
	if err != nil {
		_ = resp.TrySetFieldByName("message", err.Error())
		return
	}

	var failErr error
	switch stringField(req, "op") {
	case "equiv":
		if !convert.EqModulo(left, right, s.d.U) {
			failErr = fmt.Errorf("assert: %s is not convertible with %s", left, right)
		}
	case "hastype":
		failErr = check.Check(check.Empty(), left, right, s.d.U, token.Position{})
	default:
		failErr = fmt.Errorf("assert: unknown op %q, expected \"equiv\" or \"hastype\"", stringField(req, "op"))
	}

	if failErr != nil {
		msg := failErr.Error()
		if boolField(req, "warn") {
			msg = "warning: " + msg
		}
		_ = resp.TrySetFieldByName("ok", false)
		_ = resp.TrySetFieldByName("message", msg)
		return
	}
	_ = resp.TrySetFieldByName("ok", true)
	_ = resp.TrySetFieldByName("message", "")
}
