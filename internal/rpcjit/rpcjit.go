// Package rpcjit is an alternative JIT host that ships a wrapped
// function's compiled bytecode IR to an out-of-process compile service
// over gRPC, building the request message dynamically from an in-memory
// .proto descriptor via protoreflect/desc/protoparse and
// protoreflect/dynamic — exactly the pattern the teacher's
// builtins_grpc.go uses to call arbitrary gRPC services without generated
// stubs.
//
// A Client satisfies internal/evaluate's JITHost, so a host can pass it to
// Evaluator.Eval in place of the in-process internal/jit engine; nothing in
// this module selects it automatically (internal/evalconfig's RemoteCompile
// and RemoteCompileThreshold are not read by any package). Running a real
// out-of-process compiler backend is out of scope (SPEC_FULL.md
// Non-goals); this package's responsibility ends at building the request,
// dialing, and decoding a response shaped like one — there is no bundled
// server.
package rpcjit

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/bytecode"
	"github.com/driftlang/drift/internal/codegen"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

func init() {
	gob.Register(&object.Nil{})
	gob.Register(&object.Bool{})
	gob.Register(&object.Int{})
	gob.Register(&object.Real{})
	gob.Register(&object.String{})
	gob.Register(&object.Symbol{})
	gob.Register(&object.Keyword{})
	gob.Register(&object.Vector{})
	gob.Register(&object.List{})
	gob.Register(&object.ArrayMap{})
	gob.Register(&object.HashMap{})
	gob.Register(&object.HashSet{})
	gob.Register(&codegen.Proto{})
}

const protoFile = "rpcjit.proto"

const protoSource = `syntax = "proto3";
package drift.rpcjit;

message CompileRequest {
  string module_name = 1;
  bytes chunk_ir = 2;
}

message CompileResponse {
  bytes result_ir = 1;
  string error = 2;
}
`

// Descriptors parses the in-memory .proto source and returns the
// CompileRequest/CompileResponse message descriptors, the same
// protoparse.Parser.ParseFiles call the teacher's grpcLoadProto makes
// against a file on disk — here the Accessor serves the source from
// memory instead, since this descriptor never needs to live on disk.
func Descriptors() (request, response *desc.MessageDescriptor, err error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, nil, fmt.Errorf("rpcjit: parse descriptor: %w", err)
	}
	fd := fds[0]
	request = fd.FindMessage("drift.rpcjit.CompileRequest")
	response = fd.FindMessage("drift.rpcjit.CompileResponse")
	if request == nil || response == nil {
		return nil, nil, fmt.Errorf("rpcjit: descriptor missing CompileRequest/CompileResponse")
	}
	return request, response, nil
}

// BuildRequest constructs the dynamic CompileRequest message for
// moduleName and an already-serialized chunk, mirroring the
// dynamic.NewMessage + SetFieldByName construction the teacher's
// grpcInvoke uses in place of a generated builder.
func BuildRequest(md *desc.MessageDescriptor, moduleName string, chunkIR []byte) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	if err := msg.TrySetFieldByName("module_name", moduleName); err != nil {
		return nil, fmt.Errorf("rpcjit: set module_name: %w", err)
	}
	if err := msg.TrySetFieldByName("chunk_ir", chunkIR); err != nil {
		return nil, fmt.Errorf("rpcjit: set chunk_ir: %w", err)
	}
	// dynamic.Message implements proto.Message; round-tripping through the
	// real marshaler here (instead of trusting TrySetFieldByName alone)
	// catches a malformed descriptor before it reaches the wire.
	if _, err := proto.Marshal(msg); err != nil {
		return nil, fmt.Errorf("rpcjit: marshal request: %w", err)
	}
	return msg, nil
}

// Client is a remote JITHost: same Compile signature
// internal/evaluate.JITHost expects, routing compilation to target over
// gRPC instead of running internal/codegen+internal/jit in-process.
type Client struct {
	target  string
	request *desc.MessageDescriptor
	reply   *desc.MessageDescriptor
}

// Dial prepares a Client for target. Building the grpc.ClientConn is
// lazy (grpc.NewClient does not block on connection setup), matching the
// teacher's builtinGrpcConnect.
func Dial(target string) (*Client, error) {
	req, resp, err := Descriptors()
	if err != nil {
		return nil, err
	}
	return &Client{target: target, request: req, reply: resp}, nil
}

// Compile lowers fn locally (internal/codegen is shared IR, not a
// recompile step) then ships the resulting chunk to the remote compiler,
// returning an entry point that performs one RPC per invocation. The entry
// point never returns a value: it reports a JITFailure carrying the
// response's error text when that field is set, and otherwise a JITFailure
// saying no compiler backend is available; result_ir is not read.
func (c *Client) Compile(fn *ast.Function, moduleName string, ctx *rt.Context) (func([]object.Object) (object.Object, error), error) {
	gen := codegen.New(fn, moduleName, codegen.TargetREPL, ctx)
	chunk, err := gen.Gen()
	if err != nil {
		return nil, evalerr.NewJITFailure(err, moduleName)
	}

	ir, err := encodeChunk(chunk)
	if err != nil {
		return nil, evalerr.NewJITFailure(err, moduleName)
	}

	reqMsg, err := BuildRequest(c.request, moduleName, ir)
	if err != nil {
		return nil, evalerr.NewJITFailure(err, moduleName)
	}

	conn, err := grpc.NewClient(c.target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, evalerr.NewJITFailure(err, moduleName)
	}

	return func([]object.Object) (object.Object, error) {
		respMsg := dynamic.NewMessage(c.reply)
		if err := conn.Invoke(context.Background(), "/drift.rpcjit.Compiler/Compile", reqMsg, respMsg); err != nil {
			return nil, evalerr.NewJITFailure(err, moduleName)
		}
		if errVal, err := respMsg.TryGetFieldByName("error"); err == nil {
			if s, ok := errVal.(string); ok && s != "" {
				return nil, evalerr.NewJITFailure(fmt.Errorf("%s", s), moduleName)
			}
		}
		return nil, evalerr.NewJITFailure(fmt.Errorf("rpcjit: remote execution requires a compiler backend"), moduleName)
	}, nil
}

func encodeChunk(chunk *bytecode.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(chunk); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
