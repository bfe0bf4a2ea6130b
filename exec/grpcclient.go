package exec

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCServiceClient dispatches a Fetch to a subgraph over a plain gRPC
// connection. Subgraphs aren't code-generated from a .proto file here —
// schema composition (and the codegen that would normally follow it) is
// out of scope for the planner — so the request/response is carried as a
// structpb.Struct, the generic protobuf value type, keyed like a GraphQL
// response: {"query": ..., "variables": {...}} in, {"data": {...}} out.
type GRPCServiceClient struct {
	Conn   *grpc.ClientConn
	Method string
}

func (c *GRPCServiceClient) Execute(ctx context.Context, query string, variables map[string]interface{}) (map[string]interface{}, error) {
	varStruct, err := structpb.NewStruct(variables)
	if err != nil {
		return nil, fmt.Errorf("encoding variables: %w", err)
	}

	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"query":     structpb.NewStringValue(query),
		"variables": structpb.NewStructValue(varStruct),
	}}

	resp := new(structpb.Struct)
	if err := c.Conn.Invoke(ctx, c.Method, req, resp); err != nil {
		return nil, fmt.Errorf("invoking %s: %w", c.Method, err)
	}

	data, ok := resp.Fields["data"]
	if !ok {
		return nil, errors.New("exec: response missing \"data\" field")
	}
	return data.GetStructValue().AsMap(), nil
}
