// Package exec is a reference consumer of the planner's executor contract
// (spec §6): it walks a QueryPlan and dispatches Fetch nodes to whatever
// ServiceClient is registered for each service, honoring Sequence/Parallel
// scheduling. It is not a production execution engine — result merging at
// Flatten boundaries is simplified, since the real shape of that merge
// depends on the wire format a subgraph actually speaks: a Flatten runs its
// child without walking Path, and every fetch's data is merged into the top
// level of the result. The query text handed to a ServiceClient is the
// Fetch's serialized plan form (queryplanner.Serialize), not a GraphQL
// document.
package exec

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thunderql/queryplanner"
	"github.com/thunderql/queryplanner/logger"
)

// ServiceClient issues one GraphQL request to a subgraph and returns its
// "data" object.
type ServiceClient interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (map[string]interface{}, error)
}

// Executor dispatches a QueryPlan against a fixed set of subgraph clients.
type Executor struct {
	Services map[string]ServiceClient
	Logger   logger.Logger

	mu sync.Mutex // guards result against concurrent Parallel branches
}

// Run executes plan against variables and returns the merged result. Each
// invocation is tagged with a fresh request id, included in every log line
// this run emits, so dispatch events for concurrent plans aren't interleaved
// in logs without a way to tell them apart.
func (e *Executor) Run(ctx context.Context, plan *queryplanner.QueryPlan, variables map[string]interface{}) (map[string]interface{}, error) {
	requestID := uuid.New().String()
	result := make(map[string]interface{})
	if plan.Node == nil {
		return result, nil
	}
	if err := e.execNode(ctx, plan.Node, result, variables, requestID); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Executor) execNode(ctx context.Context, node queryplanner.PlanNode, result map[string]interface{}, variables map[string]interface{}, requestID string) error {
	switch n := node.(type) {
	case *queryplanner.Fetch:
		return e.execFetch(ctx, n, result, variables, requestID)
	case *queryplanner.Flatten:
		return e.execFlatten(ctx, n, result, variables, requestID)
	case *queryplanner.Sequence:
		for _, c := range n.Nodes {
			if err := e.execNode(ctx, c, result, variables, requestID); err != nil {
				return err
			}
		}
		return nil
	case *queryplanner.Parallel:
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range n.Nodes {
			c := c
			g.Go(func() error { return e.execNode(gctx, c, result, variables, requestID) })
		}
		return g.Wait()
	default:
		return fmt.Errorf("exec: unknown plan node %T", node)
	}
}

func (e *Executor) execFetch(ctx context.Context, f *queryplanner.Fetch, result map[string]interface{}, variables map[string]interface{}, requestID string) error {
	client, ok := e.Services[f.Service]
	if !ok {
		return fmt.Errorf("exec: no client registered for service %q", f.Service)
	}

	fetchVars := make(map[string]interface{}, len(f.VariableUsages))
	for _, name := range f.VariableUsages {
		if v, ok := variables[name]; ok {
			fetchVars[name] = v
		}
	}

	if e.Logger != nil {
		e.Logger.Info("dispatching fetch", "request", requestID, "service", f.Service)
	}

	data, err := client.Execute(ctx, queryplanner.Serialize(&queryplanner.QueryPlan{Node: f}), fetchVars)
	if err != nil {
		return fmt.Errorf("exec: fetch to %s (request %s): %w", f.Service, requestID, err)
	}

	e.mu.Lock()
	mergeInto(result, data)
	e.mu.Unlock()
	return nil
}

func (e *Executor) execFlatten(ctx context.Context, fl *queryplanner.Flatten, result map[string]interface{}, variables map[string]interface{}, requestID string) error {
	return e.execNode(ctx, fl.Node, result, variables, requestID)
}

func mergeInto(dst, src map[string]interface{}) {
	for k, v := range src {
		dst[k] = v
	}
}
