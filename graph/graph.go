// Package graph implements the Graph Engine (§4.1, §5): a single entry
// node ("supervisor"), one node per registered worker with an edge back to
// the supervisor, and a conditional edge driven by state.Next (§3.5). The
// engine is single-threaded and cooperative per request — it is grounded
// on the node/edge shape of goadesign-goa-ai's engine.Engine but
// deliberately drops that engine's deterministic-replay workflow model:
// no durable distributed execution is in scope here.
package graph

import (
	"context"
	"fmt"

	"github.com/supervisorrt/orchestrator/state"
)

// NodeFunc executes one graph node given the current state, returning a
// partial update for the reducer. The supervisor node and every worker node
// share this signature.
type NodeFunc func(ctx context.Context, s state.SupervisorState) (state.Update, error)

// StepUpdate is emitted after every node runs, the update stream consumed
// by service.RunStream to produce progress events (§4.1, §6.1). Merged is
// the full state immediately after this node's update was applied.
type StepUpdate struct {
	Node   string
	Update state.Update
	Merged state.SupervisorState
}

// Graph is the compiled node/edge set for one run: a supervisor node plus
// one node per worker. Edges are implicit: supervisor -> (worker named by
// state.Next) -> supervisor -> ... until state.Next == state.Finish.
type Graph struct {
	Supervisor NodeFunc
	Workers    map[string]NodeFunc
}

// New returns a Graph wired with the given supervisor node and worker
// nodes keyed by worker name.
func New(supervisor NodeFunc, workers map[string]NodeFunc) *Graph {
	return &Graph{Supervisor: supervisor, Workers: workers}
}

// Run executes the graph to completion starting from initial, invoking
// onUpdate after every node with the node's name and the update it
// produced. Cancellation is cooperative: a cancelled ctx is honored after
// the in-flight node finishes, never by preempting mid-call (§5).
func (g *Graph) Run(ctx context.Context, initial state.SupervisorState, onUpdate func(StepUpdate)) (state.SupervisorState, error) {
	current := initial
	node := "supervisor"

	for {
		fn, err := g.resolve(node)
		if err != nil {
			return current, err
		}

		update, err := fn(ctx, current)
		if err != nil {
			return current, fmt.Errorf("graph: node %q: %w", node, err)
		}
		current = state.Reduce(current, update)
		if onUpdate != nil {
			onUpdate(StepUpdate{Node: node, Update: update, Merged: current})
		}

		if err := ctx.Err(); err != nil {
			return current, err
		}

		if node == "supervisor" {
			if current.Next == "" || current.Next == state.Finish {
				return current, nil
			}
			node = current.Next
			continue
		}
		node = "supervisor"
	}
}

func (g *Graph) resolve(node string) (NodeFunc, error) {
	if node == "supervisor" {
		if g.Supervisor == nil {
			return nil, fmt.Errorf("graph: no supervisor node configured")
		}
		return g.Supervisor, nil
	}
	fn, ok := g.Workers[node]
	if !ok {
		return nil, fmt.Errorf("graph: no node registered for worker %q", node)
	}
	return fn, nil
}
