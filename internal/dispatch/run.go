package dispatch

import (
	"context"
	"fmt"

	"github.com/angeloszaimis/agent-gateway/internal/flow"
	"github.com/angeloszaimis/agent-gateway/internal/routing"
)

const (
	RouteDialogue = "run-dialogue-agent"
	RouteTask     = "run-task-agent"
)

// Route binds an entry point to the path it serves and the builder drawing its flow.
type Route struct {
	Name    string
	Home    routing.Path
	Builder *flow.Builder
}

// Response is the payload returned for every agent run.
type Response struct {
	Result     string     `json:"result"`
	AgentUsed  string     `json:"agent_used"`
	FlowUpdate flow.Graph `json:"flow_update"`
}

func DialogueRoute(maxExtraSteps int) Route {
	return Route{
		Name:    RouteDialogue,
		Home:    routing.PathDialogue,
		Builder: flow.NewBuilder("", "Start", maxExtraSteps),
	}
}

func TaskRoute(maxExtraSteps int) Route {
	return Route{
		Name:    RouteTask,
		Home:    routing.PathTask,
		Builder: flow.NewBuilder("task", "Task", maxExtraSteps),
	}
}

// Run dispatches task for route and draws the flow update of the outcome.
func (d *Dispatcher) Run(ctx context.Context, route Route, task string) (Response, Outcome, error) {
	outcome, err := d.Dispatch(ctx, route.Home, task)
	if err != nil {
		return Response{}, Outcome{}, err
	}

	graph := route.Builder.Build(task, outcome.AgentUsed, outcome.Result)
	if err := graph.Validate(); err != nil {
		return Response{}, outcome, fmt.Errorf("build flow update for %s: %w", route.Name, err)
	}

	return Response{
		Result:     outcome.Result,
		AgentUsed:  outcome.AgentUsed,
		FlowUpdate: graph,
	}, outcome, nil
}
