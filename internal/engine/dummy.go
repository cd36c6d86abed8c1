package engine

import (
	"context"

	"github.com/angeloszaimis/agent-gateway/internal/flow"
)

// The dummies stand in for the engines when they are disabled. They never
// fail, so the gateway keeps answering in simulation mode.

type dummyDialogue struct{}

func (dummyDialogue) Name() string               { return NameDialogue }
func (dummyDialogue) Ping(context.Context) error { return nil }

func (dummyDialogue) RunDialogue(context.Context, string) (string, error) {
	return unavailable(NameDialogue), nil
}

type dummyTask struct{}

func (dummyTask) Name() string               { return NameTask }
func (dummyTask) Ping(context.Context) error { return nil }

func (dummyTask) RunTask(context.Context, string) (string, error) {
	return unavailable(NameTask), nil
}

type dummyFlow struct{}

func (dummyFlow) Name() string               { return NameFlow }
func (dummyFlow) Ping(context.Context) error { return nil }

func (dummyFlow) Visualize(context.Context, string) (flow.Graph, error) {
	return flow.Graph{
		Nodes: []flow.Node{{ID: "error", Data: flow.NodeData{Label: NameFlow + " not available"}}},
		Edges: []flow.Edge{},
	}, nil
}

func unavailable(name string) string {
	return name + " functionality not available in the current environment."
}
