package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angeloszaimis/agent-gateway/internal/flow"
)

type dialogueStub struct {
	logger *slog.Logger
}

func NewDialogueStub(logger *slog.Logger) Dialogue {
	return &dialogueStub{logger: logger.With(slog.String("engine", NameDialogue))}
}

func (d *dialogueStub) Name() string { return NameDialogue }

func (d *dialogueStub) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (d *dialogueStub) RunDialogue(ctx context.Context, task string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.logger.Debug("Received dialogue task", slog.String("task", task))
	response := fmt.Sprintf("%s (simulated): discussion about '%s' finished. Key points: A, B, C.", NameDialogue, task)
	d.logger.Debug("Simulated response", slog.String("response", response))

	return response, nil
}

type taskStub struct {
	logger *slog.Logger
}

func NewTaskStub(logger *slog.Logger) Task {
	return &taskStub{logger: logger.With(slog.String("engine", NameTask))}
}

func (t *taskStub) Name() string { return NameTask }

func (t *taskStub) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (t *taskStub) RunTask(ctx context.Context, task string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.logger.Debug("Received execution task", slog.String("task", task))
	response := fmt.Sprintf("%s (simulated): task '%s' executed successfully. Result: X, Y, Z.", NameTask, task)
	t.logger.Debug("Simulated response", slog.String("response", response))

	return response, nil
}

type flowStub struct {
	logger *slog.Logger
}

func NewFlowStub(logger *slog.Logger) Flow {
	return &flowStub{logger: logger.With(slog.String("engine", NameFlow))}
}

func (f *flowStub) Name() string { return NameFlow }

func (f *flowStub) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (f *flowStub) Visualize(ctx context.Context, taskID string) (flow.Graph, error) {
	if err := ctx.Err(); err != nil {
		return flow.Graph{}, err
	}

	f.logger.Debug("Visualization requested", slog.String("task_id", taskID))

	return flow.Graph{
		Nodes: []flow.Node{
			{ID: "start", Type: flow.NodeTypeInput, Data: flow.NodeData{Label: "Task start"}, Position: flow.Position{X: 50, Y: 50}},
			{ID: "agent1", Data: flow.NodeData{Label: "Analysis agent"}, Position: flow.Position{X: 250, Y: 50}},
			{ID: "agent2", Data: flow.NodeData{Label: "Execution agent"}, Position: flow.Position{X: 250, Y: 150}},
			{ID: "end", Type: flow.NodeTypeOutput, Data: flow.NodeData{Label: "Task end"}, Position: flow.Position{X: 450, Y: 100}},
		},
		Edges: []flow.Edge{
			{ID: "e_start_agent1", Source: "start", Target: "agent1", Animated: true},
			{ID: "e_agent1_agent2", Source: "agent1", Target: "agent2", Label: "if analysis OK"},
			{ID: "e_agent2_end", Source: "agent2", Target: "end"},
		},
	}, nil
}
