package engine

import (
	"context"
	"log/slog"

	"github.com/angeloszaimis/agent-gateway/internal/flow"
)

const (
	NameDialogue = "AutoGen"
	NameTask     = "CrewAI"
	NameFlow     = "LangGraph"
)

type Engine interface {
	Name() string
	Ping(ctx context.Context) error
}

// Dialogue simulates a multi-agent conversation about a task.
type Dialogue interface {
	Engine
	RunDialogue(ctx context.Context, task string) (string, error)
}

// Task simulates executing a task with a crew of agents.
type Task interface {
	Engine
	RunTask(ctx context.Context, task string) (string, error)
}

// Flow describes the orchestration graph of a task for visualization.
type Flow interface {
	Engine
	Visualize(ctx context.Context, taskID string) (flow.Graph, error)
}

// Set groups the engines the gateway dispatches to. Available is false when
// the set holds the dummy fallbacks. Callers check Available before running a
// task and answer with their own simulation text, so the dummies' run methods
// are only reached by direct calls; the dummy flow engine is still served.
type Set struct {
	Dialogue  Dialogue
	Task      Task
	Flow      Flow
	Available bool
}

// Load returns the simulated engines, or the dummy fallbacks when enabled is false.
func Load(enabled bool, log *slog.Logger) Set {
	if !enabled {
		log.Warn("AI engines are disabled; the gateway runs in simulation mode")
		return Set{
			Dialogue:  &dummyDialogue{},
			Task:      &dummyTask{},
			Flow:      &dummyFlow{},
			Available: false,
		}
	}

	return Set{
		Dialogue:  NewDialogueStub(log),
		Task:      NewTaskStub(log),
		Flow:      NewFlowStub(log),
		Available: true,
	}
}

// Engines lists the members of the set for iteration.
func (s Set) Engines() []Engine {
	return []Engine{s.Dialogue, s.Task, s.Flow}
}

// Ping checks every engine in the set and returns the first failure.
func (s Set) Ping(ctx context.Context) error {
	for _, e := range s.Engines() {
		if err := e.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}
