package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/angeloszaimis/agent-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/agent-gateway/internal/engine"
	"github.com/angeloszaimis/agent-gateway/internal/routing"
)

var ErrNoTask = errors.New("no task provided")

const fallbackSuffix = " (Fallback)"

// Outcome is what a dispatch produced for one task.
type Outcome struct {
	Path      routing.Path
	AgentUsed string
	Result    string
	// Degraded is set when the engine was skipped or failed and Result holds simulation text.
	Degraded bool
}

type Dispatcher struct {
	strategy routing.Strategy
	engines  engine.Set
	breakers *circuitbreaker.Registry
	logger   *slog.Logger
}

func NewDispatcher(strategy routing.Strategy, engines engine.Set, breakers *circuitbreaker.Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		strategy: strategy,
		engines:  engines,
		breakers: breakers,
		logger:   logger,
	}
}

// Dispatch routes task to an engine. home is the path the caller's route
// serves; picking the other path labels the agent as a fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, home routing.Path, task string) (Outcome, error) {
	if strings.TrimSpace(task) == "" {
		return Outcome{}, ErrNoTask
	}

	path := d.strategy.Select(task)

	if m, ok := d.strategy.(interface{ Matched(string) (string, bool) }); ok {
		if kw, found := m.Matched(task); found {
			d.logger.Debug("Task matched dialogue keyword", slog.String("keyword", kw))
		}
	}

	var (
		name string
		run  func() (string, error)
		sim  string
	)

	switch path {
	case routing.PathDialogue:
		name = d.engines.Dialogue.Name()
		run = func() (string, error) { return d.engines.Dialogue.RunDialogue(ctx, task) }
		sim = fmt.Sprintf("%s engine not available. Simulation: %s would process: %s", name, name, task)
	default:
		path = routing.PathTask
		name = d.engines.Task.Name()
		run = func() (string, error) { return d.engines.Task.RunTask(ctx, task) }
		sim = fmt.Sprintf("%s engine not available. Simulation: %s would execute: %s", name, name, task)
	}

	outcome := Outcome{
		Path:      path,
		AgentUsed: name,
	}
	if path != home {
		outcome.AgentUsed += fallbackSuffix
	}

	if !d.engines.Available {
		outcome.Result = sim
		outcome.Degraded = true
		return outcome, nil
	}

	result, err := d.breakers.Execute(name, run)
	if err != nil {
		d.logger.Warn("Engine call failed, answering with simulation",
			slog.String("engine", name),
			slog.Any("err", err))
		outcome.Result = sim
		outcome.Degraded = true
		return outcome, nil
	}

	outcome.Result = result
	return outcome, nil
}

// Engines returns the engine set dispatched to.
func (d *Dispatcher) Engines() engine.Set {
	return d.engines
}
