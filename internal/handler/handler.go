package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/angeloszaimis/agent-gateway/internal/dispatch"
	"github.com/angeloszaimis/agent-gateway/internal/metrics"
)

const maxBodyBytes = 1 << 20

const (
	routeHealth = "health"
	routeFlow   = "flow"
)

// Availability reports whether the engines can serve real answers.
type Availability interface {
	Available() bool
}

type runRequest struct {
	Task string `json:"task"`
}

type healthResponse struct {
	Status           string `json:"status"`
	EnginesAvailable bool   `json:"engines_available"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type AgentHandler struct {
	logger           *slog.Logger
	dispatcher       *dispatch.Dispatcher
	availability     Availability
	metricsCollector *metrics.Collector
	dialogue         dispatch.Route
	task             dispatch.Route
}

func NewAgentHandler(
	logger *slog.Logger,
	dispatcher *dispatch.Dispatcher,
	availability Availability,
	collector *metrics.Collector,
	maxExtraSteps int,
) *AgentHandler {
	return &AgentHandler{
		logger:           logger,
		dispatcher:       dispatcher,
		availability:     availability,
		metricsCollector: collector,
		dialogue:         dispatch.DialogueRoute(maxExtraSteps),
		task:             dispatch.TaskRoute(maxExtraSteps),
	}
}

func (h *AgentHandler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.emitReceived(routeHealth)

	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "ok",
		EnginesAvailable: h.availability.Available(),
	})

	h.emitCompleted(routeHealth, start, http.StatusOK)
}

func (h *AgentHandler) RunDialogueAgent(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.dialogue)
}

func (h *AgentHandler) RunTaskAgent(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.task)
}

// FlowVisualization returns the graph the flow engine draws for a task id.
func (h *AgentHandler) FlowVisualization(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.emitReceived(routeFlow)

	taskID := mux.Vars(r)["taskId"]
	flowEngine := h.dispatcher.Engines().Flow

	graph, err := flowEngine.Visualize(r.Context(), taskID)
	if err != nil {
		h.logger.Error("Flow visualization failed",
			slog.String("task_id", taskID),
			slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "flow visualization failed")
		h.emitCompleted(routeFlow, start, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, graph)
	h.emitCompleted(routeFlow, start, http.StatusOK)
}

func (h *AgentHandler) run(w http.ResponseWriter, r *http.Request, route dispatch.Route) {
	start := time.Now()
	h.emitReceived(route.Name)

	task, err := decodeTask(w, r)
	if err != nil {
		h.logger.Info("Rejected run request",
			slog.String("route", route.Name),
			slog.Any("err", err))
		writeError(w, http.StatusBadRequest, dispatch.ErrNoTask.Error())
		h.emitCompleted(route.Name, start, http.StatusBadRequest)
		return
	}

	resp, outcome, err := h.dispatcher.Run(r.Context(), route, task)
	switch {
	case errors.Is(err, dispatch.ErrNoTask):
		writeError(w, http.StatusBadRequest, err.Error())
		h.emitCompleted(route.Name, start, http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("Agent run failed",
			slog.String("route", route.Name),
			slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "agent run failed")
		h.emitCompleted(route.Name, start, http.StatusInternalServerError)
		return
	}

	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:      metrics.EventAgentSelected,
		Timestamp: time.Now(),
		Route:     route.Name,
		Agent:     outcome.AgentUsed,
		Degraded:  outcome.Degraded,
	})

	h.logger.Info("Agent run completed",
		slog.String("route", route.Name),
		slog.String("path", outcome.Path.String()),
		slog.String("agent", outcome.AgentUsed),
		slog.Bool("degraded", outcome.Degraded))

	writeJSON(w, http.StatusOK, resp)
	h.emitCompleted(route.Name, start, http.StatusOK)
}

// decodeTask reads the task of a run request; any decoding failure counts as a missing task.
func decodeTask(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	if strings.TrimSpace(req.Task) == "" {
		return "", dispatch.ErrNoTask
	}

	return req.Task, nil
}

func (h *AgentHandler) emitReceived(route string) {
	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Route:     route,
	})
}

func (h *AgentHandler) emitCompleted(route string, start time.Time, status int) {
	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Route:      route,
		Duration:   time.Since(start),
		StatusCode: status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
