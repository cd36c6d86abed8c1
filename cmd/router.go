package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/angeloszaimis/agent-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/agent-gateway/internal/handler"
	"github.com/angeloszaimis/agent-gateway/internal/metrics"
)

type routerDeps struct {
	logger           *slog.Logger
	agentHandler     *handler.AgentHandler
	metricsCollector *metrics.Collector
	breakers         *circuitbreaker.Registry
	mcpHandler       http.Handler
	allowedOrigin    string
}

func setupRouter(deps routerDeps) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", deps.agentHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/run-dialogue-agent", deps.agentHandler.RunDialogueAgent).Methods(http.MethodPost)
	api.HandleFunc("/run-task-agent", deps.agentHandler.RunTaskAgent).Methods(http.MethodPost)
	api.HandleFunc("/flow/{taskId}", deps.agentHandler.FlowVisualization).Methods(http.MethodGet)

	r.HandleFunc("/metrics", deps.metricsCollector.Handler(deps.breakers.Stats)).Methods(http.MethodGet)

	if deps.mcpHandler != nil {
		r.PathPrefix("/mcp").Handler(withoutWriteDeadline(deps.mcpHandler))
	}

	return withRequestID(logRequests(deps.logger, enableCORS(deps.allowedOrigin, r)))
}
