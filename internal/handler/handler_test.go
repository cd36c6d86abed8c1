package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/agent-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/agent-gateway/internal/dispatch"
	"github.com/angeloszaimis/agent-gateway/internal/engine"
	"github.com/angeloszaimis/agent-gateway/internal/flow"
	"github.com/angeloszaimis/agent-gateway/internal/handler"
	"github.com/angeloszaimis/agent-gateway/internal/metrics"
	"github.com/angeloszaimis/agent-gateway/internal/routing"
)

type staticAvailability bool

func (s staticAvailability) Available() bool { return bool(s) }

var _ = Describe("Handler", func() {
	var (
		h         *handler.AgentHandler
		log       *slog.Logger
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	newHandler := func(enginesEnabled bool) *handler.AgentHandler {
		breakers := circuitbreaker.NewRegistry(circuitbreaker.Settings{
			MaxRequests:      1,
			Timeout:          time.Second,
			FailureThreshold: 3,
		}, log)
		strat := routing.NewKeywordStrategy([]string{"discuss", "idea", "conversation"})
		d := dispatch.NewDispatcher(strat, engine.Load(enginesEnabled, log), breakers, log)
		return handler.NewAgentHandler(log, d, staticAvailability(enginesEnabled), collector, 0)
	}

	post := func(fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/run", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	decodeRun := func(w *httptest.ResponseRecorder) dispatch.Response {
		var resp dispatch.Response
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
		collector.Start(ctx)
		h = newHandler(true)
	})

	AfterEach(func() {
		cancel()
	})

	Describe("Health", func() {
		It("should report ok with engine availability", func() {
			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"status":"ok","engines_available":true}`))
		})

		It("should report unavailable engines", func() {
			h = newHandler(false)
			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"status":"ok","engines_available":false}`))
		})
	})

	Describe("RunDialogueAgent", func() {
		It("should route dialogue keywords to the dialogue engine", func() {
			w := post(h.RunDialogueAgent, `{"task":"let's discuss an idea"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

			resp := decodeRun(w)
			Expect(resp.AgentUsed).To(Equal("AutoGen"))
			Expect(resp.Result).To(ContainSubstring("let's discuss an idea"))
			Expect(resp.FlowUpdate.Nodes).NotTo(BeEmpty())
			Expect(resp.FlowUpdate.Edges).NotTo(BeEmpty())
		})

		It("should fall back to the task engine for other text", func() {
			resp := decodeRun(post(h.RunDialogueAgent, `{"task":"compile the quarterly report"}`))
			Expect(resp.AgentUsed).To(Equal("CrewAI (Fallback)"))
		})

		It("should answer with simulation text when engines are unavailable", func() {
			h = newHandler(false)
			resp := decodeRun(post(h.RunDialogueAgent, `{"task":"discuss pricing"}`))

			Expect(resp.AgentUsed).To(Equal("AutoGen"))
			Expect(resp.Result).To(Equal("AutoGen engine not available. Simulation: AutoGen would process: discuss pricing"))
		})

		It("should record the selection in metrics", func() {
			post(h.RunDialogueAgent, `{"task":"discuss pricing"}`)

			Eventually(func() int64 {
				return collector.Snapshot().Agents["AutoGen"].Selections
			}).Should(Equal(int64(1)))
			Eventually(func() int64 {
				return collector.Snapshot().Routes[dispatch.RouteDialogue].StatusCodes[http.StatusOK]
			}).Should(Equal(int64(1)))
		})
	})

	Describe("RunTaskAgent", func() {
		It("should run the task engine", func() {
			resp := decodeRun(post(h.RunTaskAgent, `{"task":"deploy to staging"}`))

			Expect(resp.AgentUsed).To(Equal("CrewAI"))
			Expect(resp.Result).To(Equal("CrewAI (simulated): task 'deploy to staging' executed successfully. Result: X, Y, Z."))
			Expect(resp.FlowUpdate.Nodes[0].ID).To(Equal("task1"))
		})

		It("should use the dialogue engine as fallback for dialogue text", func() {
			resp := decodeRun(post(h.RunTaskAgent, `{"task":"start a conversation"}`))
			Expect(resp.AgentUsed).To(Equal("AutoGen (Fallback)"))
		})

		It("should reference existing nodes from every edge", func() {
			resp := decodeRun(post(h.RunTaskAgent, `{"task":"deploy to staging"}`))
			Expect(resp.FlowUpdate.Validate()).To(Succeed())
		})
	})

	DescribeTable("rejecting requests without a task",
		func(body string) {
			for _, fn := range []http.HandlerFunc{h.RunDialogueAgent, h.RunTaskAgent} {
				w := post(fn, body)
				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(w.Body.String()).To(MatchJSON(`{"error":"no task provided"}`))
			}
		},
		Entry("empty body", ""),
		Entry("empty object", `{}`),
		Entry("empty task", `{"task":""}`),
		Entry("blank task", `{"task":"   "}`),
		Entry("malformed JSON", `{"task":`),
		Entry("wrong type", `{"task":42}`),
	)

	It("should reject oversized bodies", func() {
		body := `{"task":"` + strings.Repeat("a", 2<<20) + `"}`
		w := post(h.RunTaskAgent, body)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Describe("FlowVisualization", func() {
		visualize := func(h *handler.AgentHandler, taskID string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/flow/"+taskID, nil)
			req = mux.SetURLVars(req, map[string]string{"taskId": taskID})
			w := httptest.NewRecorder()
			h.FlowVisualization(w, req)
			return w
		}

		It("should return the flow engine graph", func() {
			w := visualize(h, "42")
			Expect(w.Code).To(Equal(http.StatusOK))

			var g flow.Graph
			Expect(json.Unmarshal(w.Body.Bytes(), &g)).To(Succeed())
			Expect(g.Nodes).To(HaveLen(4))
			Expect(g.Validate()).To(Succeed())
		})

		It("should return the error graph when engines are unavailable", func() {
			w := visualize(newHandler(false), "42")
			Expect(w.Code).To(Equal(http.StatusOK))

			var g flow.Graph
			Expect(json.Unmarshal(w.Body.Bytes(), &g)).To(Succeed())
			Expect(g.Nodes).To(HaveLen(1))
			Expect(g.Edges).To(BeEmpty())
		})
	})
})
