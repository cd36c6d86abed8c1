package dispatch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/agent-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/agent-gateway/internal/dispatch"
	"github.com/angeloszaimis/agent-gateway/internal/engine"
	"github.com/angeloszaimis/agent-gateway/internal/routing"
)

type failingTask struct {
	calls int
}

func (f *failingTask) Name() string                   { return engine.NameTask }
func (f *failingTask) Ping(ctx context.Context) error { return nil }

func (f *failingTask) RunTask(context.Context, string) (string, error) {
	f.calls++
	return "", errors.New("crew unavailable")
}

var _ = Describe("Dispatcher", func() {
	var (
		log      *slog.Logger
		ctx      context.Context
		breakers *circuitbreaker.Registry
		d        *dispatch.Dispatcher
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx = context.Background()
		breakers = circuitbreaker.NewRegistry(circuitbreaker.Settings{
			MaxRequests:      1,
			Timeout:          time.Minute,
			FailureThreshold: 2,
		}, log)
		strat := routing.NewKeywordStrategy([]string{"discuss", "idea", "conversation"})
		d = dispatch.NewDispatcher(strat, engine.Load(true, log), breakers, log)
	})

	Describe("Dispatch", func() {
		It("should reject an empty task", func() {
			_, err := d.Dispatch(ctx, routing.PathDialogue, "")
			Expect(err).To(MatchError(dispatch.ErrNoTask))
		})

		It("should reject a blank task", func() {
			_, err := d.Dispatch(ctx, routing.PathTask, "   \n")
			Expect(err).To(MatchError(dispatch.ErrNoTask))
		})

		DescribeTable("agent labels",
			func(home routing.Path, task string, path routing.Path, agent string) {
				out, err := d.Dispatch(ctx, home, task)
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Path).To(Equal(path))
				Expect(out.AgentUsed).To(Equal(agent))
				Expect(out.Degraded).To(BeFalse())
			},
			Entry("dialogue route, dialogue text", routing.PathDialogue, "let's discuss an idea", routing.PathDialogue, "AutoGen"),
			Entry("dialogue route, task text", routing.PathDialogue, "deploy the service", routing.PathTask, "CrewAI (Fallback)"),
			Entry("task route, task text", routing.PathTask, "deploy the service", routing.PathTask, "CrewAI"),
			Entry("task route, dialogue text", routing.PathTask, "start a conversation", routing.PathDialogue, "AutoGen (Fallback)"),
		)

		It("should return the engine result", func() {
			out, err := d.Dispatch(ctx, routing.PathDialogue, "an idea")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Result).To(Equal("AutoGen (simulated): discussion about 'an idea' finished. Key points: A, B, C."))
		})

		Context("when engines are unavailable", func() {
			BeforeEach(func() {
				d = dispatch.NewDispatcher(routing.NewKeywordStrategy([]string{"discuss"}), engine.Load(false, log), breakers, log)
			})

			It("should answer with the dialogue simulation text", func() {
				out, err := d.Dispatch(ctx, routing.PathDialogue, "discuss x")
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Degraded).To(BeTrue())
				Expect(out.Result).To(Equal("AutoGen engine not available. Simulation: AutoGen would process: discuss x"))
			})

			It("should answer with the task simulation text", func() {
				out, err := d.Dispatch(ctx, routing.PathTask, "deploy")
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Degraded).To(BeTrue())
				Expect(out.AgentUsed).To(Equal("CrewAI"))
				Expect(out.Result).To(Equal("CrewAI engine not available. Simulation: CrewAI would execute: deploy"))
			})

			It("should not touch the breakers", func() {
				_, _ = d.Dispatch(ctx, routing.PathTask, "deploy")
				Expect(breakers.Stats()).To(BeEmpty())
			})
		})

		Context("when an engine fails", func() {
			var tasks *failingTask

			BeforeEach(func() {
				tasks = &failingTask{}
				set := engine.Load(true, log)
				set.Task = tasks
				d = dispatch.NewDispatcher(routing.NewFixedStrategy(routing.PathTask), set, breakers, log)
			})

			It("should degrade to simulation text instead of failing", func() {
				out, err := d.Dispatch(ctx, routing.PathTask, "deploy")
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Degraded).To(BeTrue())
				Expect(out.Result).To(ContainSubstring("would execute: deploy"))
			})

			It("should stop calling the engine once the breaker opens", func() {
				for i := 0; i < 5; i++ {
					_, err := d.Dispatch(ctx, routing.PathTask, "deploy")
					Expect(err).NotTo(HaveOccurred())
				}
				Expect(tasks.calls).To(Equal(2))
				Expect(breakers.Stats()[engine.NameTask]).To(Equal("open"))
			})
		})

		Context("with a cancelled context", func() {
			It("should degrade instead of failing", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()

				out, err := d.Dispatch(cancelled, routing.PathTask, "deploy")
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Degraded).To(BeTrue())
				Expect(breakers.Stats()[engine.NameTask]).To(Equal("closed"))
			})

			It("should keep answering other callers after repeated cancellations", func() {
				for i := 0; i < 5; i++ {
					cancelled, cancel := context.WithCancel(ctx)
					cancel()
					_, err := d.Dispatch(cancelled, routing.PathTask, "deploy")
					Expect(err).NotTo(HaveOccurred())
				}

				out, err := d.Dispatch(ctx, routing.PathTask, "deploy")
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Degraded).To(BeFalse())
				Expect(out.Result).To(Equal("CrewAI (simulated): task 'deploy' executed successfully. Result: X, Y, Z."))
				Expect(breakers.Stats()[engine.NameTask]).To(Equal("closed"))
			})
		})
	})
})
