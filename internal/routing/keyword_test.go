package routing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/agent-gateway/internal/routing"
)

var _ = Describe("KeywordStrategy", func() {
	var strat *routing.KeywordStrategy

	BeforeEach(func() {
		strat = routing.NewKeywordStrategy([]string{"discuss", "idea", "conversation"})
	})

	DescribeTable("Select",
		func(task string, expected routing.Path) {
			Expect(strat.Select(task)).To(Equal(expected))
		},
		Entry("discuss keyword", "let's discuss an idea", routing.PathDialogue),
		Entry("idea keyword alone", "I have an idea", routing.PathDialogue),
		Entry("conversation keyword", "start a conversation", routing.PathDialogue),
		Entry("upper case text", "DISCUSS THE ROADMAP", routing.PathDialogue),
		Entry("keyword inside a word", "rediscussion", routing.PathDialogue),
		Entry("plural keyword", "collect ideas", routing.PathDialogue),
		Entry("no keyword", "deploy the service", routing.PathTask),
		Entry("empty text", "", routing.PathTask),
	)

	Describe("Matched", func() {
		It("should report the first configured keyword found", func() {
			kw, ok := strat.Matched("an idea worth a conversation")
			Expect(ok).To(BeTrue())
			Expect(kw).To(Equal("idea"))
		})

		It("should report no match", func() {
			kw, ok := strat.Matched("compile the report")
			Expect(ok).To(BeFalse())
			Expect(kw).To(BeEmpty())
		})
	})

	Describe("NewKeywordStrategy", func() {
		It("should normalize case and whitespace", func() {
			s := routing.NewKeywordStrategy([]string{"  Debate ", "TALK"})
			Expect(s.Keywords()).To(Equal([]string{"debate", "talk"}))
			Expect(s.Select("let us talk")).To(Equal(routing.PathDialogue))
		})

		It("should drop blank keywords instead of matching everything", func() {
			s := routing.NewKeywordStrategy([]string{"", "   "})
			Expect(s.Keywords()).To(BeEmpty())
			Expect(s.Select("anything at all")).To(Equal(routing.PathTask))
		})

		It("should return a copy of the keywords", func() {
			kws := strat.Keywords()
			kws[0] = "mutated"
			Expect(strat.Keywords()[0]).To(Equal("discuss"))
		})
	})
})

var _ = Describe("FixedStrategy", func() {
	It("should always return the configured path", func() {
		strat := routing.NewFixedStrategy(routing.PathDialogue)
		Expect(strat.Select("deploy")).To(Equal(routing.PathDialogue))
		Expect(strat.Select("")).To(Equal(routing.PathDialogue))
	})
})
