package flow

import (
	"fmt"
	"math/rand/v2"
)

const (
	labelPreviewRunes = 20
	nodeX             = 50
	nodeSpacing       = 100
)

// Builder fabricates the flow update returned with every agent run.
type Builder struct {
	// Prefix is prepended to every node id, keeping ids of different routes apart.
	Prefix string
	// StartLabel heads the label of the input node.
	StartLabel string
	// MaxExtraSteps caps the cosmetic step nodes inserted between the agent and the result.
	MaxExtraSteps int

	intN func(n int) int
}

func NewBuilder(prefix, startLabel string, maxExtraSteps int) *Builder {
	return &Builder{
		Prefix:        prefix,
		StartLabel:    startLabel,
		MaxExtraSteps: maxExtraSteps,
		intN:          rand.IntN,
	}
}

// WithRand replaces the random source used to pick the step count.
func (b *Builder) WithRand(r *rand.Rand) *Builder {
	b.intN = r.IntN
	return b
}

// Build returns a chain input -> agent -> steps -> output for one run.
func (b *Builder) Build(task, agentUsed, result string) Graph {
	steps := b.extraSteps()

	type link struct {
		node   Node
		suffix string
	}

	chain := make([]link, 0, 3+steps)
	y := 5.0

	chain = append(chain, link{
		suffix: "1",
		node: Node{
			ID:       b.Prefix + "1",
			Type:     NodeTypeInput,
			Data:     NodeData{Label: b.StartLabel + ": " + preview(task)},
			Position: Position{X: nodeX, Y: y},
		},
	})

	y = nodeSpacing
	chain = append(chain, link{
		suffix: "2",
		node: Node{
			ID:       b.Prefix + "2",
			Data:     NodeData{Label: "Agent: " + agentUsed},
			Position: Position{X: nodeX, Y: y},
		},
	})

	for i := 1; i <= steps; i++ {
		y += nodeSpacing
		suffix := fmt.Sprintf("s%d", i)
		chain = append(chain, link{
			suffix: suffix,
			node: Node{
				ID:       b.Prefix + suffix,
				Data:     NodeData{Label: fmt.Sprintf("Step %d", i)},
				Position: Position{X: nodeX, Y: y},
			},
		})
	}

	y += nodeSpacing
	chain = append(chain, link{
		suffix: "3",
		node: Node{
			ID:       b.Prefix + "3",
			Type:     NodeTypeOutput,
			Data:     NodeData{Label: "Result: " + preview(result)},
			Position: Position{X: nodeX, Y: y},
		},
	})

	g := Graph{
		Nodes: make([]Node, 0, len(chain)),
		Edges: make([]Edge, 0, len(chain)-1),
	}

	for i, l := range chain {
		g.Nodes = append(g.Nodes, l.node)
		if i == 0 {
			continue
		}
		prev := chain[i-1]
		g.Edges = append(g.Edges, Edge{
			ID:       fmt.Sprintf("e%s%s-%s", b.Prefix, prev.suffix, l.suffix),
			Source:   prev.node.ID,
			Target:   l.node.ID,
			Animated: i == 1,
		})
	}

	return g
}

func (b *Builder) extraSteps() int {
	if b.MaxExtraSteps <= 0 {
		return 0
	}
	return b.intN(b.MaxExtraSteps + 1)
}

// preview keeps the first labelPreviewRunes runes of s followed by an ellipsis.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) > labelPreviewRunes {
		runes = runes[:labelPreviewRunes]
	}
	return string(runes) + "..."
}
