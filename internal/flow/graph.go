package flow

import (
	"errors"
	"fmt"
)

var ErrInvalidGraph = errors.New("invalid flow graph")

const (
	NodeTypeInput  = "input"
	NodeTypeOutput = "output"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeData struct {
	Label string `json:"label"`
}

type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Graph is the node/edge payload a client renders as a flow diagram.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Validate checks that the graph is non-empty, that node and edge ids are
// unique and that every edge connects two known nodes.
func (g Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidGraph)
	}
	if len(g.Edges) == 0 {
		return fmt.Errorf("%w: no edges", ErrInvalidGraph)
	}

	nodes := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrInvalidGraph)
		}
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidGraph, n.ID)
		}
		nodes[n.ID] = struct{}{}
	}

	edges := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if _, dup := edges[e.ID]; dup {
			return fmt.Errorf("%w: duplicate edge %q", ErrInvalidGraph, e.ID)
		}
		edges[e.ID] = struct{}{}

		if _, ok := nodes[e.Source]; !ok {
			return fmt.Errorf("%w: edge %q source %q does not exist", ErrInvalidGraph, e.ID, e.Source)
		}
		if _, ok := nodes[e.Target]; !ok {
			return fmt.Errorf("%w: edge %q target %q does not exist", ErrInvalidGraph, e.ID, e.Target)
		}
	}

	return nil
}
