// Package flow builds the node/edge payloads that accompany every agent run.
// The graphs are cosmetic: they describe what the gateway did for a client to
// draw, and nothing executes them.
package flow
