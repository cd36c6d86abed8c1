// Package mcpserver exposes the agent runs as Model Context Protocol tools.
//
// The tools share the dispatcher and flow builders of the HTTP routes, so an
// MCP client receives the same payload as a POST to the matching route.
package mcpserver
