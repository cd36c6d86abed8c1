// Package dispatch sends a task description to the engine chosen by the
// routing strategy, guarding each engine with its circuit breaker. Engine
// failures never reach the caller: the outcome falls back to simulation text.
package dispatch
