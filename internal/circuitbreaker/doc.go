// Package circuitbreaker keeps one circuit breaker per engine so that a
// failing engine is skipped for a while instead of being called on every
// request. Breakers come from github.com/sony/gobreaker and go through the
// usual states:
//
//   - closed: calls pass through
//   - open: calls are rejected with gobreaker.ErrOpenState
//   - half-open: a limited number of probe calls decide whether to close again
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(circuitbreaker.Settings{
//	    MaxRequests:      1,
//	    Timeout:          5 * time.Second,
//	    FailureThreshold: 3,
//	}, logger)
//	result, err := registry.Execute("CrewAI", func() (string, error) {
//	    return tasks.RunTask(ctx, task)
//	})
package circuitbreaker
