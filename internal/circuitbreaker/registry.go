package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Settings are shared by every breaker the registry creates.
type Settings struct {
	MaxRequests      uint32
	Timeout          time.Duration
	FailureThreshold uint32
}

type Registry struct {
	mutex    sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
	settings Settings
	logger   *slog.Logger
}

func NewRegistry(settings Settings, logger *slog.Logger) *Registry {
	return &Registry{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		settings: settings,
		logger:   logger,
	}
}

func (r *Registry) GetBreaker(name string) *gobreaker.CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[name]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[name]; exists {
		return cb
	}

	threshold := r.settings.FailureThreshold
	cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: r.settings.MaxRequests,
		Timeout:     r.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	r.breakers[name] = cb
	return cb
}

// Execute runs fn through the breaker registered under name. When the breaker
// is open fn is not called and gobreaker.ErrOpenState is returned.
func (r *Registry) Execute(name string, fn func() (string, error)) (string, error) {
	out, err := r.GetBreaker(name).Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return "", err
	}

	s, _ := out.(string)
	return s, nil
}

func (r *Registry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.breakers = make(map[string]*gobreaker.CircuitBreaker)
}

// Stats returns the current state of every breaker by name.
func (r *Registry) Stats() map[string]string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]string, len(r.breakers))
	for name, cb := range r.breakers {
		stats[name] = cb.State().String()
	}
	return stats
}

// isSuccessful does not hold a caller's own cancellation against the engine.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
