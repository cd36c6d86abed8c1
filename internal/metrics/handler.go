package metrics

import (
	"encoding/json"
	"net/http"
)

// Handler serves the current snapshot as JSON. breakers, when not nil,
// supplies the circuit breaker states included in the response.
func (c *Collector) Handler(breakers func() map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.metrics.Snapshot()
		if breakers != nil {
			snap.Breakers = breakers()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
