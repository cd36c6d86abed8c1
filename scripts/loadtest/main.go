// Loadtest is a concurrent HTTP load testing tool for the agent gateway. It
// posts tasks to the run routes and reports throughput, latency percentiles
// and how the gateway distributed the tasks over the agents.
//
// Usage:
//
//	go run ./scripts/loadtest --url http://localhost:5000 --concurrency 10 --requests 1000
//	go run ./scripts/loadtest --route task --task "deploy the service" --out summary.json
//
// Without --task the workers cycle through a mix of dialogue and task prompts.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
)

var defaultTasks = []string{
	"let's discuss an idea for the landing page",
	"summarize the incident report",
	"start a conversation about pricing",
	"deploy the staging environment",
	"brainstorm a new idea for onboarding",
	"compile the quarterly metrics",
}

var routePaths = map[string]string{
	"dialogue": "/api/run-dialogue-agent",
	"task":     "/api/run-task-agent",
}

type agentStats struct {
	Count     int32
	Latencies []time.Duration
}

type agentSummary struct {
	Count int32   `json:"count"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
}

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:5000", "Gateway base URL")
		route       = flag.String("route", "mixed", "Route to hit: dialogue, task or mixed")
		task        = flag.String("task", "", "Fixed task text (default: cycle through sample tasks)")
		concurrency = flag.IntP("concurrency", "c", 10, "Number of concurrent workers")
		requests    = flag.IntP("requests", "n", 100, "Total number of requests to send")
		timeout     = flag.Duration("timeout", 10*time.Second, "Per-request timeout")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
		verbose     = flag.BoolP("verbose", "v", false, "Verbose per-request logging to stdout")
	)
	flag.Parse()

	if _, ok := routePaths[*route]; !ok && *route != "mixed" {
		fmt.Fprintf(os.Stderr, "unknown route %q (want dialogue, task or mixed)\n", *route)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	base := strings.TrimRight(*baseURL, "/")

	jobs := make(chan int)
	var wg sync.WaitGroup

	var total, success, failure int32

	stats := make(map[string]*agentStats)
	statusCodes := make(map[int]int32)
	var allLatencies []time.Duration
	var mu sync.Mutex

	testStart := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				atomic.AddInt32(&total, 1)

				path := pickRoute(*route, idx)
				text := *task
				if text == "" {
					text = defaultTasks[idx%len(defaultTasks)]
				}

				body, _ := json.Marshal(map[string]string{"task": text})
				req, err := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(body))
				if err != nil {
					atomic.AddInt32(&failure, 1)
					continue
				}
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Request-ID", uuid.NewString())

				start := time.Now()
				resp, err := client.Do(req)
				dur := time.Since(start)

				if err != nil {
					atomic.AddInt32(&failure, 1)
					if *verbose {
						fmt.Printf("[%d] idx=%d error=%v\n", workerID, idx, err)
					}
					continue
				}

				var decoded struct {
					AgentUsed string `json:"agent_used"`
				}
				_ = json.NewDecoder(resp.Body).Decode(&decoded)
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
					atomic.AddInt32(&success, 1)
				} else {
					atomic.AddInt32(&failure, 1)
				}

				agent := decoded.AgentUsed
				if agent == "" {
					agent = "(none)"
				}

				mu.Lock()
				statusCodes[resp.StatusCode]++
				allLatencies = append(allLatencies, dur)
				as, ok := stats[agent]
				if !ok {
					as = &agentStats{}
					stats[agent] = as
				}
				as.Count++
				as.Latencies = append(as.Latencies, dur)
				mu.Unlock()

				if *verbose {
					fmt.Printf("[%d] idx=%d route=%s agent=%s status=%d dur=%v\n", workerID, idx, path, agent, resp.StatusCode, dur)
				}
			}
		}(i)
	}

	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	wg.Wait()
	totalDuration := time.Since(testStart)
	throughput := float64(total) / totalDuration.Seconds()

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s  Route: %s\n", base, *route)
	fmt.Printf("Requests: %d  Concurrency: %d\n", *requests, *concurrency)
	fmt.Printf("Total sent: %d  Success: %d  Failure: %d\n", total, success, failure)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s\n", totalDuration, throughput)

	fmt.Println("\nStatus codes:")
	var codes []int
	for k := range statusCodes {
		codes = append(codes, k)
	}
	sort.Ints(codes)
	for _, k := range codes {
		fmt.Printf("  %d -> %d\n", k, statusCodes[k])
	}

	fmt.Println("\nAgent distribution:")
	summaries := make(map[string]agentSummary, len(stats))
	var agents []string
	for k := range stats {
		agents = append(agents, k)
	}
	sort.Strings(agents)
	for _, k := range agents {
		as := stats[k]
		sorted := sortedCopy(as.Latencies)
		s := agentSummary{
			Count: as.Count,
			P50:   millis(percentile(sorted, 0.50)),
			P95:   millis(percentile(sorted, 0.95)),
			P99:   millis(percentile(sorted, 0.99)),
		}
		summaries[k] = s
		fmt.Printf("  %-22s total=%d p50=%.2fms p95=%.2fms p99=%.2fms\n", k, s.Count, s.P50, s.P95, s.P99)
	}

	if len(allLatencies) > 0 {
		sorted := sortedCopy(allLatencies)
		fmt.Println("\nOverall latencies:")
		fmt.Printf("  samples=%d min=%v max=%v p50=%v p90=%v p95=%v p99=%v\n",
			len(sorted), sorted[0], sorted[len(sorted)-1],
			percentile(sorted, 0.50), percentile(sorted, 0.90), percentile(sorted, 0.95), percentile(sorted, 0.99))
	}

	fmt.Printf("\nGOMAXPROCS=%d  NumGoroutine=%d\n", runtime.GOMAXPROCS(0), runtime.NumGoroutine())

	if *outJSON != "" {
		report := map[string]interface{}{
			"target":         base,
			"route":          *route,
			"requests":       *requests,
			"concurrency":    *concurrency,
			"total_sent":     total,
			"success":        success,
			"failure":        failure,
			"duration_ms":    totalDuration.Milliseconds(),
			"throughput_rps": throughput,
			"agents":         summaries,
		}

		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if failure > 0 {
		os.Exit(2)
	}
}

func pickRoute(route string, idx int) string {
	if route == "mixed" {
		if idx%2 == 0 {
			return routePaths["dialogue"]
		}
		return routePaths["task"]
	}
	return routePaths[route]
}

func sortedCopy(in []time.Duration) []time.Duration {
	out := make([]time.Duration, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, pct float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*pct)]
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
