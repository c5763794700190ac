package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and extraction
// outcomes. In-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	extractions    = make(map[extractKey]int64)
	aiCalls        = make(map[aiKey]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type extractKey struct {
	SourceType string
	Outcome    string
}

type aiKey struct {
	Purpose string
	Success string
}

// RecordRequest increments the request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	requestsTotal[reqKey{Method: method, Path: path, Status: status}]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordExtraction counts one pipeline run by source type and outcome
// ("success", "failure", "ai_failure").
func RecordExtraction(sourceType, outcome string) {
	mu.Lock()
	defer mu.Unlock()
	extractions[extractKey{SourceType: sourceType, Outcome: outcome}]++
}

// RecordAICall counts normalizer invocations ("normalize" or "enhance").
func RecordAICall(purpose string, success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	aiCalls[aiKey{Purpose: purpose, Success: s}]++
}

// Render emits the counters in Prometheus text exposition format.
func Render() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# TYPE ladle_http_requests_total counter\n")
	reqKeys := make([]reqKey, 0, len(requestsTotal))
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		a, c := reqKeys[i], reqKeys[j]
		if a.Path != c.Path {
			return a.Path < c.Path
		}
		if a.Method != c.Method {
			return a.Method < c.Method
		}
		return a.Status < c.Status
	})
	for _, k := range reqKeys {
		fmt.Fprintf(&b, "ladle_http_requests_total{method=%q,path=%q,status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, requestsTotal[k])
	}

	b.WriteString("# TYPE ladle_http_request_latency_ms summary\n")
	latKeys := make([]latKey, 0, len(latencyMsCount))
	for k := range latencyMsCount {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		a, c := latKeys[i], latKeys[j]
		if a.Path != c.Path {
			return a.Path < c.Path
		}
		return a.Method < c.Method
	})
	for _, k := range latKeys {
		fmt.Fprintf(&b, "ladle_http_request_latency_ms_sum{method=%q,path=%q} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "ladle_http_request_latency_ms_count{method=%q,path=%q} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	b.WriteString("# TYPE ladle_extractions_total counter\n")
	extKeys := make([]extractKey, 0, len(extractions))
	for k := range extractions {
		extKeys = append(extKeys, k)
	}
	sort.Slice(extKeys, func(i, j int) bool {
		a, c := extKeys[i], extKeys[j]
		if a.SourceType != c.SourceType {
			return a.SourceType < c.SourceType
		}
		return a.Outcome < c.Outcome
	})
	for _, k := range extKeys {
		fmt.Fprintf(&b, "ladle_extractions_total{source_type=%q,outcome=%q} %d\n",
			k.SourceType, k.Outcome, extractions[k])
	}

	b.WriteString("# TYPE ladle_ai_calls_total counter\n")
	aiKeys := make([]aiKey, 0, len(aiCalls))
	for k := range aiCalls {
		aiKeys = append(aiKeys, k)
	}
	sort.Slice(aiKeys, func(i, j int) bool {
		a, c := aiKeys[i], aiKeys[j]
		if a.Purpose != c.Purpose {
			return a.Purpose < c.Purpose
		}
		return a.Success < c.Success
	})
	for _, k := range aiKeys {
		fmt.Fprintf(&b, "ladle_ai_calls_total{purpose=%q,success=%q} %d\n",
			k.Purpose, k.Success, aiCalls[k])
	}

	return b.String()
}

// Reset clears all counters. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	requestsTotal = make(map[reqKey]int64)
	latencyMsSum = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	extractions = make(map[extractKey]int64)
	aiCalls = make(map[aiKey]int64)
}
