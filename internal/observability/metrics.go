package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for requests, gate decisions and upstream calls.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	gateDecisions map[string]int64
	upstreamCalls map[string]int64
	cacheLookups  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		gateDecisions: make(map[string]int64),
		upstreamCalls: make(map[string]int64),
		cacheLookups:  make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordGateDecision counts access gate outcomes per decision kind.
func (m *Metrics) RecordGateDecision(decision string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gateDecisions[decision]++
}

// RecordUpstream counts upstream API calls per endpoint and status (0 for transport failures).
func (m *Metrics) RecordUpstream(endpoint string, status int) {
	if m == nil {
		return
	}
	key := endpoint + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstreamCalls[key]++
}

// RecordCacheLookup counts cache hits and misses per endpoint.
func (m *Metrics) RecordCacheLookup(endpoint string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheLookups[endpoint+"|"+outcome]++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	GateDecisions map[string]int64 `json:"gate_decisions"`
	UpstreamCalls map[string]int64 `json:"upstream_calls"`
	CacheLookups  map[string]int64 `json:"cache_lookups"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:      copyCounts(m.requestCount),
		Errors:        copyCounts(m.errorCount),
		GateDecisions: copyCounts(m.gateDecisions),
		UpstreamCalls: copyCounts(m.upstreamCalls),
		CacheLookups:  copyCounts(m.cacheLookups),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
