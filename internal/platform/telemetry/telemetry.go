// Package telemetry keeps in-process HTTP and prediction metrics for the
// proxy and serves them in Prometheus text exposition format.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// DefaultDurationBuckets are the request duration boundaries in seconds.
// The upper end covers a slow inference call.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// histogram is a thread-safe histogram. Bucket counts are stored
// non-cumulative and accumulated at export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

func (h *histogram) observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			return
		}
	}
}

func (h *histogram) total() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) sumValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulative() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	var running int64
	for i, c := range raw {
		running += c
		raw[i] = running
	}
	return raw
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(next)) {
			return
		}
	}
}

// requestKey identifies one labeled duration series.
type requestKey struct {
	method string
	route  string
	status string
}

// Provider collects metrics for one server.
type Provider struct {
	boundaries []float64

	mu        sync.RWMutex
	durations map[requestKey]*histogram
	outcomes  map[string]int64

	active int64
}

// NewProvider creates a Provider. Nil boundaries select
// DefaultDurationBuckets.
func NewProvider(boundaries []float64) *Provider {
	if len(boundaries) == 0 {
		boundaries = DefaultDurationBuckets
	}
	return &Provider{
		boundaries: boundaries,
		durations:  make(map[requestKey]*histogram),
		outcomes:   make(map[string]int64),
	}
}

// PredictionOutcome counts one finished proxy request by outcome.
func (p *Provider) PredictionOutcome(outcome string) {
	p.mu.Lock()
	p.outcomes[outcome]++
	p.mu.Unlock()
}

// Outcome returns the count recorded for outcome.
func (p *Provider) Outcome(outcome string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.outcomes[outcome]
}

// Requests returns the number of observations for one route series.
func (p *Provider) Requests(method, route string, status int) int64 {
	p.mu.RLock()
	h := p.durations[requestKey{method, route, strconv.Itoa(status)}]
	p.mu.RUnlock()
	if h == nil {
		return 0
	}
	return h.total()
}

// Active returns the number of requests currently in flight.
func (p *Provider) Active() int64 {
	return atomic.LoadInt64(&p.active)
}

func (p *Provider) histogramFor(key requestKey) *histogram {
	p.mu.RLock()
	h, ok := p.durations[key]
	p.mu.RUnlock()
	if ok {
		return h
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok = p.durations[key]; ok {
		return h
	}
	h = newHistogram(p.boundaries)
	p.durations[key] = h
	return h
}

// Middleware records request duration keyed by method, route pattern and
// status, and tracks in-flight requests.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&p.active, 1)
			defer atomic.AddInt64(&p.active, -1)

			start := time.Now()
			err := next(c)

			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}
			key := requestKey{
				method: req.Method,
				route:  route,
				status: strconv.Itoa(statusOf(c, err)),
			}
			p.histogramFor(key).observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusOf reports the status the client will see once err reaches the
// error handler.
func statusOf(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

// Handler serves the collected metrics in Prometheus text format.
func (p *Provider) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder
		p.writeTo(&b)
		return c.Blob(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
	}
}

func (p *Provider) writeTo(b *strings.Builder) {
	p.mu.RLock()
	keys := make([]requestKey, 0, len(p.durations))
	for k := range p.durations {
		keys = append(keys, k)
	}
	hists := make(map[requestKey]*histogram, len(keys))
	for _, k := range keys {
		hists[k] = p.durations[k]
	}
	outcomes := make(map[string]int64, len(p.outcomes))
	for k, v := range p.outcomes {
		outcomes[k] = v
	}
	p.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route != keys[j].route {
			return keys[i].route < keys[j].route
		}
		if keys[i].method != keys[j].method {
			return keys[i].method < keys[j].method
		}
		return keys[i].status < keys[j].status
	})

	const durName = "http_server_request_duration_seconds"
	fmt.Fprintf(b, "# HELP %s Duration of HTTP requests in seconds.\n", durName)
	fmt.Fprintf(b, "# TYPE %s histogram\n", durName)
	for _, k := range keys {
		labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", k.method, k.route, k.status)
		writeHistogram(b, durName, labels, hists[k], p.boundaries)
	}
	b.WriteByte('\n')

	b.WriteString("# HELP http_server_active_requests Number of active HTTP requests.\n")
	b.WriteString("# TYPE http_server_active_requests gauge\n")
	fmt.Fprintf(b, "http_server_active_requests %d\n\n", p.Active())

	names := make([]string, 0, len(outcomes))
	for k := range outcomes {
		names = append(names, k)
	}
	sort.Strings(names)
	b.WriteString("# HELP prediction_requests_total Proxied prediction requests by outcome.\n")
	b.WriteString("# TYPE prediction_requests_total counter\n")
	for _, name := range names {
		fmt.Fprintf(b, "prediction_requests_total{outcome=%q} %d\n", name, outcomes[name])
	}
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram, boundaries []float64) {
	cum := h.cumulative()
	total := h.total()
	for i, bound := range boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, bound, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.sumValue())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}
