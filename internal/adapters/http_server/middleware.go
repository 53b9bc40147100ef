package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"airport_codes/internal/adapters/observability"
)

const timeoutBody = `{"type":"about:blank","title":"Service Unavailable","status":503,"detail":"request timed out"}`

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, timeoutBody) }
}

// recorder keeps the status and body size for metrics and access logs.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *recorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *recorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func record(w http.ResponseWriter) *recorder {
	if rec, ok := w.(*recorder); ok {
		return rec
	}
	return &recorder{ResponseWriter: w}
}

// routePattern falls back to "unmatched" so unknown paths do not blow up label cardinality.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// clientIP keys per-client state. chimw.RealIP runs first, so proxy headers
// are already folded into RemoteAddr (without a port).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)
		observability.ObserveHTTP(routePattern(r), r.Method, rec.Status(), time.Since(start))
	})
}

// Logger writes one http_request event per request; 4xx log at warn, 5xx at error.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			ev := l.Info()
			switch st := rec.Status(); {
			case st >= 500:
				ev = l.Error()
			case st >= 400:
				ev = l.Warn()
			}
			ev.Str("route", routePattern(r)).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Str("method", r.Method).
				Int("status", rec.Status()).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Str("client", clientIP(r)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http_request")
		})
	}
}

// clientLimiter gives every client IP its own token bucket. The table is
// reset once it holds maxClients entries.
type clientLimiter struct {
	limit      rate.Limit
	burst      int
	maxClients int

	mu   sync.Mutex
	byIP map[string]*rate.Limiter
}

const defaultMaxClients = 10000

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:      rate.Limit(rps),
		burst:      burst,
		maxClients: defaultMaxClients,
		byIP:       map[string]*rate.Limiter{},
	}
}

func (l *clientLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.byIP[ip]
	if !ok {
		if len(l.byIP) >= l.maxClients {
			l.byIP = map[string]*rate.Limiter{}
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byIP[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// RateLimit rejects a client's requests beyond its budget with 429. A nil
// limiter lets everything through.
func RateLimit(l *clientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "search rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
