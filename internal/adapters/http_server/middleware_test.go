package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestRecorder_StatusAndBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := record(rr)
	if record(rec) != rec {
		t.Fatal("record must reuse an existing recorder")
	}

	_, _ = rec.Write([]byte("hello"))
	rec.WriteHeader(http.StatusTeapot) // too late, ignored by the recorder
	_, _ = rec.Write([]byte(" world"))

	if rec.Status() != http.StatusOK || rec.bytes != 11 {
		t.Fatalf("status=%d bytes=%d", rec.Status(), rec.bytes)
	}
	if rec.Unwrap() != http.ResponseWriter(rr) {
		t.Fatal("Unwrap must return the wrapped writer")
	}
}

func TestClientIP(t *testing.T) {
	cases := map[string]string{
		"192.0.2.10:5555":  "192.0.2.10",
		"[2001:db8::1]:80": "2001:db8::1",
		"203.0.113.7":      "203.0.113.7", // as left by chimw.RealIP
	}
	for remote, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		if got := clientIP(r); got != want {
			t.Errorf("%s: got %s, want %s", remote, got, want)
		}
	}
}

func TestClientLimiter_BucketsAndReset(t *testing.T) {
	l := newClientLimiter(1, 1)
	l.maxClients = 2

	if !l.allow("a") || l.allow("a") {
		t.Fatal("client a: want one allowed request then a rejection")
	}
	if !l.allow("b") {
		t.Fatal("client b must have its own bucket")
	}
	// third client resets the table, so a starts fresh
	if !l.allow("c") || len(l.byIP) != 1 {
		t.Fatalf("table not reset: %d entries", len(l.byIP))
	}
	if !l.allow("a") {
		t.Fatal("client a should get a new bucket after reset")
	}
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		m := chi.NewRouter()
		m.Use(Logger(zerolog.New(&buf)))
		m.Get("/v1/airports/{code}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			_, _ = w.Write([]byte("body"))
		})
		m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/airports/lhr?x=1", nil))

		var ev map[string]any
		if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
			t.Fatalf("decode log line %q: %v", buf.String(), err)
		}
		if ev["level"] != c.level || ev["route"] != "/v1/airports/{code}" || ev["query"] != "x=1" || ev["bytes"] != float64(4) {
			t.Fatalf("status %d: unexpected event %v", c.status, ev)
		}
	}
}
