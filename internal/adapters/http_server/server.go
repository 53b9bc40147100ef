package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	CORSOrigins []string
	SearchRPS   float64 // per client IP; <= 0 disables limiting
	SearchBurst int
	Timeout     time.Duration
}

type Server struct {
	mux    *chi.Mux
	cors   *cors.Cors
	search *clientLimiter // nil: unlimited
}

func New(o Options) *Server {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(o.Timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	var lim *clientLimiter
	if o.SearchRPS > 0 {
		lim = newClientLimiter(o.SearchRPS, o.SearchBurst)
	}

	return &Server{
		mux: m,
		cors: cors.New(cors.Options{
			AllowedOrigins: o.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"If-None-Match", "Content-Type"},
			ExposedHeaders: []string{"ETag"},
			MaxAge:         600,
		}),
		search: lim,
	}
}

// Mux returns the router wrapped in CORS handling.
func (s *Server) Mux() http.Handler { return s.cors.Handler(s.mux) }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
