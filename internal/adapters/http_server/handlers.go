package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"airport_codes/internal/adapters/observability"
	"airport_codes/internal/app"
	"airport_codes/internal/domain"
)

type Handlers struct {
	P       *app.PageService
	SiteURL string
	BuiltAt time.Time // sitemap lastmod
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/home", h.home)
	s.mux.Get("/v1/airports/{code}", h.airport)
	s.mux.Get("/v1/countries/{code}", h.country)
	s.mux.With(RateLimit(s.search)).Get("/v1/search", h.search)
	s.mux.Get("/v1/routes", h.routes)
	s.mux.Get("/sitemap.xml", h.sitemap)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// writeBody sends body with a weak ETag, or 304 when the client already has it.
func writeBody(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	etag := etagOf(body)
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("write body failed")
	}
}

func writeView(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("marshal view failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeBody(w, r, "application/json", body)
}

// writeLookupError maps page-generator errors to responses.
func writeLookupError(w http.ResponseWriter, r *http.Request, page string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		observability.ObserveLookup(page, "not_found")
		writeProblem(w, http.StatusNotFound, "Not Found", page+" not found")
		return
	}
	log.Error().Err(err).Str("page", page).Msg("page generation failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	hp, err := h.P.Home(r.Context())
	if err != nil {
		writeLookupError(w, r, "home", err)
		return
	}
	writeView(w, r, hp)
}

func (h *Handlers) airport(w http.ResponseWriter, r *http.Request) {
	ap, err := h.P.Airport(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeLookupError(w, r, "airport", err)
		return
	}
	observability.ObserveLookup("airport", "found")
	writeView(w, r, ap)
}

func (h *Handlers) country(w http.ResponseWriter, r *http.Request) {
	cp, err := h.P.Country(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeLookupError(w, r, "country", err)
		return
	}
	observability.ObserveLookup("country", "found")
	writeView(w, r, cp)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	limit := app.DefaultSearchLimit
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > app.MaxSearchLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit",
				"limit must be an integer between 1 and "+strconv.Itoa(app.MaxSearchLimit))
			return
		}
		limit = l
	}

	sr, err := h.P.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeLookupError(w, r, "search", err)
		return
	}
	outcome := "found"
	if sr.Total == 0 {
		outcome = "empty"
	}
	observability.ObserveLookup("search", outcome)
	writeView(w, r, sr)
}

func (h *Handlers) routes(w http.ResponseWriter, r *http.Request) {
	writeView(w, r, h.P.Routes())
}

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := app.WriteSitemap(&buf, h.P.Sitemap(h.SiteURL, h.BuiltAt)); err != nil {
		log.Error().Err(err).Msg("render sitemap failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeBody(w, r, "application/xml; charset=utf-8", buf.Bytes())
}
