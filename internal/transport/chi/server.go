package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/domain"
	domchat "github.com/cityhealth/directory/internal/domain/chat"
	domprof "github.com/cityhealth/directory/internal/domain/profile"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/request"
	domsug "github.com/cityhealth/directory/internal/domain/suggestion"
	healthuc "github.com/cityhealth/directory/internal/usecase/health"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Server serves the directory HTTP API.
type Server struct {
	search         Searcher
	suggestions    Suggester
	chat           ChatResponder
	health         HealthChecker
	logger         *zap.Logger
	errorHandlers  []errorHandler
	allowedOrigins map[string]struct{}
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	suggestions Suggester,
	chat ChatResponder,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		suggestions:   suggestions,
		chat:          chat,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithAllowedOrigins restricts websocket upgrades to the given origins.
// With no origins every origin is accepted.
func (s *Server) WithAllowedOrigins(origins []string) *Server {
	s.allowedOrigins = make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			s.allowedOrigins[o] = struct{}{}
		}
	}
	return s
}

// Mount registers the operational endpoints at the root and the API under /api/v1.
// api middlewares run after device identification.
func (s *Server) Mount(r chi.Router, api ...func(http.Handler) http.Handler) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(DeviceMiddleware)
		r.Use(api...)

		r.Get("/search", s.SearchProviders)
		r.Get("/suggestions", s.GetSuggestions)
		r.Post("/suggestions/{providerID}/dismiss", s.DismissSuggestion)
		r.Delete("/suggestions/dismissals", s.ClearDismissals)
		r.Get("/history", s.RecentSearches)
		r.Post("/providers/{providerID}/views", s.RecordView)
		r.Post("/chat", s.Chat)
		r.Get("/chat/ws", s.ChatWebSocket)
	})
}

// searchResponse is the JSON body of GET /search.
type searchResponse struct {
	Providers  []domprov.Provider `json:"providers"`
	HasMore    bool               `json:"has_more"`
	NextCursor string             `json:"next_cursor,omitempty"`
	Applied    request.Applied    `json:"applied"`
	LatencyMs  float64            `json:"latency_ms"`
	Cached     bool               `json:"cached"`
}

// SearchProviders handles GET /api/v1/search.
func (s *Server) SearchProviders(w http.ResponseWriter, r *http.Request) {
	params, err := searchParamsFromQuery(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	req, err := request.New(params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Providers:  page.Providers,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
		Applied:    page.Applied,
		LatencyMs:  float64(page.Latency.Microseconds()) / 1000,
		Cached:     page.Cached,
	})
}

func searchParamsFromQuery(r *http.Request) (request.Params, error) {
	q := r.URL.Query()
	p := request.Params{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Location: q.Get("location"),
		Cursor:   q.Get("cursor"),
		Page:     1,
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return request.Params{}, domain.NewValidationError("page", "must be an integer")
		}
		p.Page = n
	}
	flags := []struct {
		name string
		dst  *bool
	}{
		{"accessible", &p.Accessible},
		{"home_visit", &p.HomeVisit},
		{"emergency", &p.Emergency},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return request.Params{}, domain.NewValidationError(f.name, "must be a boolean")
		}
		*f.dst = b
	}
	return p, nil
}

// suggestionsResponse is the JSON body of GET /suggestions.
type suggestionsResponse struct {
	Items []domsug.Candidate `json:"items"`
}

// GetSuggestions handles GET /api/v1/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	sctx, err := suggestionContextFromQuery(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	device := domain.DeviceFromContext(r.Context())
	items := s.suggestions.Suggest(r.Context(), device, sctx)
	writeJSON(w, http.StatusOK, suggestionsResponse{Items: items})
}

func suggestionContextFromQuery(r *http.Request) (domsug.Context, error) {
	q := r.URL.Query()
	sctx := domsug.Context{UserLocation: q.Get("location")}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return sctx, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return domsug.Context{}, domain.NewValidationError("lat,lon", "both must be numbers")
	}
	loc := domprov.Location{Lat: lat, Lon: lon}
	if !loc.Point().Valid() {
		return domsug.Context{}, domain.NewValidationError("lat,lon", "out of range")
	}
	sctx.Coordinates = &loc
	return sctx, nil
}

// DismissSuggestion handles POST /api/v1/suggestions/{providerID}/dismiss.
func (s *Server) DismissSuggestion(w http.ResponseWriter, r *http.Request) {
	device := domain.DeviceFromContext(r.Context())
	if err := s.suggestions.Dismiss(r.Context(), device, chi.URLParam(r, "providerID")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearDismissals handles DELETE /api/v1/suggestions/dismissals.
func (s *Server) ClearDismissals(w http.ResponseWriter, r *http.Request) {
	device := domain.DeviceFromContext(r.Context())
	if err := s.suggestions.ClearDismissals(r.Context(), device); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// historyResponse is the JSON body of GET /history.
type historyResponse struct {
	Items []domprof.SearchEntry `json:"items"`
}

// RecentSearches handles GET /api/v1/history.
func (s *Server) RecentSearches(w http.ResponseWriter, r *http.Request) {
	device := domain.DeviceFromContext(r.Context())
	items, err := s.suggestions.RecentSearches(r.Context(), device)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domprof.SearchEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: items})
}

// RecordView handles POST /api/v1/providers/{providerID}/views.
func (s *Server) RecordView(w http.ResponseWriter, r *http.Request) {
	device := domain.DeviceFromContext(r.Context())
	if err := s.suggestions.RecordView(r.Context(), device, chi.URLParam(r, "providerID")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Chat handles POST /api/v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req domchat.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.chat.Reply(r.Context(), req))
}

// healthResponse is the JSON body of GET /health.
type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
