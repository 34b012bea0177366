package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cityhealth/directory/internal/domain"
	domchat "github.com/cityhealth/directory/internal/domain/chat"
	domprof "github.com/cityhealth/directory/internal/domain/profile"
	"github.com/cityhealth/directory/internal/domain/intent"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/domain/search/result"
	domsug "github.com/cityhealth/directory/internal/domain/suggestion"
	healthuc "github.com/cityhealth/directory/internal/usecase/health"
)

// --- Mocks ---

type mockSearcher struct {
	page    result.Page
	err     error
	lastReq *request.Request
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) (result.Page, error) {
	m.lastReq = req
	if m.err != nil {
		return result.Page{}, m.err
	}
	p := m.page
	p.Applied = req.Applied()
	return p, nil
}

type mockSuggester struct {
	items      []domsug.Candidate
	err        error
	lastDevice string
	lastID     string
	lastCtx    domsug.Context
	history    []domprof.SearchEntry
}

func (m *mockSuggester) Suggest(_ context.Context, device string, sctx domsug.Context) []domsug.Candidate {
	m.lastDevice = device
	m.lastCtx = sctx
	return m.items
}

func (m *mockSuggester) Dismiss(_ context.Context, device, providerID string) error {
	m.lastDevice, m.lastID = device, providerID
	if device == "" {
		return domain.ErrDeviceRequired
	}
	return m.err
}

func (m *mockSuggester) ClearDismissals(_ context.Context, device string) error {
	m.lastDevice = device
	if device == "" {
		return domain.ErrDeviceRequired
	}
	return m.err
}

func (m *mockSuggester) RecordView(_ context.Context, device, providerID string) error {
	m.lastDevice, m.lastID = device, providerID
	return m.err
}

func (m *mockSuggester) RecentSearches(_ context.Context, device string) ([]domprof.SearchEntry, error) {
	m.lastDevice = device
	if device == "" {
		return nil, domain.ErrDeviceRequired
	}
	return m.history, m.err
}

type mockChat struct {
	lastReq domchat.Request
}

func (m *mockChat) Reply(_ context.Context, req domchat.Request) domchat.Reply {
	m.lastReq = req
	return domchat.Reply{
		Text:        "echo: " + req.Message,
		Intent:      intent.Greeting,
		Confidence:  0.5,
		Suggestions: []string{"Help"},
		Providers:   []domprov.Provider{},
	}
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type fixture struct {
	search  *mockSearcher
	suggest *mockSuggester
	chat    *mockChat
	health  *mockHealth
	router  chi.Router
}

func newFixture() *fixture {
	f := &fixture{
		search:  &mockSearcher{},
		suggest: &mockSuggester{},
		chat:    &mockChat{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	srv := NewServer(f.search, f.suggest, f.chat, f.health, nil)
	r := chi.NewRouter()
	srv.Mount(r)
	f.router = r
	return f
}

func (f *fixture) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

// --- Search ---

func TestSearch_ParsesQuery(t *testing.T) {
	f := newFixture()
	f.search.page = result.Page{
		Providers:  []domprov.Provider{{ID: "p1", Category: domprov.Doctor, Verified: true}},
		HasMore:    true,
		NextCursor: "abc",
		Latency:    1500 * time.Microsecond,
	}

	rr := f.do("GET", "/api/v1/search?q=heart&category=Doctor&location=Oran&emergency=true&page=2", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	req := f.search.lastReq
	if req.Query() != "heart" || req.Category() != domprov.Doctor || req.Location() != "Oran" {
		t.Errorf("request = %+v", req.Applied())
	}
	if !req.Emergency() || req.Accessible() || req.Page() != 2 {
		t.Errorf("flags/page = %+v", req.Applied())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Providers) != 1 || !resp.HasMore || resp.NextCursor != "abc" {
		t.Errorf("response = %+v", resp)
	}
	if resp.LatencyMs != 1.5 {
		t.Errorf("latency_ms = %v, want 1.5", resp.LatencyMs)
	}
	if resp.Applied.Page != 2 {
		t.Errorf("applied page = %d", resp.Applied.Page)
	}
}

func TestSearch_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown category", "category=spa", "category"},
		{"page not a number", "page=two", "page"},
		{"page below one", "page=0", "page"},
		{"bad flag", "accessible=maybe", "accessible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rr := f.do("GET", "/api/v1/search?"+tt.query, "", nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			e := decodeError(t, rr)
			if e.Code != CodeValidationFailed || !strings.Contains(e.Message, tt.field) {
				t.Errorf("error = %+v", e)
			}
			if f.search.lastReq != nil {
				t.Error("search should not run")
			}
		})
	}
}

func TestSearch_QueryFailure(t *testing.T) {
	f := newFixture()
	f.search.err = fmt.Errorf("%w: %w", domain.ErrQueryFailed, errors.New("mongo: connection refused"))

	rr := f.do("GET", "/api/v1/search", "", nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != CodeSearchFailed {
		t.Errorf("code = %s", e.Code)
	}
	if strings.Contains(e.Message, "mongo") {
		t.Errorf("message leaks internals: %q", e.Message)
	}
}

// --- Suggestions ---

func TestSuggestions(t *testing.T) {
	f := newFixture()
	f.suggest.items = []domsug.Candidate{
		domsug.NewCandidate(domprov.Provider{ID: "p1", Verified: true}, domsug.Popularity),
	}

	rr := f.do("GET", "/api/v1/suggestions?location=Oran&lat=35.7&lon=-0.63", "",
		map[string]string{DeviceHeader: "dev-1"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.suggest.lastDevice != "dev-1" || f.suggest.lastCtx.UserLocation != "Oran" {
		t.Errorf("device=%q ctx=%+v", f.suggest.lastDevice, f.suggest.lastCtx)
	}
	if c := f.suggest.lastCtx.Coordinates; c == nil || c.Lat != 35.7 || c.Lon != -0.63 {
		t.Errorf("coordinates = %+v", c)
	}
	var resp suggestionsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Source != domsug.Popularity || resp.Items[0].ReasonIcon != "star" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestSuggestions_BadCoordinates(t *testing.T) {
	f := newFixture()
	for _, q := range []string{"lat=north", "lat=35.6", "lat=95&lon=0", "lat=35.6&lon=-181"} {
		rr := f.do("GET", "/api/v1/suggestions?"+q, "", nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", q, rr.Code)
		}
	}
}

func TestDismiss(t *testing.T) {
	f := newFixture()

	rr := f.do("POST", "/api/v1/suggestions/p9/dismiss", "", map[string]string{DeviceHeader: "dev-1"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.suggest.lastID != "p9" || f.suggest.lastDevice != "dev-1" {
		t.Errorf("id=%q device=%q", f.suggest.lastID, f.suggest.lastDevice)
	}

	rr = f.do("POST", "/api/v1/suggestions/p9/dismiss", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("anonymous dismiss: status = %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeDeviceRequired {
		t.Errorf("code = %s", e.Code)
	}
}

func TestClearDismissals(t *testing.T) {
	f := newFixture()
	rr := f.do("DELETE", "/api/v1/suggestions/dismissals", "", map[string]string{DeviceHeader: "dev-1"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestRecentSearches(t *testing.T) {
	f := newFixture()
	f.suggest.history = []domprof.SearchEntry{
		{ServiceType: domprov.Clinic, Location: "Oran", At: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)},
	}

	rr := f.do("GET", "/api/v1/history", "", map[string]string{DeviceHeader: "dev-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Items []domprof.SearchEntry `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Location != "Oran" {
		t.Errorf("items = %+v", body.Items)
	}

	rr = f.do("GET", "/api/v1/history", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("anonymous status = %d, want 400", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeDeviceRequired {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRecordView_NotFound(t *testing.T) {
	f := newFixture()
	f.suggest.err = fmt.Errorf("record view: %w", domain.ErrNotFound)

	rr := f.do("POST", "/api/v1/providers/ghost/views", "", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if f.suggest.lastID != "ghost" {
		t.Errorf("id = %q", f.suggest.lastID)
	}
}

func TestInvalidDeviceHeader(t *testing.T) {
	f := newFixture()
	rr := f.do("GET", "/api/v1/suggestions", "", map[string]string{DeviceHeader: "bad id!"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

// --- Chat ---

func TestChat(t *testing.T) {
	f := newFixture()

	rr := f.do("POST", "/api/v1/chat", `{"message":"hello","language":"fr","location":"Oran"}`, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if f.chat.lastReq.Language != "fr" || f.chat.lastReq.Location != "Oran" {
		t.Errorf("request = %+v", f.chat.lastReq)
	}
	var reply domchat.Reply
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Text != "echo: hello" || reply.Intent != intent.Greeting {
		t.Errorf("reply = %+v", reply)
	}
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"malformed json", `{"message":`, CodeBadRequest},
		{"empty message", `{"message":"   "}`, CodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rr := f.do("POST", "/api/v1/chat", tt.body, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	f := newFixture()
	rr := f.do("GET", "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	f.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "cache": healthuc.CheckError},
	}
	rr = f.do("GET", "/health", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded status = %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != healthuc.Degraded || resp.Checks["cache"] != healthuc.CheckError {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleDomainError_Internal(t *testing.T) {
	f := newFixture()
	f.suggest.err = errors.New("sqlite: disk I/O error")

	rr := f.do("DELETE", "/api/v1/suggestions/dismissals", "", map[string]string{DeviceHeader: "dev-1"})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Message != "internal error" {
		t.Errorf("message = %q", e.Message)
	}
}
