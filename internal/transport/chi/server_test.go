package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	healthuc "github.com/wildone/asset-share-commons/internal/usecase/health"
)

// --- Mocks ---

type mockSearcher struct {
	searchFn func(ctx context.Context, pageID string, params map[string]string) (*result.Envelope, error)

	lastPage   string
	lastParams map[string]string
}

func (m *mockSearcher) Search(ctx context.Context, pageID string, params map[string]string) (*result.Envelope, error) {
	m.lastPage, m.lastParams = pageID, params
	if m.searchFn != nil {
		return m.searchFn(ctx, pageID, params)
	}
	return result.NewEnvelope(nil, &result.Matches{}), nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(t *testing.T, s Searcher, opts ...ServerOption) (http.Handler, *mockHealth) {
	t.Helper()
	h := &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK}}}
	server := NewServer(s, h, zap.NewNop(), opts...)
	return NewRouter(server, nil, zap.NewNop()), h
}

func testEnvelope(t *testing.T) *result.Envelope {
	t.Helper()
	a, err := result.NewAsset("/content/dam/a.png", "A", "", "image/png", 10,
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), []string{"x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return result.NewEnvelope([]result.Asset{a}, &result.Matches{
		Hits:      []string{"/content/dam/a.png", "/content/dam/gone.png"},
		Total:     120,
		Offset:    0,
		Limit:     2,
		Elapsed:   1500 * time.Microsecond,
		Statement: "FT.SEARCH asc:assets:idx '*' LIMIT 0 2",
	}).WithSearchID("search-1")
}

// --- Search ---

func TestSearchPage_OK(t *testing.T) {
	ms := &mockSearcher{searchFn: func(context.Context, string, map[string]string) (*result.Envelope, error) {
		return testEnvelope(t), nil
	}}
	router, _ := newTestRouter(t, ms)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages/search/search?fulltext=cat&p.limit=2&fulltext=dog", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if ms.lastPage != "search" {
		t.Errorf("page = %q", ms.lastPage)
	}
	if ms.lastParams["fulltext"] != "cat" || ms.lastParams["p.limit"] != "2" {
		t.Errorf("params = %v", ms.lastParams)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SearchID != "search-1" || resp.ResultCount != 1 || resp.HitCount != 2 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if resp.TotalMatches != 120 || !resp.HasMore || resp.PageCount != 60 {
		t.Errorf("unexpected paging: %+v", resp)
	}
	if resp.ElapsedMs != 1.5 {
		t.Errorf("elapsed_ms = %v", resp.ElapsedMs)
	}
	if resp.Query != "" {
		t.Error("statement must stay hidden by default")
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "/content/dam/a.png" || resp.Results[0].Modified == nil {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestSearchPage_ExposeQuery(t *testing.T) {
	ms := &mockSearcher{searchFn: func(context.Context, string, map[string]string) (*result.Envelope, error) {
		return testEnvelope(t), nil
	}}
	router, _ := newTestRouter(t, ms, WithExposeQuery(true))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/pages/search/search", http.NoBody))

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Query == "" {
		t.Error("expected executed statement in response")
	}
}

func TestSearchPage_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"unsafe", domain.ErrUnsafeSearch, http.StatusBadRequest, ErrorCodeUnsafeSearch},
		{"invalid", fmt.Errorf("translate: %w", domain.ErrInvalidQuery), http.StatusBadRequest, ErrorCodeInvalidQuery},
		{"fulltext", domain.ErrFulltextNotSupported, http.StatusNotImplemented, ErrorCodeFulltextUnsupported},
		{"backend", fmt.Errorf("search: %w: dial tcp", domain.ErrBackendUnavailable), http.StatusServiceUnavailable, ErrorCodeServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockSearcher{searchFn: func(context.Context, string, map[string]string) (*result.Envelope, error) {
				return nil, tc.err
			}}
			router, _ := newTestRouter(t, ms)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/pages/search/search", http.NoBody))

			if rr.Code != tc.status {
				t.Errorf("status = %d, want %d", rr.Code, tc.status)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tc.code {
				t.Errorf("code = %q, want %q", resp.Code, tc.code)
			}
			if tc.code == ErrorCodeServiceUnavailable && resp.Message != domain.ErrBackendUnavailable.Error() {
				t.Errorf("internal detail leaked: %q", resp.Message)
			}
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, &mockSearcher{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/nope", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/pages/search/search", http.NoBody))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestRouter_RequestID(t *testing.T) {
	router, _ := newTestRouter(t, &mockSearcher{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	router, h := newTestRouter(t, &mockSearcher{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}

	h.report = healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"search_index": healthuc.CheckError}}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &mockSearcher{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}
