package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hanbyul-dev/matchup/internal/idempotency"
)

func idempotencyTestChain(repo idempotency.Repository, calls *int) http.Handler {
	return Idempotency(repo, map[string]bool{"/scores": true})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"score-1"}`))
		}))
}

func TestIdempotency_MissingKey(t *testing.T) {
	calls := 0
	handler := idempotencyTestChain(idempotency.NewInMemoryRepository(), &calls)

	req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if calls != 0 {
		t.Errorf("handler should not be called, got %d calls", calls)
	}

	var errResp map[string]map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp["error"]["code"] != "missing_idempotency_key" {
		t.Errorf("expected missing_idempotency_key, got %q", errResp["error"]["code"])
	}
}

func TestIdempotency_KeyTooLong(t *testing.T) {
	calls := 0
	handler := idempotencyTestChain(idempotency.NewInMemoryRepository(), &calls)

	req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, strings.Repeat("x", 65))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if calls != 0 {
		t.Errorf("handler should not be called, got %d calls", calls)
	}
}

func TestIdempotency_CachesSuccessfulResponse(t *testing.T) {
	calls := 0
	handler := idempotencyTestChain(idempotency.NewInMemoryRepository(), &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "submit-abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, rec.Code)
		}
		if rec.Body.String() != `{"id":"score-1"}` {
			t.Fatalf("request %d: unexpected body %q", i+1, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotency_UnconfiguredRoutePassesThrough(t *testing.T) {
	calls := 0
	handler := idempotencyTestChain(idempotency.NewInMemoryRepository(), &calls)

	// Votes are retried freely; only score submissions need keys.
	req := httptest.NewRequest(http.MethodPost, "/topics/t1/votes", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if calls != 1 {
		t.Errorf("expected handler call, got %d", calls)
	}
}

func TestIdempotency_GetRequestsPassThrough(t *testing.T) {
	calls := 0
	handler := idempotencyTestChain(idempotency.NewInMemoryRepository(), &calls)

	req := httptest.NewRequest(http.MethodGet, "/scores", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if calls != 1 {
		t.Errorf("expected handler call for GET, got %d", calls)
	}
}
