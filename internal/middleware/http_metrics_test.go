package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root", "/", "/"},
		{"topics list", "/topics", "/topics"},
		{"scores submit", "/scores", "/scores"},
		{"health", "/health", "/health"},
		{"ready", "/ready", "/ready"},
		{"metrics", "/metrics", "/metrics"},
		{"topic by id", "/topics/abc-123", "/topics/{id}"},
		{"topic items", "/topics/abc-123/items", "/topics/{id}/items"},
		{"topic pair", "/topics/abc-123/pair", "/topics/{id}/pair"},
		{"topic votes", "/topics/abc-123/votes", "/topics/{id}/votes"},
		{"topic ranking", "/topics/abc-123/ranking", "/topics/{id}/ranking"},
		{"topic comments", "/topics/abc-123/comments", "/topics/{id}/comments"},
		{"scores by game", "/scores/reaction", "/scores/{game_id}"},
		{"unknown subresource", "/topics/abc/unknown", "/topics/abc/unknown"},
		{"unknown route", "/something/else", "/something/else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePath(tt.path)
			if got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestHTTPMetrics_RecordsRequests(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/topics/abc-123/pair", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == MetricHTTPRequestsTotal {
			found = true
			if len(mf.GetMetric()) != 1 {
				t.Errorf("expected 1 metric entry, got %d", len(mf.GetMetric()))
			}
			for _, label := range mf.GetMetric()[0].GetLabel() {
				if label.GetName() == "path" && label.GetValue() != "/topics/{id}/pair" {
					t.Errorf("expected normalized path label, got %q", label.GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("http_requests_total metric not recorded")
	}
}

func TestHTTPMetrics_ExcludesHealthEndpoints(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() == MetricHTTPRequestsTotal && len(mf.GetMetric()) > 0 {
			t.Errorf("expected no metrics for health endpoints, got %d entries", len(mf.GetMetric()))
		}
	}
}

func TestMetricsResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	mrw := newMetricsResponseWriter(rec)

	mrw.WriteHeader(http.StatusNotFound)
	mrw.WriteHeader(http.StatusOK) // ignored, first write wins

	if mrw.statusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", mrw.statusCode)
	}

	n, err := mrw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != 5 || mrw.size != 5 {
		t.Errorf("expected size 5, got n=%d size=%d", n, mrw.size)
	}
}
