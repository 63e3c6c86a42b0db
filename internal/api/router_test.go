package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanbyul-dev/matchup/internal/battle"
	"github.com/hanbyul-dev/matchup/internal/comment"
	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/leaderboard"
	"github.com/hanbyul-dev/matchup/internal/ranking"
	"github.com/hanbyul-dev/matchup/internal/topic"
)

// testEnv bundles the in-memory repositories behind a fully wired router.
type testEnv struct {
	mux         *http.ServeMux
	topics      *topic.InMemoryRepository
	items       *item.InMemoryRepository
	comments    *comment.InMemoryRepository
	leaderboard *leaderboard.InMemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	topicRepo := topic.NewInMemoryRepository()
	itemRepo := item.NewInMemoryRepository()
	commentRepo := comment.NewInMemoryRepository()
	leaderboardRepo := leaderboard.NewInMemoryRepository()

	battleService := battle.NewService(topicRepo, itemRepo, nil, battle.DefaultEloParams(), nil, nil)
	rankingService := ranking.NewService(topicRepo, itemRepo, nil)
	leaderboardService := leaderboard.NewService(leaderboardRepo, nil)

	mux := NewRouter(RouterConfig{
		Topics:       NewTopicHandlers(topicRepo, itemRepo, rankingService),
		Items:        NewItemHandlers(itemRepo, topicRepo),
		Battles:      NewBattleHandlers(battleService),
		Comments:     NewCommentHandlers(commentRepo, topicRepo),
		Leaderboards: NewLeaderboardHandlers(leaderboardService),
		Health:       NewHealthHandlers(HealthHandlersConfig{}),
		Registry:     prometheus.NewRegistry(),
	})

	return &testEnv{
		mux:         mux,
		topics:      topicRepo,
		items:       itemRepo,
		comments:    commentRepo,
		leaderboard: leaderboardRepo,
	}
}

// seedBattleTopic creates a battle topic with two rated items.
func (e *testEnv) seedBattleTopic(t *testing.T) (*topic.Topic, *item.Item, *item.Item) {
	t.Helper()
	ctx := context.Background()

	tp := &topic.Topic{Title: "Best arcade game", Mode: "A"}
	if err := e.topics.Create(ctx, tp); err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}
	a := &item.Item{TopicID: tp.ID, Name: "pacman", Rating: 1500}
	b := &item.Item{TopicID: tp.ID, Name: "galaga", Rating: 1500}
	for _, it := range []*item.Item{a, b} {
		if err := e.items.Create(ctx, it); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}
	}
	return tp, a, b
}

func (e *testEnv) do(t *testing.T, method, path string, body *string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(*body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v (body %q)", err, rec.Body.String())
	}
	return resp.Error.Code
}

func TestRouter_RootAndUnknownPaths(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/nonexistent", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nonexistent: expected 404, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != ErrCodeNotFound {
		t.Errorf("expected not_found error code, got %q", code)
	}
}

func TestRouter_HealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/ready"} {
		rec := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics: expected 200, got %d", rec.Code)
	}
}

func TestRouter_MethodDispatch(t *testing.T) {
	env := newTestEnv(t)
	tp, _, _ := env.seedBattleTopic(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodDelete, "/topics", http.StatusMethodNotAllowed},
		{http.MethodPost, "/topics/" + tp.ID, http.StatusMethodNotAllowed},
		{http.MethodDelete, "/topics/" + tp.ID + "/items", http.StatusMethodNotAllowed},
		{http.MethodPost, "/topics/" + tp.ID + "/pair", http.StatusMethodNotAllowed},
		{http.MethodGet, "/topics/" + tp.ID + "/votes", http.StatusMethodNotAllowed},
		{http.MethodPost, "/topics/" + tp.ID + "/ranking", http.StatusMethodNotAllowed},
		{http.MethodGet, "/topics/" + tp.ID + "/unknown", http.StatusNotFound},
		{http.MethodPost, "/scores/reaction", http.StatusMethodNotAllowed},
		{http.MethodGet, "/scores", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		rec := env.do(t, tt.method, tt.path, nil)
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}
}

func TestRouter_MissingTopicID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/topics/", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
