package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanbyul-dev/matchup/internal/middleware"
)

// RouterConfig carries the handler groups and shared infrastructure the
// router mounts.
type RouterConfig struct {
	Topics       *TopicHandlers
	Items        *ItemHandlers
	Battles      *BattleHandlers
	Comments     *CommentHandlers
	Leaderboards *LeaderboardHandlers
	Health       *HealthHandlers

	// Registry serves GET /metrics when set.
	Registry *prometheus.Registry
}

// NewRouter builds the HTTP mux for the API. Path parameters are split
// by hand; nested topic resources dispatch on the segment after the ID.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", cfg.Health.Health)
	mux.HandleFunc("/ready", cfg.Health.Ready)

	if cfg.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/topics", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Topics.ListTopics(w, r)
		case http.MethodPost:
			cfg.Topics.CreateTopic(w, r)
		default:
			writeMethodNotAllowed(w, r)
		}
	})

	mux.HandleFunc("/topics/", func(w http.ResponseWriter, r *http.Request) {
		// Extract topic ID and optional subresource from URL path
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/topics/"), "/")
		if pathParts[0] == "" {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Topic ID is required")
			return
		}
		topicID := pathParts[0]

		if len(pathParts) == 1 {
			if r.Method != http.MethodGet {
				writeMethodNotAllowed(w, r)
				return
			}
			cfg.Topics.GetTopic(w, r, topicID)
			return
		}

		switch pathParts[1] {
		case "items":
			switch r.Method {
			case http.MethodGet:
				cfg.Items.ListItems(w, r, topicID)
			case http.MethodPost:
				cfg.Items.CreateItem(w, r, topicID)
			default:
				writeMethodNotAllowed(w, r)
			}
		case "pair":
			if r.Method != http.MethodGet {
				writeMethodNotAllowed(w, r)
				return
			}
			cfg.Battles.GetPair(w, r, topicID)
		case "votes":
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, r)
				return
			}
			cfg.Battles.RecordVote(w, r, topicID)
		case "ranking":
			if r.Method != http.MethodGet {
				writeMethodNotAllowed(w, r)
				return
			}
			cfg.Topics.GetRanking(w, r, topicID)
		case "comments":
			switch r.Method {
			case http.MethodGet:
				cfg.Comments.ListComments(w, r, topicID)
			case http.MethodPost:
				cfg.Comments.CreateComment(w, r, topicID)
			default:
				writeMethodNotAllowed(w, r)
			}
		default:
			writeNotFound(w, r)
		}
	})

	mux.HandleFunc("/scores", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, r)
			return
		}
		cfg.Leaderboards.SubmitScore(w, r)
	})

	mux.HandleFunc("/scores/", func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/scores/"), "/")
		if gameID == "" || strings.Contains(gameID, "/") {
			writeNotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		cfg.Leaderboards.GetTopScores(w, r, gameID)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			writeNotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"matchup-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	return mux
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
	WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
}
