// Package api provides HTTP handlers for the Matchup API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/middleware"
	"github.com/hanbyul-dev/matchup/internal/ranking"
	"github.com/hanbyul-dev/matchup/internal/topic"
	"github.com/hanbyul-dev/matchup/internal/validate"
)

// TopicHandlers holds dependencies for topic HTTP handlers.
type TopicHandlers struct {
	topicRepo topic.Repository
	itemRepo  item.Repository
	rankings  *ranking.Service
}

// NewTopicHandlers creates a new TopicHandlers instance.
func NewTopicHandlers(topicRepo topic.Repository, itemRepo item.Repository, rankings *ranking.Service) *TopicHandlers {
	return &TopicHandlers{
		topicRepo: topicRepo,
		itemRepo:  itemRepo,
		rankings:  rankings,
	}
}

// TopicResponse is a topic with its resolved mode and presentation routes.
type TopicResponse struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Category   string            `json:"category,omitempty"`
	Mode       string            `json:"mode"`
	PlayPath   string            `json:"play_path"`
	ResultPath string            `json:"result_path"`
	Content    string            `json:"content,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newTopicResponse(t *topic.Topic) TopicResponse {
	return TopicResponse{
		ID:         t.ID,
		Title:      t.Title,
		Category:   t.Category,
		Mode:       string(topic.ResolveMode(t)),
		PlayPath:   string(topic.PlayPath(t)),
		ResultPath: string(topic.ResultPath(t)),
		Content:    t.Content,
		Meta:       t.Meta,
		CreatedAt:  t.CreatedAt,
	}
}

// CreateTopicRequest represents the request body for creating a topic.
type CreateTopicRequest struct {
	Title    string            `json:"title"`
	Category string            `json:"category"`
	Mode     string            `json:"mode"`
	Content  string            `json:"content"`
	Meta     map[string]string `json:"meta"`
}

// ListTopics handles GET /topics - lists all topics, newest first.
func (h *TopicHandlers) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topicRepo.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list topics", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list topics")
		return
	}

	out := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, newTopicResponse(t))
	}
	WriteJSON(w, r.Context(), http.StatusOK, out)
}

// CreateTopic handles POST /topics - creates a new topic.
func (h *TopicHandlers) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	title, err := validate.TopicTitle(req.Title)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "title must be 1-200 characters")
		return
	}

	// Mode is write-once; reject anything outside the closed set rather
	// than storing a value the resolver would silently ignore.
	switch req.Mode {
	case "", "A", "B", "C", "D":
	default:
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "mode must be one of A, B, C, D")
		return
	}

	t := &topic.Topic{
		Title:    title,
		Category: strings.TrimSpace(req.Category),
		Mode:     req.Mode,
		Content:  req.Content,
		Meta:     req.Meta,
	}
	if err := h.topicRepo.Create(r.Context(), t); err != nil {
		slog.ErrorContext(r.Context(), "failed to create topic", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create topic")
		return
	}

	WriteJSON(w, r.Context(), http.StatusCreated, newTopicResponse(t))
}

// GetTopic handles GET /topics/{id} - returns a topic with its resolved
// mode and presentation routes.
func (h *TopicHandlers) GetTopic(w http.ResponseWriter, r *http.Request, topicID string) {
	t, err := h.topicRepo.GetByID(r.Context(), topicID)
	if err != nil {
		if errors.Is(err, topic.ErrTopicNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Topic not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get topic", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve topic")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, newTopicResponse(t))
}

// RankingResponse wraps ranking rows with topic context.
type RankingResponse struct {
	TopicID string        `json:"topic_id"`
	Mode    string        `json:"mode"`
	Rows    []ranking.Row `json:"rows"`
}

// GetRanking handles GET /topics/{id}/ranking - returns the current
// ranking projection for a topic.
func (h *TopicHandlers) GetRanking(w http.ResponseWriter, r *http.Request, topicID string) {
	t, err := h.topicRepo.GetByID(r.Context(), topicID)
	if err != nil {
		if errors.Is(err, topic.ErrTopicNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Topic not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get topic", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve topic")
		return
	}

	rows, err := h.rankings.Ranking(r.Context(), topicID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build ranking", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to build ranking")
		return
	}
	if rows == nil {
		rows = []ranking.Row{}
	}

	WriteJSON(w, r.Context(), http.StatusOK, RankingResponse{
		TopicID: topicID,
		Mode:    string(topic.ResolveMode(t)),
		Rows:    rows,
	})
}
