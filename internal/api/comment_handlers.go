package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hanbyul-dev/matchup/internal/comment"
	"github.com/hanbyul-dev/matchup/internal/middleware"
	"github.com/hanbyul-dev/matchup/internal/topic"
	"github.com/hanbyul-dev/matchup/internal/validate"
)

// CommentHandlers holds dependencies for comment HTTP handlers.
type CommentHandlers struct {
	commentRepo comment.Repository
	topicRepo   topic.Repository
}

// NewCommentHandlers creates a new CommentHandlers instance.
func NewCommentHandlers(commentRepo comment.Repository, topicRepo topic.Repository) *CommentHandlers {
	return &CommentHandlers{
		commentRepo: commentRepo,
		topicRepo:   topicRepo,
	}
}

// CreateCommentRequest represents the request body for posting a comment.
type CreateCommentRequest struct {
	Nickname string `json:"nickname"`
	Body     string `json:"body"`
}

// ListComments handles GET /topics/{id}/comments - returns recent comments,
// newest first, capped at 50.
func (h *CommentHandlers) ListComments(w http.ResponseWriter, r *http.Request, topicID string) {
	if _, err := h.topicRepo.GetByID(r.Context(), topicID); err != nil {
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

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	comments, err := h.commentRepo.ListRecentByTopic(r.Context(), topicID, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list comments", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list comments")
		return
	}
	if comments == nil {
		comments = []*comment.Comment{}
	}

	WriteJSON(w, r.Context(), http.StatusOK, comments)
}

// CreateComment handles POST /topics/{id}/comments - appends a comment.
func (h *CommentHandlers) CreateComment(w http.ResponseWriter, r *http.Request, topicID string) {
	if _, err := h.topicRepo.GetByID(r.Context(), topicID); err != nil {
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

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	nickname, err := validate.Nickname(req.Nickname)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "nickname must be 1-24 allowed characters")
		return
	}
	body, err := validate.CommentBody(req.Body)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "body must be 1-500 characters")
		return
	}

	c := &comment.Comment{
		TopicID:  topicID,
		Nickname: nickname,
		Body:     body,
	}
	if err := h.commentRepo.Create(r.Context(), c); err != nil {
		slog.ErrorContext(r.Context(), "failed to create comment", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to save comment")
		return
	}

	WriteJSON(w, r.Context(), http.StatusCreated, c)
}
