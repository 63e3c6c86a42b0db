package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/middleware"
	"github.com/hanbyul-dev/matchup/internal/topic"
	"github.com/hanbyul-dev/matchup/internal/validate"
)

// ItemHandlers holds dependencies for item HTTP handlers.
type ItemHandlers struct {
	itemRepo  item.Repository
	topicRepo topic.Repository
}

// NewItemHandlers creates a new ItemHandlers instance.
func NewItemHandlers(itemRepo item.Repository, topicRepo topic.Repository) *ItemHandlers {
	return &ItemHandlers{
		itemRepo:  itemRepo,
		topicRepo: topicRepo,
	}
}

// CreateItemRequest represents the request body for adding an item.
type CreateItemRequest struct {
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	RankOrder   int    `json:"rank_order"`
}

// ListItems handles GET /topics/{id}/items - returns the topic's items
// in rating order.
func (h *ItemHandlers) ListItems(w http.ResponseWriter, r *http.Request, topicID string) {
	if !h.requireTopic(w, r, topicID) {
		return
	}

	items, err := h.itemRepo.ListByTopic(r.Context(), topicID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list items", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list items")
		return
	}
	if items == nil {
		items = []*item.Item{}
	}

	WriteJSON(w, r.Context(), http.StatusOK, items)
}

// CreateItem handles POST /topics/{id}/items - adds an item to a topic.
// New items start at the default rating with zeroed counters.
func (h *ItemHandlers) CreateItem(w http.ResponseWriter, r *http.Request, topicID string) {
	if !h.requireTopic(w, r, topicID) {
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	name, err := validate.ItemName(req.Name)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "name must be 1-100 characters")
		return
	}

	it := &item.Item{
		TopicID:     topicID,
		Name:        name,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Description: req.Description,
		RankOrder:   req.RankOrder,
	}
	if err := h.itemRepo.Create(r.Context(), it); err != nil {
		slog.ErrorContext(r.Context(), "failed to create item", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create item")
		return
	}

	WriteJSON(w, r.Context(), http.StatusCreated, it)
}

// requireTopic writes a 404 envelope and returns false when the topic
// doesn't exist.
func (h *ItemHandlers) requireTopic(w http.ResponseWriter, r *http.Request, topicID string) bool {
	if _, err := h.topicRepo.GetByID(r.Context(), topicID); err != nil {
		if errors.Is(err, topic.ErrTopicNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Topic not found")
			return false
		}
		slog.ErrorContext(r.Context(), "failed to get topic", "error", err, "topic_id", topicID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to retrieve topic")
		return false
	}
	return true
}
