package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hanbyul-dev/matchup/internal/battle"
	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/middleware"
	"github.com/hanbyul-dev/matchup/internal/topic"
)

// BattleHandlers holds dependencies for duel HTTP handlers.
type BattleHandlers struct {
	battles *battle.Service
}

// NewBattleHandlers creates a new BattleHandlers instance.
func NewBattleHandlers(battles *battle.Service) *BattleHandlers {
	return &BattleHandlers{battles: battles}
}

// PairResponse represents a duel pair served to a client.
type PairResponse struct {
	TopicID string     `json:"topic_id"`
	Left    *item.Item `json:"left"`
	Right   *item.Item `json:"right"`
}

// VoteRequest represents the request body for recording a duel outcome.
type VoteRequest struct {
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
}

// GetPair handles GET /topics/{id}/pair - serves the next duel pair.
// The X-Session-Key header scopes back-to-back repeat avoidance.
func (h *BattleHandlers) GetPair(w http.ResponseWriter, r *http.Request, topicID string) {
	sessionKey := middleware.GetSessionKey(r.Context())

	left, right, err := h.battles.SelectPair(r.Context(), topicID, sessionKey)
	if err != nil {
		h.writeBattleError(w, r, err, topicID)
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, PairResponse{
		TopicID: topicID,
		Left:    left,
		Right:   right,
	})
}

// RecordVote handles POST /topics/{id}/votes - applies a duel outcome.
func (h *BattleHandlers) RecordVote(w http.ResponseWriter, r *http.Request, topicID string) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	if req.WinnerID == "" || req.LoserID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "winner_id and loser_id are required")
		return
	}

	outcome, err := h.battles.RecordOutcome(r.Context(), topicID, req.WinnerID, req.LoserID)
	if err != nil {
		h.writeBattleError(w, r, err, topicID)
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, outcome)
}

// writeBattleError maps battle service errors onto the API error
// envelope. A pair that spans topics is a state problem with the
// referenced resources, not a malformed request, so it reports
// invalid_state like a mode mismatch does.
func (h *BattleHandlers) writeBattleError(w http.ResponseWriter, r *http.Request, err error, topicID string) {
	var code, message string
	switch {
	case errors.Is(err, topic.ErrTopicNotFound):
		code, message = ErrCodeNotFound, "Topic not found"
	case errors.Is(err, item.ErrItemNotFound):
		code, message = ErrCodeNotFound, "Item not found"
	case errors.Is(err, battle.ErrModeMismatch):
		code, message = ErrCodeInvalidState, "Topic is not a battle topic"
	case errors.Is(err, battle.ErrNoPair):
		code, message = ErrCodeNoPair, "Topic needs at least two items for a duel"
	case errors.Is(err, battle.ErrSameItem):
		code, message = ErrCodeValidation, "winner_id and loser_id must differ"
	case errors.Is(err, battle.ErrCrossTopic):
		code, message = ErrCodeInvalidState, "Both items must belong to the topic"
	case errors.Is(err, battle.ErrConflict):
		code, message = ErrCodeConflict, "Vote lost to concurrent updates, please retry"
	default:
		slog.ErrorContext(r.Context(), "battle operation failed", "error", err, "topic_id", topicID)
		code, message = ErrCodeInternal, "Operation failed"
	}

	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, StatusCodeMapping(code), code, message)
}
