package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hanbyul-dev/matchup/internal/leaderboard"
	"github.com/hanbyul-dev/matchup/internal/middleware"
	"github.com/hanbyul-dev/matchup/internal/validate"
)

// LeaderboardHandlers holds dependencies for score HTTP handlers.
type LeaderboardHandlers struct {
	scores *leaderboard.Service
}

// NewLeaderboardHandlers creates a new LeaderboardHandlers instance.
func NewLeaderboardHandlers(scores *leaderboard.Service) *LeaderboardHandlers {
	return &LeaderboardHandlers{scores: scores}
}

// SubmitScoreRequest represents the request body for submitting a score.
type SubmitScoreRequest struct {
	GameID   string         `json:"game_id"`
	Nickname string         `json:"nickname"`
	Score    int            `json:"score"`
	Meta     map[string]any `json:"meta"`
}

// ScoreResponse is a stored score with its meta decoded back for clients.
type ScoreResponse struct {
	ID        string         `json:"id"`
	GameID    string         `json:"game_id"`
	Nickname  string         `json:"nickname"`
	Score     int            `json:"score"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt string         `json:"created_at"`
}

func newScoreResponse(gs *leaderboard.GameScore) ScoreResponse {
	// Decode failures surface as a missing meta rather than a failed
	// read; the blob is opaque and may predate the current encoder.
	meta, err := leaderboard.DecodeMeta(gs.Meta)
	if err != nil {
		slog.Warn("failed to decode score meta", "error", err, "score_id", gs.ID)
		meta = nil
	}
	return ScoreResponse{
		ID:        gs.ID,
		GameID:    gs.GameID,
		Nickname:  gs.Nickname,
		Score:     gs.Score,
		Meta:      meta,
		CreatedAt: gs.CreatedAt.Format(time.RFC3339),
	}
}

// TopScoresResponse is a game's best scores plus the total number of
// submissions, so clients can show "top 10 of 3,214".
type TopScoresResponse struct {
	GameID string          `json:"game_id"`
	Total  int             `json:"total"`
	Scores []ScoreResponse `json:"scores"`
}

// SubmitScore handles POST /scores - records one mini-game play result.
func (h *LeaderboardHandlers) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req SubmitScoreRequest
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

	gs, err := h.scores.Submit(r.Context(), req.GameID, nickname, req.Score, req.Meta)
	if err != nil {
		if errors.Is(err, leaderboard.ErrUnknownGame) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnknownGame)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeUnknownGame, "Unknown game")
			return
		}
		slog.ErrorContext(r.Context(), "failed to submit score", "error", err, "game_id", req.GameID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to save score")
		return
	}

	WriteJSON(w, r.Context(), http.StatusCreated, newScoreResponse(gs))
}

// GetTopScores handles GET /scores/{game_id} - returns the best scores
// for a game, highest first. ?limit=N caps the list (default 10, max 100).
func (h *LeaderboardHandlers) GetTopScores(w http.ResponseWriter, r *http.Request, gameID string) {
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

	scores, err := h.scores.Top(r.Context(), gameID, limit)
	if err != nil {
		if errors.Is(err, leaderboard.ErrUnknownGame) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnknownGame)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeUnknownGame, "Unknown game")
			return
		}
		slog.ErrorContext(r.Context(), "failed to list scores", "error", err, "game_id", gameID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list scores")
		return
	}

	total, err := h.scores.Count(r.Context(), gameID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count scores", "error", err, "game_id", gameID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list scores")
		return
	}

	out := make([]ScoreResponse, 0, len(scores))
	for _, gs := range scores {
		out = append(out, newScoreResponse(gs))
	}
	WriteJSON(w, r.Context(), http.StatusOK, TopScoresResponse{
		GameID: gameID,
		Total:  total,
		Scores: out,
	})
}
