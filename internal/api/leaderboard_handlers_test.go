package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestSubmitScore(t *testing.T) {
	env := newTestEnv(t)

	body := `{"game_id":"reaction","nickname":"speedy","score":231,"meta":{"rounds":[210,231,252]}}`
	rec := env.do(t, http.MethodPost, "/scores", &body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var resp ScoreResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected an assigned score ID")
	}
	if resp.Score != 231 {
		t.Errorf("expected score 231, got %d", resp.Score)
	}
	if resp.Meta == nil {
		t.Error("expected meta to roundtrip")
	}
}

func TestSubmitScore_NegativeClampedToZero(t *testing.T) {
	env := newTestEnv(t)

	body := `{"game_id":"timing","nickname":"early","score":-40}`
	rec := env.do(t, http.MethodPost, "/scores", &body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp ScoreResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Score != 0 {
		t.Errorf("expected negative score clamped to 0, got %d", resp.Score)
	}
}

func TestSubmitScore_UnknownGame(t *testing.T) {
	env := newTestEnv(t)

	body := `{"game_id":"chess","nickname":"gm","score":10}`
	rec := env.do(t, http.MethodPost, "/scores", &body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != ErrCodeUnknownGame {
		t.Errorf("expected unknown_game, got %q", code)
	}
}

func TestSubmitScore_InvalidNickname(t *testing.T) {
	env := newTestEnv(t)

	body := `{"game_id":"aim","nickname":"","score":5}`
	rec := env.do(t, http.MethodPost, "/scores", &body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != ErrCodeValidation {
		t.Errorf("expected validation_error, got %q", code)
	}
}

func TestGetTopScores(t *testing.T) {
	env := newTestEnv(t)

	for i, score := range []int{50, 90, 70} {
		body := fmt.Sprintf(`{"game_id":"memory","nickname":"p%d","score":%d}`, i, score)
		if rec := env.do(t, http.MethodPost, "/scores", &body); rec.Code != http.StatusCreated {
			t.Fatalf("failed to submit score: %d", rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/scores/memory", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TopScoresResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(resp.Scores))
	}
	if resp.Scores[0].Score != 90 || resp.Scores[1].Score != 70 || resp.Scores[2].Score != 50 {
		t.Errorf("expected scores [90 70 50], got [%d %d %d]",
			resp.Scores[0].Score, resp.Scores[1].Score, resp.Scores[2].Score)
	}
	if resp.Total != 3 {
		t.Errorf("expected total 3, got %d", resp.Total)
	}
}

func TestGetTopScores_Limit(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"game_id":"number","nickname":"p%d","score":%d}`, i, i*10)
		if rec := env.do(t, http.MethodPost, "/scores", &body); rec.Code != http.StatusCreated {
			t.Fatalf("failed to submit score: %d", rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/scores/number?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TopScoresResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Scores) != 2 {
		t.Errorf("expected 2 scores, got %d", len(resp.Scores))
	}
	// The total counts every submission, not just the page served.
	if resp.Total != 5 {
		t.Errorf("expected total 5, got %d", resp.Total)
	}
}

func TestGetTopScores_UnknownGame(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/scores/poker", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != ErrCodeUnknownGame {
		t.Errorf("expected unknown_game, got %q", code)
	}
}
