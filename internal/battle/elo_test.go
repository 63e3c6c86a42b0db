package battle

import (
	"math"
	"testing"
)

func TestExpected_EqualRatings(t *testing.T) {
	if got := Expected(1500, 1500); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected(1500, 1500) = %f, want 0.5", got)
	}
}

func TestExpected_Complementary(t *testing.T) {
	a, b := Expected(1700, 1400), Expected(1400, 1700)
	if math.Abs(a+b-1.0) > 1e-9 {
		t.Errorf("Expectations should sum to 1, got %f + %f", a, b)
	}
	if a <= b {
		t.Errorf("Higher-rated player should be favored: %f vs %f", a, b)
	}
}

func TestUpdate_EqualRatings(t *testing.T) {
	w, l := Update(1500, 1500, DefaultEloParams())
	if w != 1516 {
		t.Errorf("Winner: expected 1516, got %d", w)
	}
	if l != 1484 {
		t.Errorf("Loser: expected 1484, got %d", l)
	}
}

func TestUpdate_UpsetMovesMore(t *testing.T) {
	p := DefaultEloParams()

	// Favorite wins: small movement.
	favW, _ := Update(1800, 1400, p)
	// Underdog wins: large movement.
	dogW, _ := Update(1400, 1800, p)

	favGain := favW - 1800
	dogGain := dogW - 1400
	if dogGain <= favGain {
		t.Errorf("Upset should move ratings more: favorite +%d, underdog +%d", favGain, dogGain)
	}
}

func TestUpdate_WinnerAlwaysGains(t *testing.T) {
	p := DefaultEloParams()
	// Even a massive favorite must gain at least a point.
	w, l := Update(3000, 100, p)
	if w <= 3000 {
		t.Errorf("Winner must strictly gain, got %d", w)
	}
	if l >= 100 {
		t.Errorf("Loser must strictly drop, got %d", l)
	}
}

func TestUpdate_FloorClamps(t *testing.T) {
	_, l := Update(1500, 0, DefaultEloParams())
	if l != 0 {
		t.Errorf("Loser rating must not go below the floor, got %d", l)
	}
	_, l = Update(1500, 5, DefaultEloParams())
	if l < 0 {
		t.Errorf("Loser rating must not go negative, got %d", l)
	}
}

func TestUpdate_CustomK(t *testing.T) {
	w16, _ := Update(1500, 1500, EloParams{K: 16})
	w64, _ := Update(1500, 1500, EloParams{K: 64})
	if w16 != 1508 {
		t.Errorf("K=16: expected 1508, got %d", w16)
	}
	if w64 != 1532 {
		t.Errorf("K=64: expected 1532, got %d", w64)
	}
}
