package engine

import "testing"

func TestNextRating_Sequence(t *testing.T) {
	var avg float64
	var count int64

	steps := []struct {
		rating float64
		avg    float64
		count  int64
	}{
		{rating: 5, avg: 5.0, count: 1},
		{rating: 3, avg: 4.0, count: 2},
		{rating: 4, avg: 4.0, count: 3},
	}

	for i, step := range steps {
		avg, count = NextRating(avg, count, step.rating)
		if avg != step.avg || count != step.count {
			t.Errorf("step %d: expected (%v, %d), got (%v, %d)", i, step.avg, step.count, avg, count)
		}
	}
}

func TestNextRating_Rounding(t *testing.T) {
	// (5 + 4 + 4) / 3 = 4.333… → 4.3
	avg, count := NextRating(4.5, 2, 4)
	if avg != 4.3 || count != 3 {
		t.Errorf("expected (4.3, 3), got (%v, %d)", avg, count)
	}

	// (1 + 2) / 2 = 1.5 → 1.5
	avg, _ = NextRating(1, 1, 2)
	if avg != 1.5 {
		t.Errorf("expected 1.5, got %v", avg)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, out float64
	}{
		{in: 4.25, out: 4.3},
		{in: 4.24, out: 4.2},
		{in: 3.95, out: 4.0},
		{in: -1.25, out: -1.3},
		{in: 0, out: 0},
	}

	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.out {
			t.Errorf("Round1(%v): expected %v, got %v", tt.in, tt.out, got)
		}
	}
}
