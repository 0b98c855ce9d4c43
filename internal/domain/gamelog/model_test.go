package gamelog

import "testing"

func TestFilterSeason(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Season: 2006, GameNumber: 1},
		{Season: 2007, GameNumber: 1},
		{Season: 2007, GameNumber: 2},
	}

	filtered := FilterSeason(rows, 2007)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 rows for 2007, got %d", len(filtered))
	}
	if filtered[0].GameNumber != 1 || filtered[1].GameNumber != 2 {
		t.Fatal("expected row order preserved")
	}

	if got := FilterSeason(rows, 1999); len(got) != 0 {
		t.Fatalf("expected no rows for an absent season, got %d", len(got))
	}
}
