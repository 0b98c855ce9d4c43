package cache

import (
	"net/url"
	"testing"
)

func TestStableKey_IgnoresPaginationAndOrdersFilters(t *testing.T) {
	t.Parallel()

	a := StableKey("gamelogs", map[string]string{
		"season": "2007",
		"player": "gary ablett",
		"page":   "3",
		"cursor": "abc",
	})
	b := StableKey("gamelogs", map[string]string{
		"player": "gary ablett",
		"season": "2007",
		"limit":  "50",
	})

	if a != b {
		t.Fatalf("expected pagination-invariant keys, got %q and %q", a, b)
	}
	if a != "gamelogs|player=gary ablett|season=2007" {
		t.Fatalf("unexpected canonical key %q", a)
	}
}

func TestStableKey_DifferentFiltersDiffer(t *testing.T) {
	t.Parallel()

	a := StableKey("gamelogs", map[string]string{"season": "2007", "player": "gary ablett"})
	b := StableKey("gamelogs", map[string]string{"season": "2008", "player": "gary ablett"})

	if a == b {
		t.Fatal("expected different seasons to produce different keys")
	}
}

func TestRequestKey_UsesLegacyForUnknownParams(t *testing.T) {
	t.Parallel()

	filters := map[string]string{"season": "2007", "player_name": "gary ablett"}

	known, _ := url.ParseQuery("season=2007&player_name=Gary+Ablett&page=2")
	if got := RequestKey("gamelogs", known, filters); got != StableKey("gamelogs", filters) {
		t.Fatalf("expected stable key for known params, got %q", got)
	}

	extra, _ := url.ParseQuery("season=2007&player_name=Gary+Ablett&q=free+text")
	got := RequestKey("gamelogs", extra, filters)
	if got == StableKey("gamelogs", filters) {
		t.Fatal("expected legacy key for unknown params")
	}
	if got != LegacyKey("gamelogs", extra.Encode()) {
		t.Fatalf("expected deterministic legacy key, got %q", got)
	}
}
