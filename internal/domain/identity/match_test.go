package identity

import (
	"testing"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
)

func indexEntries(names ...string) []gamelog.ProfileEntry {
	out := make([]gamelog.ProfileEntry, 0, len(names))
	for _, name := range names {
		out = append(out, gamelog.ProfileEntry{Name: name, URL: "/players/X/" + name + ".html"})
	}
	return out
}

func TestMatch_ExactWinsOverWeakerRules(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Gary Ablett Jr", "Gary Ablett")

	entry, ok := Match("gary ablett", entries)
	if !ok {
		t.Fatal("expected a match")
	}
	if entry.Name != "Gary Ablett" {
		t.Fatalf("expected exact match to win, got %q", entry.Name)
	}
}

func TestMatch_Substring(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Nicholas Riewoldt")

	entry, ok := Match("Riewoldt", entries)
	if !ok {
		t.Fatal("expected substring match")
	}
	if entry.Name != "Nicholas Riewoldt" {
		t.Fatalf("unexpected entry %q", entry.Name)
	}
}

func TestMatch_TokenSubsetIgnoresOrder(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Ablett, Gary")

	entry, ok := Match("gary ablett", entries)
	if !ok {
		t.Fatal("expected token-subset match for reordered name")
	}
	if entry.Name != "Ablett, Gary" {
		t.Fatalf("unexpected entry %q", entry.Name)
	}
}

func TestMatch_TokenSubsetRequiresTwoTokens(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Jack Steven")

	if _, ok := Match("steven jackson", entries); ok {
		t.Fatal("expected no match when a query token is missing")
	}
}

func TestMatch_InitialPlusSurname(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Jonathan Brown")

	entry, ok := Match("J Brown", entries)
	if !ok {
		t.Fatal("expected initial+surname match")
	}
	if entry.Name != "Jonathan Brown" {
		t.Fatalf("unexpected entry %q", entry.Name)
	}
}

func TestMatch_InitialMustAgree(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Jonathan Brown")

	if _, ok := Match("M Brown", entries); ok {
		t.Fatal("expected no match for a disagreeing initial")
	}
}

func TestMatch_EmptyQuery(t *testing.T) {
	t.Parallel()

	if _, ok := Match("  ", indexEntries("Gary Ablett")); ok {
		t.Fatal("expected no match for a blank query")
	}
}

func TestMatch_FirstEntryWinsWithinRule(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Scott Thompson", "Scott Thompson2")

	entry, ok := Match("scott thompson", entries)
	if !ok {
		t.Fatal("expected a match")
	}
	if entry.Name != "Scott Thompson" {
		t.Fatalf("expected the first qualifying entry, got %q", entry.Name)
	}
}

func TestMatch_SlugExactWinsOverNameNearMiss(t *testing.T) {
	t.Parallel()

	entries := []gamelog.ProfileEntry{
		{Name: "Henry Jones", URL: "/players/J/Henry_Jones.html"},
		{Name: "Harold Jones", URL: "/players/J/Harry_Jones.html"},
	}

	entry, ok := Match("Harry Jones", entries)
	if !ok {
		t.Fatal("expected a match")
	}
	if entry.URL != "/players/J/Harry_Jones.html" {
		t.Fatalf("expected the exact slug match to win, got %q", entry.URL)
	}
}

func TestMatch_SlugReachableWhenNameDiffers(t *testing.T) {
	t.Parallel()

	entries := []gamelog.ProfileEntry{
		{Name: "Bustling Bill", URL: "/players/M/William_Mohr.html"},
	}

	entry, ok := Match("william mohr", entries)
	if !ok {
		t.Fatal("expected a slug match when the display name is a nickname")
	}
	if entry.Name != "Bustling Bill" {
		t.Fatalf("unexpected entry %q", entry.Name)
	}
}

func TestMatch_TokenSubstringReachesLongForm(t *testing.T) {
	t.Parallel()

	entries := indexEntries("Cousins, Benjamin")

	entry, ok := Match("ben cousins", entries)
	if !ok {
		t.Fatal("expected short-form tokens to match inside longer spellings")
	}
	if entry.Name != "Cousins, Benjamin" {
		t.Fatalf("unexpected entry %q", entry.Name)
	}
}

func TestMatchAll_OrdersByRuleThenIndex(t *testing.T) {
	t.Parallel()

	entries := []gamelog.ProfileEntry{
		{Name: "G Ablett", URL: "/players/A/G_Ablett.html"},
		{Name: "Gary Ablett", URL: "/players/A/Gary_Ablett.html"},
	}

	matches := MatchAll("gary ablett", entries)
	if len(matches) != 2 {
		t.Fatalf("expected both entries accepted, got %d", len(matches))
	}
	if matches[0].Name != "Gary Ablett" {
		t.Fatalf("expected the exact match first, got %q", matches[0].Name)
	}
	if matches[1].Name != "G Ablett" {
		t.Fatalf("expected the initial-surname match second, got %q", matches[1].Name)
	}
}

func TestMatchAll_EmptyOnNoRuleHit(t *testing.T) {
	t.Parallel()

	if got := MatchAll("zebulon quirk", indexEntries("Gary Ablett")); len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestTitleMatchesSurname(t *testing.T) {
	t.Parallel()

	if !TitleMatchesSurname("Gary Ablett - AFL Archive", "gary ablett") {
		t.Fatal("expected title containing surname to validate")
	}
	if TitleMatchesSurname("Wayne Carey - AFL Archive", "gary ablett") {
		t.Fatal("expected title without surname to fail validation")
	}
	if TitleMatchesSurname("anything", "") {
		t.Fatal("expected blank query to fail validation")
	}
}
