package afltables

import (
	"strconv"
	"strings"
	"testing"
)

const testPageURL = "https://archive.test/players/R/Matthew_Richardson.html"

func tr(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, cell := range cells {
		b.WriteString("<td>" + cell + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func headerRow() string {
	return tr(
		"Gm", "Opponent", "Rd", "R", "#",
		"KI", "MK", "HB", "DI", "GL", "BH", "HO", "TK", "RB", "IF",
		"CL", "CG", "FF", "FA", "BR", "CP", "UP", "CM", "MI", "1%",
		"BO", "GA", "%P",
	)
}

func gameCells(gm, opponent string) []string {
	cells := []string{gm, opponent, "4", "W 27", "14"}
	for i := 1; i <= 22; i++ {
		cells = append(cells, strconv.Itoa(i))
	}
	return append(cells, "85")
}

func profileHTML(body string) []byte {
	return []byte("<html><head><title>Matthew Richardson - Game by Game</title></head><body><table>" +
		body + "</table></body></html>")
}

func TestParseProfile_SeasonMarkersAndRows(t *testing.T) {
	t.Parallel()

	html := profileHTML(
		tr("Richmond - 2006") +
			headerRow() +
			tr(gameCells("1", `<a href="../games/2006/041420060401.html">Carlton</a>`)...) +
			tr("Totals", "x") +
			tr("Richmond - 2007") +
			headerRow() +
			tr(gameCells("1", "Geelong")...) +
			tr(gameCells("2", "Essendon")...) +
			tr("Averages", "x"),
	)

	page, err := parseProfile(html, testPageURL, 0)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}

	if page.Title != "Matthew Richardson - Game by Game" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if len(page.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page.Rows))
	}

	first := page.Rows[0]
	if first.Season != 2006 || first.GameNumber != 1 {
		t.Fatalf("unexpected first row season=%d game=%d", first.Season, first.GameNumber)
	}
	if first.Opponent != "Carlton" || first.Round != "4" || first.Result != "W 27" {
		t.Fatalf("unexpected descriptive cells %+v", first)
	}
	if first.Guernsey == nil || *first.Guernsey != 14 {
		t.Fatalf("expected guernsey 14, got %v", first.Guernsey)
	}
	if first.Kicks != 1 || first.Marks != 2 || first.GoalAssists != 22 {
		t.Fatalf("unexpected stat mapping kicks=%d marks=%d assists=%d", first.Kicks, first.Marks, first.GoalAssists)
	}
	if first.PercentPlayed == nil || *first.PercentPlayed != 85 {
		t.Fatalf("expected percent played 85, got %v", first.PercentPlayed)
	}

	if page.Rows[1].Season != 2007 || page.Rows[2].Season != 2007 {
		t.Fatalf("expected later rows in 2007, got %d and %d", page.Rows[1].Season, page.Rows[2].Season)
	}
}

func TestParseProfile_MatchURLAbsolutized(t *testing.T) {
	t.Parallel()

	html := profileHTML(
		tr("Richmond - 2006") +
			headerRow() +
			tr(gameCells("1", `<a href="../games/2006/0414.html">Carlton</a>`)...) +
			tr(gameCells("2", `<a href="https://elsewhere.test/g.html">Geelong</a>`)...),
	)

	page, err := parseProfile(html, testPageURL, 0)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}
	if len(page.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Rows))
	}

	if got := page.Rows[0].MatchURL; got != "https://archive.test/players/games/2006/0414.html" {
		t.Fatalf("unexpected resolved match url %q", got)
	}
	if got := page.Rows[1].MatchURL; got != "https://elsewhere.test/g.html" {
		t.Fatalf("expected absolute match url untouched, got %q", got)
	}
}

func TestParseProfile_DropsShortRowsKeepsTable(t *testing.T) {
	t.Parallel()

	html := profileHTML(
		tr("Richmond - 2006") +
			headerRow() +
			tr("1", "Carlton", "4") +
			tr(gameCells("2", "Geelong")...),
	)

	page, err := parseProfile(html, testPageURL, 0)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}
	if len(page.Rows) != 1 {
		t.Fatalf("expected the short row dropped, got %d rows", len(page.Rows))
	}
	if page.Rows[0].GameNumber != 2 {
		t.Fatalf("expected the following full row kept, got game %d", page.Rows[0].GameNumber)
	}
}

func TestParseProfile_MalformedRowDroppedTableContinues(t *testing.T) {
	t.Parallel()

	html := profileHTML(
		tr("Richmond - 2006") +
			headerRow() +
			tr(gameCells("1", "Carlton")...) +
			tr("suspended", "irrelevant") +
			tr(gameCells("2", "Geelong")...),
	)

	page, err := parseProfile(html, testPageURL, 0)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}
	if len(page.Rows) != 2 {
		t.Fatalf("expected the malformed row dropped and later rows kept, got %d rows", len(page.Rows))
	}
	if page.Rows[0].GameNumber != 1 || page.Rows[1].GameNumber != 2 {
		t.Fatalf("unexpected game numbers %d and %d", page.Rows[0].GameNumber, page.Rows[1].GameNumber)
	}
}

func TestParseProfile_SeasonHint(t *testing.T) {
	t.Parallel()

	html := profileHTML(
		headerRow() +
			tr(gameCells("1", "Carlton")...),
	)

	page, err := parseProfile(html, testPageURL, 1998)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0].Season != 1998 {
		t.Fatalf("expected hint season 1998 applied, got %+v", page.Rows)
	}

	// Without a hint or marker the header row cannot activate the table.
	page, err = parseProfile(html, testPageURL, 0)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}
	if len(page.Rows) != 0 {
		t.Fatalf("expected no rows without season context, got %d", len(page.Rows))
	}
}

func TestParseProfile_MalformedNumericCellsDefaultToZero(t *testing.T) {
	t.Parallel()

	cells := gameCells("1", "Carlton")
	cells[colGuernsey] = "-"
	cells[colFirstStat] = "abc"
	cells[colPercentPlayed] = ""

	html := profileHTML(tr("Richmond - 2006") + headerRow() + tr(cells...))

	page, err := parseProfile(html, testPageURL, 0)
	if err != nil {
		t.Fatalf("parseProfile: %v", err)
	}
	if len(page.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(page.Rows))
	}

	row := page.Rows[0]
	if row.Guernsey != nil {
		t.Fatalf("expected nil guernsey for dash cell, got %v", *row.Guernsey)
	}
	if row.Kicks != 0 {
		t.Fatalf("expected malformed kicks cell to default to 0, got %d", row.Kicks)
	}
	if row.PercentPlayed != nil {
		t.Fatalf("expected nil percent played for blank cell, got %v", *row.PercentPlayed)
	}
}
