package afltables

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
)

// Game-by-game tables interleave three kinds of rows in document order:
// a "<Team> - <Year>" season marker, a header row starting with the game
// and opponent columns, and data rows. The parser walks every <tr> once,
// tracking the current season and whether it is inside an active table.

var seasonMarkerRe = regexp.MustCompile(`^(.*\S)\s+-\s+((?:18|19|20)\d{2})$`)

const (
	headerGameCell     = "gm"
	headerOpponentCell = "opponent"

	// Column layout of a game row. PercentPlayed is absent on old pages,
	// so a row is kept once it reaches the goal-assists column.
	colGameNumber    = 0
	colOpponent      = 1
	colRound         = 2
	colResult        = 3
	colGuernsey      = 4
	colFirstStat     = 5
	colPercentPlayed = 27
	minRowCells      = colPercentPlayed
)

var summaryLabels = map[string]struct{}{
	"totals":   {},
	"averages": {},
}

type profilePage struct {
	Title string
	Rows  []gamelog.Row
}

func parseProfile(raw []byte, pageURL string, seasonHint int) (profilePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return profilePage{}, fmt.Errorf("parse document: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	page := profilePage{
		Title: normalizeSpace(doc.Find("title").First().Text()),
	}

	currentSeason := seasonHint
	insideTable := false

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rowText := normalizeSpace(tr.Text())
		if m := seasonMarkerRe.FindStringSubmatch(rowText); m != nil {
			season, convErr := strconv.Atoi(m[2])
			if convErr == nil {
				currentSeason = season
			}
			insideTable = false
			return
		}

		cells := tr.Find("th, td")
		if cells.Length() == 0 {
			return
		}

		first := normalizeSpace(cells.Eq(0).Text())
		second := ""
		if cells.Length() > 1 {
			second = normalizeSpace(cells.Eq(1).Text())
		}

		if strings.EqualFold(first, headerGameCell) && strings.EqualFold(second, headerOpponentCell) {
			insideTable = currentSeason != 0
			return
		}

		if !insideTable {
			return
		}

		if _, summary := summaryLabels[strings.ToLower(first)]; summary {
			return
		}

		gameNumber, convErr := strconv.Atoi(first)
		if convErr != nil {
			// Malformed data row; drop it and keep reading the table.
			return
		}

		if cells.Length() < minRowCells {
			return
		}

		row := gamelog.Row{
			Season:     currentSeason,
			GameNumber: gameNumber,
			Opponent:   normalizeSpace(cells.Eq(colOpponent).Text()),
			Round:      normalizeSpace(cells.Eq(colRound).Text()),
			Result:     normalizeSpace(cells.Eq(colResult).Text()),
			Guernsey:   parseIntPtr(cells.Eq(colGuernsey).Text()),
		}

		if href, ok := tr.Find("a[href]").First().Attr("href"); ok {
			row.MatchURL = absolutize(base, href)
		}

		stats := make([]int, 0, colPercentPlayed-colFirstStat)
		for i := colFirstStat; i < colPercentPlayed; i++ {
			stats = append(stats, parseIntDefault(cells.Eq(i).Text()))
		}
		assignStats(&row, stats)

		if cells.Length() > colPercentPlayed {
			row.PercentPlayed = parseFloatPtr(cells.Eq(colPercentPlayed).Text())
		}

		page.Rows = append(page.Rows, row)
	})

	return page, nil
}

func assignStats(row *gamelog.Row, stats []int) {
	targets := []*int{
		&row.Kicks, &row.Marks, &row.Handballs, &row.Disposals,
		&row.Goals, &row.Behinds, &row.HitOuts, &row.Tackles,
		&row.Rebound50s, &row.Inside50s, &row.Clearances, &row.Clangers,
		&row.FreesFor, &row.FreesAgainst, &row.BrownlowVotes,
		&row.ContestedPossessions, &row.UncontestedPossessions,
		&row.ContestedMarks, &row.MarksInside50, &row.OnePercenters,
		&row.Bounces, &row.GoalAssists,
	}
	for i, target := range targets {
		if i < len(stats) {
			*target = stats[i]
		}
	}
}

func absolutize(base *url.URL, href string) string {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if base == nil {
		return trimmed
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return base.ResolveReference(ref).String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseIntDefault reads a stat cell, treating blanks, dashes and any
// malformed value as zero.
func parseIntDefault(s string) int {
	v, err := strconv.Atoi(normalizeSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func parseIntPtr(s string) *int {
	v, err := strconv.Atoi(normalizeSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func parseFloatPtr(s string) *float64 {
	cleaned := strings.TrimSuffix(normalizeSpace(s), "%")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
