package gamelog

// FirstSeason is the earliest season the archive covers.
const FirstSeason = 1897

// ProfileEntry is one row of the player index: the display name and the
// absolute URL of the player's game-by-game page.
type ProfileEntry struct {
	Name string
	URL  string
}

// Row is a single game line from a player's game-by-game table.
// Guernsey and PercentPlayed are optional on older pages.
type Row struct {
	Season     int
	GameNumber int
	Opponent   string
	Round      string
	Result     string
	Guernsey   *int

	Kicks                  int
	Marks                  int
	Handballs              int
	Disposals              int
	Goals                  int
	Behinds                int
	HitOuts                int
	Tackles                int
	Rebound50s             int
	Inside50s              int
	Clearances             int
	Clangers               int
	FreesFor               int
	FreesAgainst           int
	BrownlowVotes          int
	ContestedPossessions   int
	UncontestedPossessions int
	ContestedMarks         int
	MarksInside50          int
	OnePercenters          int
	Bounces                int
	GoalAssists            int

	PercentPlayed *float64
	MatchURL      string
}

// FilterSeason returns the rows played in the given season, preserving order.
func FilterSeason(rows []Row, season int) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Season == season {
			out = append(out, row)
		}
	}
	return out
}
