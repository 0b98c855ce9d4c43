package identity

import (
	"sort"
	"strings"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
)

// Scoring weights. Signals accumulate, so an exact match also collects the
// weaker signals it implies and always outranks partial agreement.
const (
	scoreExact          = 100
	scoreSubstring      = 40
	scoreTokenSubset    = 25
	scoreInitialSurname = 20
	scoreSurnameExact   = 15
	scoreFirstInitial   = 10
)

// Candidate pairs an index entry with its match score for a query.
type Candidate struct {
	Entry gamelog.ProfileEntry
	Score int
}

// Score rates how well an entry matches the query, considering both the
// display name and the URL slug spelling.
func Score(query string, entry gamelog.ProfileEntry) int {
	nq := Normalize(query)
	ne := Normalize(entry.Name)
	ns := SlugName(entry.URL)
	if nq == "" || (ne == "" && ns == "") {
		return 0
	}
	if ne == "" {
		ne = ns
	}

	total := 0
	if matchExact(nq, ne) || matchExact(nq, ns) {
		total += scoreExact
	}
	if matchSubstring(nq, ne) || matchSubstring(nq, ns) {
		total += scoreSubstring
	}
	if matchTokenSubset(nq, ne) || matchTokenSubset(ne, nq) || matchTokenSubset(nq, ns) {
		total += scoreTokenSubset
	}
	if matchInitialSurname(nq, ne) {
		total += scoreInitialSurname
	}
	if Surname(nq) != "" && Surname(nq) == Surname(ne) {
		total += scoreSurnameExact
	}
	if firstInitial(nq) != 0 && firstInitial(nq) == firstInitial(ne) {
		total += scoreFirstInitial
	}

	return total
}

// Rank orders entries by descending score. Entries with equal scores keep
// their input order so ties resolve deterministically.
func Rank(query string, entries []gamelog.ProfileEntry) []Candidate {
	out := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		out = append(out, Candidate{Entry: entry, Score: Score(query, entry)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

func firstInitial(normalized string) byte {
	fields := strings.Fields(normalized)
	if len(fields) == 0 || len(fields[0]) == 0 {
		return 0
	}
	return fields[0][0]
}
