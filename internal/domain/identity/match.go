package identity

import (
	"strings"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
)

// Match resolves a free-text player name against the index. Rules are tried
// strictly in order of confidence; within a rule the first listed entry wins
// so resolution stays deterministic for a given index ordering. Rules 1-3
// compare the query against both the entry's display name and the name
// derived from its URL slug, since index spellings drift between the two.
//
//  1. exact normalized equality against name or slug
//  2. substring in either direction against name, or slug containment
//  3. every query token a substring of the name or slug (two-token minimum)
//  4. matching surname plus agreeing first initial
func Match(query string, entries []gamelog.ProfileEntry) (gamelog.ProfileEntry, bool) {
	nq := Normalize(query)
	if nq == "" {
		return gamelog.ProfileEntry{}, false
	}

	for _, rule := range matchRules {
		for _, entry := range entries {
			if rule.accepts(nq, entry) {
				return entry, true
			}
		}
	}

	return gamelog.ProfileEntry{}, false
}

// MatchAll lists every entry some rule accepts, strongest rule first and
// index order within a rule, deduplicated by URL. The first element is what
// Match returns; later elements are the fallbacks a caller works through
// when a fetched page turns out to belong to someone else.
func MatchAll(query string, entries []gamelog.ProfileEntry) []gamelog.ProfileEntry {
	nq := Normalize(query)
	if nq == "" {
		return nil
	}

	seen := make(map[string]struct{}, 4)
	var out []gamelog.ProfileEntry
	for _, rule := range matchRules {
		for _, entry := range entries {
			if _, dup := seen[entry.URL]; dup {
				continue
			}
			if !rule.accepts(nq, entry) {
				continue
			}
			seen[entry.URL] = struct{}{}
			out = append(out, entry)
		}
	}

	return out
}

type matchRule struct {
	match   func(query, candidate string) bool
	useSlug bool
}

var matchRules = []matchRule{
	{matchExact, true},
	{matchSubstring, true},
	{matchTokenSubset, true},
	{matchInitialSurname, false},
}

func (r matchRule) accepts(query string, entry gamelog.ProfileEntry) bool {
	if r.match(query, Normalize(entry.Name)) {
		return true
	}
	return r.useSlug && r.match(query, SlugName(entry.URL))
}

func matchExact(query, entry string) bool {
	return entry != "" && entry == query
}

func matchSubstring(query, entry string) bool {
	if entry == "" {
		return false
	}
	return strings.Contains(entry, query) || strings.Contains(query, entry)
}

func matchTokenSubset(query, entry string) bool {
	queryTokens := strings.Fields(query)
	if len(queryTokens) < 2 || entry == "" {
		return false
	}

	// Substring containment per token lets a short form reach its long
	// spelling ("ben" inside "benjamin").
	for _, token := range queryTokens {
		if !strings.Contains(entry, trimTrailingDigits(token)) {
			return false
		}
	}
	return true
}

func matchInitialSurname(query, entry string) bool {
	queryTokens := strings.Fields(query)
	entryTokens := strings.Fields(entry)
	if len(queryTokens) < 2 || len(entryTokens) < 2 {
		return false
	}

	querySurname := trimTrailingDigits(queryTokens[len(queryTokens)-1])
	entrySurname := trimTrailingDigits(entryTokens[len(entryTokens)-1])
	if querySurname == "" || entrySurname == "" {
		return false
	}
	surnameAgrees := querySurname == entrySurname ||
		strings.HasPrefix(querySurname, entrySurname) ||
		strings.HasPrefix(entrySurname, querySurname)
	if !surnameAgrees {
		return false
	}

	return queryTokens[0][0] == entryTokens[0][0]
}

// TitleMatchesSurname reports whether a fetched page's title plausibly
// belongs to the queried player: the query surname must appear as a token
// of the normalized title. Guards against probe URLs landing on the wrong
// player's page.
func TitleMatchesSurname(title, query string) bool {
	surname := Surname(query)
	if surname == "" {
		return false
	}
	for _, token := range Tokens(title) {
		if trimTrailingDigits(token) == surname {
			return true
		}
	}
	return false
}
