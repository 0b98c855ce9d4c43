package identity

import (
	"strings"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
)

const (
	// maxProbeCombinations bounds the cartesian product of per-token
	// spelling variants so a many-token query cannot explode into
	// hundreds of upstream requests.
	maxProbeCombinations = 120

	// maxProbeSuffix covers the archive's numeric disambiguation of
	// players sharing a name (Name0.html .. Name5.html).
	maxProbeSuffix = 5
)

// ProbeCandidates builds plausible profile page paths for a player absent
// from the index. Paths are relative to the archive base URL. The primary
// spelling comes first, then its numeric-suffix variants, then the rest of
// the variant combinations.
func ProbeCandidates(name string) []gamelog.ProfileEntry {
	tokens := strings.Fields(strings.TrimSpace(name))
	if len(tokens) == 0 {
		return nil
	}

	variantsPerToken := make([][]string, 0, len(tokens))
	for i, token := range tokens {
		variantsPerToken = append(variantsPerToken, tokenVariants(token, i == 0))
	}

	combos := cartesian(variantsPerToken, maxProbeCombinations)
	if len(combos) == 0 {
		return nil
	}

	out := make([]gamelog.ProfileEntry, 0, len(combos)+maxProbeSuffix+1)
	out = append(out, probeEntry(combos[0], ""))
	for suffix := '0'; suffix <= '0'+maxProbeSuffix; suffix++ {
		out = append(out, probeEntry(combos[0], string(suffix)))
	}
	for _, combo := range combos[1:] {
		out = append(out, probeEntry(combo, ""))
	}

	return dedupeByURL(out)
}

func probeEntry(combo []string, suffix string) gamelog.ProfileEntry {
	slug := strings.Join(combo, "_") + suffix
	letter := surnameLetter(combo)
	return gamelog.ProfileEntry{
		Name: strings.Join(combo, " "),
		URL:  "/players/" + letter + "/" + slug + ".html",
	}
}

func surnameLetter(combo []string) string {
	last := combo[len(combo)-1]
	if last == "" {
		return "A"
	}
	return strings.ToUpper(last[:1])
}

// tokenVariants lists plausible archive spellings of one name token:
// title case, collapsed doubled letters, hyphen handling, and for the
// leading token its bare initial.
func tokenVariants(token string, first bool) []string {
	seen := make(map[string]struct{}, 6)
	out := make([]string, 0, 6)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	base := titleCase(token)
	add(base)
	add(titleCase(collapseDoubles(token)))

	if strings.Contains(token, "-") {
		add(titleCase(strings.ReplaceAll(token, "-", "")))
		parts := strings.Split(token, "-")
		for i := range parts {
			parts[i] = titleCase(parts[i])
		}
		add(strings.Join(parts, "-"))
		add(strings.Join(parts, "_"))
	}

	if first && len(base) > 0 {
		add(base[:1])
	}

	return out
}

func titleCase(token string) string {
	if token == "" {
		return ""
	}
	lower := strings.ToLower(token)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func collapseDoubles(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	var prev rune = -1
	for _, r := range token {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func cartesian(sets [][]string, limit int) [][]string {
	combos := [][]string{{}}
	for _, set := range sets {
		next := make([][]string, 0, len(combos)*len(set))
		for _, combo := range combos {
			for _, v := range set {
				if len(next) >= limit {
					break
				}
				extended := make([]string, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, v))
			}
		}
		combos = next
	}
	return combos
}

func dedupeByURL(entries []gamelog.ProfileEntry) []gamelog.ProfileEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, entry := range entries {
		if _, ok := seen[entry.URL]; ok {
			continue
		}
		seen[entry.URL] = struct{}{}
		out = append(out, entry)
	}
	return out
}
