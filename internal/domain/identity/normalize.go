package identity

import (
	"strings"
	"unicode"
)

// Normalize lowercases the input, drops every character outside [a-z0-9 ],
// and collapses whitespace runs to single spaces. Normalization is the
// common ground for all name comparisons: "O'Brien " and "obrien" agree.
func Normalize(s string) string {
	lower := strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// SlugName derives a comparable player name from a profile URL: the final
// path segment, minus the .html suffix and any disambiguation digits, with
// underscores read as token separators. "players/A/Gary_Ablett2.html"
// becomes "gary ablett".
func SlugName(pageURL string) string {
	slug := pageURL
	if i := strings.LastIndexByte(slug, '/'); i >= 0 {
		slug = slug[i+1:]
	}
	slug = strings.TrimSuffix(slug, ".html")
	slug = trimTrailingDigits(slug)
	return Normalize(strings.ReplaceAll(slug, "_", " "))
}

// Tokens splits a name into normalized tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Surname returns the normalized final token of a name with any trailing
// archive disambiguation digits removed ("smith2" -> "smith").
func Surname(s string) string {
	tokens := Tokens(s)
	if len(tokens) == 0 {
		return ""
	}
	return trimTrailingDigits(tokens[len(tokens)-1])
}

func trimTrailingDigits(token string) string {
	end := len(token)
	for end > 0 && token[end-1] >= '0' && token[end-1] <= '9' {
		end--
	}
	return token[:end]
}
