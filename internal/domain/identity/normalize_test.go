package identity

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		in    string
		want  string
	}{
		{name: "lowercases", in: "Gary Ablett", want: "gary ablett"},
		{name: "strips punctuation", in: "O'Brien, D.", want: "obrien d"},
		{name: "collapses whitespace", in: "  Nick \t Riewoldt  ", want: "nick riewoldt"},
		{name: "keeps digits", in: "Tom Smith2", want: "tom smith2"},
		{name: "drops diacritic characters", in: "José", want: "jos"},
		{name: "empty", in: "  ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Gary Ablett",
		"O'Brien, D.",
		"  Nick \t Riewoldt  ",
		"Tom Smith2",
		"José",
		"  ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestSlugName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "/players/A/Gary_Ablett.html", want: "gary ablett"},
		{in: "/players/A/Gary_Ablett2.html", want: "gary ablett"},
		{in: "https://afltables.com/afl/stats/players/M/William_Mohr.html", want: "william mohr"},
		{in: "Kelly_Smith_Jones.html", want: "kelly smith jones"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		if got := SlugName(tc.in); got != tc.want {
			t.Fatalf("SlugName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSurname(t *testing.T) {
	t.Parallel()

	if got := Surname("Tom Smith2"); got != "smith" {
		t.Fatalf("expected trailing digits trimmed from surname, got %q", got)
	}
	if got := Surname(""); got != "" {
		t.Fatalf("expected empty surname for blank input, got %q", got)
	}
}
