package db

import "testing"

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"amy":      "amy",
		"50%":      `50\%`,
		"first_na": `first\_na`,
		`a\b`:      `a\\b`,
	}
	for in, want := range cases {
		if got := EscapeLike(in); got != want {
			t.Fatalf("EscapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
