package session

import "testing"

func TestIsOutOfScope(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"pure engineering", "Fix bug in login flow", "", true},
		{"engineering with copy keyword", "Write copy for fix bug in login flow", "", false},
		{"refactor request", "Refactor the billing service", "split the module", true},
		{"plain copywriting", "Draft launch announcement", "for the new feature", false},
		{"docs about a migration", "Migration guide", "write documentation for the database schema change", false},
		{"no keywords either way", "Quarterly planning", "discuss roadmap", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOutOfScope(tc.title, tc.description); got != tc.want {
				t.Errorf("IsOutOfScope(%q, %q) = %v, want %v", tc.title, tc.description, got, tc.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name    string
		comment string
		want    Command
		ok      bool
	}{
		{"show", "@copysmith show preferences", CommandShowPreferences, true},
		{"show my", "hey @copysmith, show my preferences please", CommandShowPreferences, true},
		{"forget", "@copysmith forget preferences", CommandForgetPreferences, true},
		{"clear all", "@Copysmith clear all preferences", CommandForgetPreferences, true},
		{"no mention", "show preferences", "", false},
		{"mention without command", "@copysmith make it punchier", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCommand("copysmith", tc.comment)
			if ok != tc.ok || got != tc.want {
				t.Errorf("ParseCommand(%q) = (%q, %v), want (%q, %v)", tc.comment, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestForgetWinsOverShow(t *testing.T) {
	// A comment matching both directives resolves to forget, the stronger
	// action, so the parser must check it first.
	cmd, ok := ParseCommand("copysmith", "@copysmith forget preferences and then show preferences")
	if !ok || cmd != CommandForgetPreferences {
		t.Errorf("got (%q, %v)", cmd, ok)
	}
}
