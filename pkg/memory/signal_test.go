package memory

import "testing"

func TestExtractAntiPatterns(t *testing.T) {
	cases := []struct {
		comment string
		want    string
	}{
		{"never use exclamation marks", "use exclamation marks"},
		{"please never use exclamation marks", "use exclamation marks"},
		{"don't ever mention competitors", "mention competitors"},
		{"dont ever mention competitors", "mention competitors"},
		{"avoid passive voice", "passive voice"},
		{"stop adding hashtags", "adding hashtags"},
		{"AVOID corporate jargon", "corporate jargon"},
	}

	for _, tc := range cases {
		update := Extract(tc.comment)
		if update == nil {
			t.Errorf("Extract(%q) = nil, want anti-pattern", tc.comment)
			continue
		}
		if update.Type != UpdateAntiPattern {
			t.Errorf("Extract(%q) type = %s, want %s", tc.comment, update.Type, UpdateAntiPattern)
		}
		if update.Value != tc.want {
			t.Errorf("Extract(%q) value = %q, want %q", tc.comment, update.Value, tc.want)
		}
		if update.Avoid != "" {
			t.Errorf("Extract(%q) unexpected avoid %q", tc.comment, update.Avoid)
		}
	}
}

func TestExtractPreferences(t *testing.T) {
	cases := []struct {
		comment string
		want    string
	}{
		{"always use a casual tone", "use a casual tone"},
		{"from now on keep posts under 200 words", "keep posts under 200 words"},
		{"from now on, keep posts under 200 words", "keep posts under 200 words"},
		{"remember to include a call to action", "include a call to action"},
		{"default to British spelling", "British spelling"},
	}

	for _, tc := range cases {
		update := Extract(tc.comment)
		if update == nil {
			t.Errorf("Extract(%q) = nil, want preference", tc.comment)
			continue
		}
		if update.Type != UpdatePreference {
			t.Errorf("Extract(%q) type = %s, want %s", tc.comment, update.Type, UpdatePreference)
		}
		if update.Value != tc.want {
			t.Errorf("Extract(%q) value = %q, want %q", tc.comment, update.Value, tc.want)
		}
	}
}

func TestExtractComparative(t *testing.T) {
	update := Extract("prefer dark mode over light mode")
	if update == nil {
		t.Fatal("expected a match")
	}
	if update.Type != UpdatePreference {
		t.Errorf("type = %s, want %s", update.Type, UpdatePreference)
	}
	if update.Value != "dark mode" {
		t.Errorf("value = %q, want %q", update.Value, "dark mode")
	}
	if update.Avoid != "light mode" {
		t.Errorf("avoid = %q, want %q", update.Avoid, "light mode")
	}
}

func TestExtractNoSignal(t *testing.T) {
	for _, comment := range []string{
		"let's ship this",
		"looks great, thanks!",
		"",
		"can you tweak the second paragraph?",
	} {
		if update := Extract(comment); update != nil {
			t.Errorf("Extract(%q) = %+v, want nil", comment, update)
		}
	}
}

// Anti-pattern category must win when both categories could match.
func TestExtractCategoryPrecedence(t *testing.T) {
	update := Extract("always be brief and never use emoji")
	if update == nil {
		t.Fatal("expected a match")
	}
	if update.Type != UpdateAntiPattern {
		t.Errorf("type = %s, want anti-pattern to win over preference", update.Type)
	}
	if update.Value != "use emoji" {
		t.Errorf("value = %q, want %q", update.Value, "use emoji")
	}
}
