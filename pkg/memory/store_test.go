package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"copysmith/pkg/kvstore"
)

func newTestStore() *PrefStore {
	return NewPrefStore(kvstore.NewMemStore())
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	store := newTestStore()
	mem := store.Load(context.Background(), "ws1")

	if mem == nil {
		t.Fatal("Load returned nil")
	}
	if !mem.IsEmpty() {
		t.Error("expected empty default memory")
	}
	if mem.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", mem.Version, SchemaVersion)
	}
}

func TestUpdateAntiPatternDeduplicates(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	update := &Update{Type: UpdateAntiPattern, Value: "use exclamation marks"}
	if err := store.Update(ctx, "ws1", update); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.Update(ctx, "ws1", update); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	mem := store.Load(ctx, "ws1")
	if len(mem.AntiPatterns) != 1 {
		t.Errorf("anti-patterns = %v, want one element", mem.AntiPatterns)
	}
}

func TestUpdatePreferenceKeywordClassifier(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	cases := []struct {
		value   string
		key     string
		setting string
	}{
		{"use a casual tone", PrefTone, "casual"},
		{"keep it formal please", PrefTone, "formal"},
		{"make it playful", PrefTone, "playful"},
		{"no emoji in posts", PrefEmojiUsage, "none"},
		{"sprinkle in some emoji", PrefEmojiUsage, "moderate"},
	}

	for _, tc := range cases {
		ws := "ws-" + tc.value
		err := store.Update(ctx, ws, &Update{Type: UpdatePreference, Value: tc.value})
		if err != nil {
			t.Fatalf("Update(%q) failed: %v", tc.value, err)
		}
		mem := store.Load(ctx, ws)
		if got := mem.StylePreferences.Settings[tc.key]; got != tc.setting {
			t.Errorf("Update(%q): %s = %q, want %q", tc.value, tc.key, got, tc.setting)
		}
		if len(mem.StylePreferences.VoiceNotes) != 0 {
			t.Errorf("Update(%q): unexpected voice notes %v", tc.value, mem.StylePreferences.VoiceNotes)
		}
	}
}

func TestUpdatePreferenceFallsBackToVoiceNotes(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	err := store.Update(ctx, "ws1", &Update{Type: UpdatePreference, Value: "start with a question"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	mem := store.Load(ctx, "ws1")
	if len(mem.StylePreferences.VoiceNotes) != 1 || mem.StylePreferences.VoiceNotes[0] != "start with a question" {
		t.Errorf("voice notes = %v, want the raw value", mem.StylePreferences.VoiceNotes)
	}
	if len(mem.StylePreferences.Settings) != 0 {
		t.Errorf("unexpected settings %v", mem.StylePreferences.Settings)
	}
}

func TestUpdateComparativeAddsAvoid(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	err := store.Update(ctx, "ws1", &Update{
		Type:  UpdatePreference,
		Value: "short sentences",
		Avoid: "long paragraphs",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	mem := store.Load(ctx, "ws1")
	if len(mem.AntiPatterns) != 1 || mem.AntiPatterns[0] != "long paragraphs" {
		t.Errorf("anti-patterns = %v, want the avoid value", mem.AntiPatterns)
	}
}

func TestUpdateStampsLastUpdated(t *testing.T) {
	store := newTestStore()
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	err := store.Update(context.Background(), "ws1", &Update{Type: UpdateAntiPattern, Value: "x"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	mem := store.Load(context.Background(), "ws1")
	if !mem.LastUpdated.Equal(fixed) {
		t.Errorf("lastUpdated = %v, want %v", mem.LastUpdated, fixed)
	}
}

func TestClearRoundTrip(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	if err := store.Update(ctx, "ws1", &Update{Type: UpdateAntiPattern, Value: "x"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.Clear(ctx, "ws1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	mem := store.Load(ctx, "ws1")
	if !mem.IsEmpty() {
		t.Errorf("memory after Clear = %+v, want empty default", mem)
	}
}

func TestFormatForDisplayEmpty(t *testing.T) {
	got := FormatForDisplay(defaultMemory(), time.Now())
	if got != NoPreferencesMessage {
		t.Errorf("empty display = %q, want canned message", got)
	}
}

func TestFormatForDisplayPopulated(t *testing.T) {
	now := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	mem := &WorkspaceMemory{
		StylePreferences: StylePreferences{
			Settings:   map[string]string{PrefTone: "casual", PrefEmojiUsage: "none"},
			VoiceNotes: []string{"start with a question"},
		},
		AntiPatterns: []string{"corporate jargon"},
		LastUpdated:  now.Add(-72 * time.Hour),
		Version:      SchemaVersion,
	}

	out := FormatForDisplay(mem, now)
	for _, want := range []string{"casual", "none", "start with a question", "corporate jargon", "3 days ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("display missing %q:\n%s", want, out)
		}
	}
}

func TestFormatForDisplayToday(t *testing.T) {
	now := time.Now().UTC()
	mem := &WorkspaceMemory{
		StylePreferences: StylePreferences{Settings: map[string]string{PrefTone: "formal"}},
		LastUpdated:      now.Add(-2 * time.Hour),
		Version:          SchemaVersion,
	}

	if out := FormatForDisplay(mem, now); !strings.Contains(out, "Today") {
		t.Errorf("display missing Today line:\n%s", out)
	}
}
