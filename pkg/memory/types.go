// Package memory implements the per-workspace style memory: durable
// preferences and anti-patterns that shape all future content generation for
// a workspace, plus the signal extractor that mines them from feedback
// comments.
package memory

import "time"

// Current schema version written to new documents. Older versions are carried
// through untouched.
const SchemaVersion = 1

// Update types produced by the signal extractor.
const (
	UpdatePreference  = "preference"
	UpdateAntiPattern = "anti-pattern"
)

// Well-known style preference keys recognized by the keyword classifier.
const (
	PrefTone       = "tone"
	PrefEmojiUsage = "emojiUsage"
	PrefFormality  = "formality"
)

// StylePreferences holds named preference keys plus freeform voice notes.
type StylePreferences struct {
	Settings   map[string]string `json:"settings,omitempty"`
	VoiceNotes []string          `json:"voiceNotes,omitempty"`
}

// WorkspaceMemory is the single durable document per workspace.
type WorkspaceMemory struct {
	StylePreferences StylePreferences `json:"stylePreferences"`
	AntiPatterns     []string         `json:"antiPatterns,omitempty"`
	LastUpdated      time.Time        `json:"lastUpdated"`
	Version          int              `json:"version"`
}

// IsEmpty reports whether the memory carries no preferences or anti-patterns.
func (m *WorkspaceMemory) IsEmpty() bool {
	return len(m.StylePreferences.Settings) == 0 &&
		len(m.StylePreferences.VoiceNotes) == 0 &&
		len(m.AntiPatterns) == 0
}

// Update is one structured preference or anti-pattern change extracted from a
// feedback comment.
type Update struct {
	Type  string // UpdatePreference or UpdateAntiPattern
	Value string
	Avoid string // companion value from "prefer X over Y" comparisons
}

// defaultMemory returns a well-formed empty document.
func defaultMemory() *WorkspaceMemory {
	return &WorkspaceMemory{
		StylePreferences: StylePreferences{Settings: make(map[string]string)},
		Version:          SchemaVersion,
	}
}
