package memory

import (
	"fmt"
	"strings"
	"time"
)

// NoPreferencesMessage is returned by FormatForDisplay for an empty memory.
const NoPreferencesMessage = "I don't have any saved preferences for this workspace yet. " +
	"Leave me feedback like \"always use a casual tone\" or \"never use exclamation marks\" and I'll remember it."

// FormatForDisplay renders a deterministic markdown summary of the workspace
// memory for the "show preferences" command.
func FormatForDisplay(mem *WorkspaceMemory, now time.Time) string {
	if mem == nil || mem.IsEmpty() {
		return NoPreferencesMessage
	}

	var b strings.Builder
	b.WriteString("## Saved preferences\n\n")

	if tone, ok := mem.StylePreferences.Settings[PrefTone]; ok {
		fmt.Fprintf(&b, "- **Tone**: %s\n", tone)
	}
	if emoji, ok := mem.StylePreferences.Settings[PrefEmojiUsage]; ok {
		fmt.Fprintf(&b, "- **Emoji usage**: %s\n", emoji)
	}
	if formality, ok := mem.StylePreferences.Settings[PrefFormality]; ok {
		fmt.Fprintf(&b, "- **Formality**: %s\n", formality)
	}

	if len(mem.StylePreferences.VoiceNotes) > 0 {
		b.WriteString("\n### Voice notes\n")
		for _, note := range mem.StylePreferences.VoiceNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	if len(mem.AntiPatterns) > 0 {
		b.WriteString("\n### Things to avoid\n")
		for _, ap := range mem.AntiPatterns {
			fmt.Fprintf(&b, "- %s\n", ap)
		}
	}

	if !mem.LastUpdated.IsZero() {
		fmt.Fprintf(&b, "\n_Last updated: %s_\n", relativeDays(mem.LastUpdated, now))
	}

	return b.String()
}

// relativeDays phrases the age of the memory in whole days.
func relativeDays(updated, now time.Time) string {
	days := int(now.Sub(updated).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}
