package memory

import (
	"regexp"
	"strings"
)

// Feedback signal patterns, checked in order. Anti-pattern triggers are
// checked before preference triggers; the first match wins and no further
// category is considered, so ambiguous phrasing is resolved by precedence
// rather than disambiguation.
//
//nolint:gochecknoglobals // compiled once
var (
	antiPatternRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnever\s+(.+)`),
		regexp.MustCompile(`(?i)\bdon'?t\s+ever\s+(.+)`),
		regexp.MustCompile(`(?i)\bavoid\s+(.+)`),
		regexp.MustCompile(`(?i)\bstop\s+(.+)`),
	}
	preferenceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\balways\s+(.+)`),
		regexp.MustCompile(`(?i)\bfrom\s+now\s+on[,:]?\s+(.+)`),
		regexp.MustCompile(`(?i)\bremember\s+to\s+(.+)`),
		regexp.MustCompile(`(?i)\bdefault\s+to\s+(.+)`),
	}
	comparativeRe = regexp.MustCompile(`(?i)\bprefer\s+(.+?)\s+over\s+(.+)`)
)

// Extract turns a free-text feedback comment into at most one structured
// memory update. It returns nil when the comment carries no extractable
// signal.
func Extract(comment string) *Update {
	for _, re := range antiPatternRes {
		if m := re.FindStringSubmatch(comment); m != nil {
			return &Update{Type: UpdateAntiPattern, Value: strings.TrimSpace(m[1])}
		}
	}

	for _, re := range preferenceRes {
		if m := re.FindStringSubmatch(comment); m != nil {
			return &Update{Type: UpdatePreference, Value: strings.TrimSpace(m[1])}
		}
	}

	if m := comparativeRe.FindStringSubmatch(comment); m != nil {
		return &Update{
			Type:  UpdatePreference,
			Value: strings.TrimSpace(m[1]),
			Avoid: strings.TrimSpace(m[2]),
		}
	}

	return nil
}
