package session

import (
	"regexp"
	"strings"
)

// technicalKeywords mark engineering work we decline. Checked against the
// combined lowercase title and description.
//
//nolint:gochecknoglobals // classifier keyword table
var technicalKeywords = []string{
	"fix bug", "fix the bug", "bugfix", "debug",
	"refactor", "implement", "deploy", "deployment",
	"migrate", "migration", "database schema",
	"unit test", "code review", "pull request", "merge conflict",
	"stack trace", "null pointer", "race condition",
	"api endpoint", "ci/cd", "pipeline failure",
}

// copywritingKeywords mark content work; their presence overrides the
// technical keywords.
//
//nolint:gochecknoglobals // classifier keyword table
var copywritingKeywords = []string{
	"copy", "write", "draft", "content", "text",
	"documentation", "docs", "blog", "post", "announcement",
	"email", "newsletter", "tagline", "headline", "caption",
	"description for", "marketing",
}

// IsOutOfScope reports whether an issue is engineering work rather than
// copywriting: at least one technical keyword and no copywriting keyword.
func IsOutOfScope(title, description string) bool {
	text := strings.ToLower(title + " " + description)

	technical := false
	for _, kw := range technicalKeywords {
		if strings.Contains(text, kw) {
			technical = true
			break
		}
	}
	if !technical {
		return false
	}

	for _, kw := range copywritingKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// Command is a recognized @agent directive in a comment.
type Command string

const (
	// CommandShowPreferences renders the stored style memory.
	CommandShowPreferences Command = "show-preferences"
	// CommandForgetPreferences clears the stored style memory.
	CommandForgetPreferences Command = "forget-preferences"
)

var (
	showPrefsRe   = regexp.MustCompile(`(?i)\bshow\s+(?:my\s+|your\s+)?preferences\b`)
	forgetPrefsRe = regexp.MustCompile(`(?i)\b(?:forget|clear|reset)\s+(?:my\s+|your\s+|all\s+)?preferences\b`)
)

// ParseCommand checks a comment for an @agent command. The mention handle
// must be present; command matching is case-insensitive.
func ParseCommand(agentName, comment string) (Command, bool) {
	if !strings.Contains(strings.ToLower(comment), "@"+strings.ToLower(agentName)) {
		return "", false
	}
	if forgetPrefsRe.MatchString(comment) {
		return CommandForgetPreferences, true
	}
	if showPrefsRe.MatchString(comment) {
		return CommandShowPreferences, true
	}
	return "", false
}
