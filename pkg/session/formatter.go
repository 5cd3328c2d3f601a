package session

import (
	"regexp"
	"strings"
)

// Deterministic cleanup of raw LLM output. Every rule is anchored or
// line-scoped so real content is never rewritten, only framing noise.

var leadingMetaRe = regexp.MustCompile(`(?i)^\s*(?:` +
	`here(?:'s| is) (?:what i (?:created|wrote|came up with)|the (?:content|copy|draft|text))` +
	`|i(?:'ve| have) (?:generated|created|written|drafted) (?:the following|this|the content)` +
	`|sure[,!]? here(?:'s| is)[^\n]*` +
	`|below is (?:the|your) [^\n:]*` +
	`)[:.!]?\s*\n+`)

var noteLineRe = regexp.MustCompile(`(?im)^(?:note:|note that|keep in mind that|remember that)\s[^\n]*\n?`)

var closingRemarkRe = regexp.MustCompile(`(?i)\n*(?:` +
	`i hope this helps[^\n]*` +
	`|let me know if[^\n]*` +
	`|feel free to (?:adjust|tweak|modify)[^\n]*` +
	`|happy to (?:revise|adjust|iterate)[^\n]*` +
	`)\s*$`)

var multiBlankRe = regexp.MustCompile(`\n{3,}`)

// FormatResponse normalizes generated content: strips leading
// meta-commentary and closing remarks, drops standalone note lines, trims
// per-line trailing spaces, collapses runs of blank lines, normalizes
// spacing around headers, and promotes a bare first-line title to a header.
// Pure function.
func FormatResponse(raw string) string {
	text := leadingMetaRe.ReplaceAllString(raw, "")
	text = noteLineRe.ReplaceAllString(text, "")
	text = closingRemarkRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	text = strings.TrimSpace(text)
	text = stripStrayLeader(text)
	text = promoteFirstLineHeader(text)
	text = normalizeHeaderSpacing(text)
	text = multiBlankRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// stripStrayLeader removes punctuation residue left at the very start after
// meta-commentary removal: a lone colon, or a first line of only colons and
// dashes. Legitimate list markers ("- item") are left alone.
func stripStrayLeader(text string) string {
	text = strings.TrimPrefix(text, ":")

	idx := strings.IndexByte(text, '\n')
	first := text
	if idx != -1 {
		first = text[:idx]
	}
	if first != "" && strings.Trim(first, ":- \t") == "" {
		if idx == -1 {
			return ""
		}
		text = text[idx+1:]
	}
	return strings.TrimLeft(text, "\n ")
}

// promoteFirstLineHeader turns a bare short title line into a markdown
// header when nothing else in the first line marks structure.
func promoteFirstLineHeader(text string) string {
	idx := strings.IndexByte(text, '\n')
	if idx == -1 {
		return text
	}
	first := text[:idx]
	rest := text[idx:]

	if first == "" || len(first) > 60 {
		return text
	}
	if strings.HasPrefix(first, "#") || strings.HasPrefix(first, "-") || strings.HasPrefix(first, "*") {
		return text
	}
	if strings.ContainsAny(first, ".!?") {
		return text
	}
	// Only promote when a blank line follows, i.e. it reads as a title.
	if !strings.HasPrefix(rest, "\n\n") {
		return text
	}
	return "## " + first + rest
}

// normalizeHeaderSpacing guarantees exactly one blank line before each
// header and one after it when body text follows immediately.
func normalizeHeaderSpacing(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for i, line := range lines {
		isHeader := strings.HasPrefix(line, "#")
		if isHeader && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
		if isHeader && i+1 < len(lines) && lines[i+1] != "" && !strings.HasPrefix(lines[i+1], "#") {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}
