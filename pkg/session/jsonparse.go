package session

import (
	"encoding/json"
	"strings"
)

// ParseLayer records which recovery layer produced a parse result.
type ParseLayer int

const (
	// ParsedDirect - the text parsed as-is (after fence stripping).
	ParsedDirect ParseLayer = iota
	// ParsedRecovered - parsing succeeded only after re-slicing between the
	// first '{' and last '}'.
	ParsedRecovered
	// ParseFailed - no layer produced valid JSON; the caller falls back to
	// defaults and keeps the raw text.
	ParseFailed
)

func (l ParseLayer) String() string {
	switch l {
	case ParsedDirect:
		return "direct"
	case ParsedRecovered:
		return "recovered"
	case ParseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// stripCodeFences removes a markdown code fence wrapper (``` or ```json)
// when the text is fenced. Unfenced text is returned trimmed.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx != -1 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			trimmed = trimmed[idx+1:]
		}
	}
	if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) <= 10
}

// parseJSONResponse decodes LLM output into out using layered recovery:
// fence strip, direct parse, then re-slice between the first '{' and last
// '}'. Returns the layer that succeeded, or ParseFailed.
func parseJSONResponse(text string, out any) ParseLayer {
	cleaned := stripCodeFences(text)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return ParsedDirect
	}

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return ParsedRecovered
		}
	}

	return ParseFailed
}
