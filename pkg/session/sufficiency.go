package session

import (
	"context"
	"fmt"
	"strings"

	"copysmith/pkg/agent/llm"
	"copysmith/pkg/tracker"
)

// Fallback sufficiency thresholds: a trimmed description must be at least
// this long AND carry more than this many words to be treated as workable.
const (
	minDescriptionChars = 10
	minDescriptionWords = 3
)

const genericElicitation = "Could you add a bit more detail to the issue description? " +
	"What should the content cover, who is it for, and where will it be published?"

// filterComments drops the agent's own comments and thread-header
// boilerplate so counts reflect genuine user input.
func filterComments(comments []tracker.Comment) []tracker.Comment {
	var filtered []tracker.Comment
	for _, c := range comments {
		if c.User.IsMe {
			continue
		}
		body := strings.TrimSpace(c.Body)
		if body == "" || strings.HasPrefix(body, "This thread is for") {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// AnalyzeSufficiency judges whether the issue carries enough information to
// generate useful content. The primary path is one LLM call returning a JSON
// verdict; on call or parse failure a deterministic description-length rule
// applies.
func (o *Orchestrator) AnalyzeSufficiency(ctx context.Context, issue *tracker.Issue) *SufficiencyVerdict {
	userComments := filterComments(issue.Comments)

	projectName := ""
	if issue.Project != nil {
		projectName = issue.Project.Name
	}
	prompt := fmt.Sprintf(sufficiencyPromptTemplate,
		issue.Title, issue.Description, projectName,
		len(issue.Attachments), len(userComments))

	resp, err := o.llmClient.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.CompletionMessage{llm.NewUserMessage(prompt)},
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		o.logger.Warn("Sufficiency call failed, using fallback rule: %v", err)
		return fallbackSufficiency(issue.Description)
	}

	var verdict SufficiencyVerdict
	if layer := parseJSONResponse(resp.Content, &verdict); layer == ParseFailed {
		o.logger.Warn("Sufficiency response unparseable (%s), using fallback rule", layer)
		return fallbackSufficiency(issue.Description)
	}
	if verdict.Quality == "" {
		verdict.Quality = "medium"
	}
	return &verdict
}

// fallbackSufficiency is the deterministic rule: sufficient iff the trimmed
// description meets the length threshold and is more than a few words.
func fallbackSufficiency(description string) *SufficiencyVerdict {
	trimmed := strings.TrimSpace(description)
	if len(trimmed) >= minDescriptionChars && len(strings.Fields(trimmed)) > minDescriptionWords {
		return &SufficiencyVerdict{
			IsSufficient: true,
			Quality:      "low",
			Reasoning:    "fallback length rule",
		}
	}
	return &SufficiencyVerdict{
		IsSufficient:        false,
		Quality:             "low",
		MissingInformation:  []string{"a description of the content to create"},
		ElicitationQuestion: genericElicitation,
		Reasoning:           "fallback length rule",
	}
}

// elicitationMessage picks the question to send when context is
// insufficient: the LLM's question, else one templated from the first
// missing item, else a generic default.
func elicitationMessage(verdict *SufficiencyVerdict) string {
	if q := strings.TrimSpace(verdict.ElicitationQuestion); q != "" {
		return q
	}
	if len(verdict.MissingInformation) > 0 {
		return fmt.Sprintf("Before I start, could you provide %s?", verdict.MissingInformation[0])
	}
	return genericElicitation
}
