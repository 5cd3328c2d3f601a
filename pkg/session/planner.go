package session

import (
	"context"
	"fmt"
	"strings"

	"copysmith/pkg/agent/llm"
	"copysmith/pkg/collector"
	"copysmith/pkg/memory"
)

// linkExcerptChars caps how much of each fetched link is embedded in the
// planning prompt. The full text still feeds generation via the research
// synthesis.
const linkExcerptChars = 1500

// PlanAndResearch issues the combined planning+research call and parses its
// JSON contract. On call failure, parse failure, or a plan missing its
// required fields, a generic one-section plan is returned and the raw LLM
// text is preserved as the research synthesis.
func (o *Orchestrator) PlanAndResearch(ctx context.Context, agentCtx *AgentContext) (*ContentPlan, *ResearchSummary) {
	prompt := o.buildPlanPrompt(agentCtx)

	resp, err := o.llmClient.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.CompletionMessage{llm.NewUserMessage(prompt)},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		o.logger.Warn("Planning call failed, using generic plan: %v", err)
		return fallbackPlan(agentCtx.Issue.Title, "")
	}

	var doc planResearchDoc
	layer := parseJSONResponse(resp.Content, &doc)
	if layer == ParseFailed {
		o.logger.Warn("Planning response unparseable, using generic plan")
		return fallbackPlan(agentCtx.Issue.Title, resp.Content)
	}
	if doc.Plan.ContentType == "" || doc.Plan.Reasoning == "" || len(doc.Plan.ProposedStructure.Sections) == 0 {
		o.logger.Warn("Planning response missing required fields (parse layer %s), using generic plan", layer)
		return fallbackPlan(agentCtx.Issue.Title, resp.Content)
	}

	o.logger.Debug("Plan: %s with %d sections (parse layer %s)",
		doc.Plan.ContentType, len(doc.Plan.ProposedStructure.Sections), layer)
	return &doc.Plan, &doc.Research
}

func (o *Orchestrator) buildPlanPrompt(agentCtx *AgentContext) string {
	issue := agentCtx.Issue

	project := "(none)"
	if issue.Project != nil {
		project = issue.Project.Name
		if issue.Project.Description != "" {
			project += ": " + issue.Project.Description
		}
	}

	userComments := filterComments(issue.Comments)

	var linkText strings.Builder
	for _, link := range agentCtx.Links {
		if link.Error != "" {
			continue
		}
		excerpt := link.Content
		if len(excerpt) > linkExcerptChars {
			excerpt = excerpt[:linkExcerptChars]
		}
		fmt.Fprintf(&linkText, "--- %s ---\n%s\n", link.URL, excerpt)
	}
	if linkText.Len() == 0 {
		linkText.WriteString("(none)")
	}

	var commentText strings.Builder
	for _, c := range userComments {
		fmt.Fprintf(&commentText, "%s: %s\n", c.User.Name, c.Body)
	}
	if commentText.Len() == 0 {
		commentText.WriteString("(none)")
	}

	return fmt.Sprintf(planResearchPromptTemplate,
		issue.Title, issue.Description, project,
		formatMemoryForPrompt(agentCtx.Memory),
		len(agentCtx.Images), countFetched(agentCtx.Links), len(userComments),
		linkText.String(), commentText.String())
}

func countFetched(links []collector.FetchedContent) int {
	n := 0
	for _, link := range links {
		if link.Error == "" {
			n++
		}
	}
	return n
}

// fallbackPlan is the generic recovery payload: one body section, empty
// research except for the raw LLM text.
func fallbackPlan(title, rawResponse string) (*ContentPlan, *ResearchSummary) {
	plan := &ContentPlan{
		ContentType: "generic content",
		Reasoning:   "defaulted after an unusable planning response",
		ProposedStructure: ProposedStructure{
			Sections:     []string{"Content"},
			Format:       "markdown",
			Organization: "single body",
		},
		KeyRequirements: []string{"address the request in the issue: " + title},
		Approach:        "write directly from the issue description",
	}
	research := &ResearchSummary{SynthesizedInfo: rawResponse}
	return plan, research
}

// formatMemoryForPrompt renders stored preferences compactly for prompt
// embedding. Empty memory yields "(none)".
func formatMemoryForPrompt(mem *memory.WorkspaceMemory) string {
	if mem == nil || mem.IsEmpty() {
		return "(none)"
	}

	var b strings.Builder
	for key, value := range mem.StylePreferences.Settings {
		fmt.Fprintf(&b, "- %s: %s\n", key, value)
	}
	for _, note := range mem.StylePreferences.VoiceNotes {
		fmt.Fprintf(&b, "- note: %s\n", note)
	}
	for _, ap := range mem.AntiPatterns {
		fmt.Fprintf(&b, "- avoid: %s\n", ap)
	}
	return strings.TrimRight(b.String(), "\n")
}
