package session

import (
	"context"
	"fmt"
	"strings"

	"copysmith/pkg/agent/llm"
)

// Generate renders the final content: one LLM call whose system prompt
// embeds the plan, research, and style memory, multimodal when processed
// images are present. The raw response is normalized by FormatResponse.
func (o *Orchestrator) Generate(ctx context.Context, agentCtx *AgentContext, plan *ContentPlan, research *ResearchSummary) (string, error) {
	systemPrompt := buildGenerationPrompt(agentCtx, plan, research)

	userText := fmt.Sprintf("Issue: %s\n\n%s", agentCtx.Issue.Title, agentCtx.Issue.Description)
	var userMsg llm.CompletionMessage
	if len(agentCtx.Images) > 0 {
		images := make([]llm.ImageAttachment, 0, len(agentCtx.Images))
		for _, img := range agentCtx.Images {
			images = append(images, llm.ImageAttachment{MIMEType: img.MIMEType, Data: img.Data})
		}
		userMsg = llm.NewUserMessageWithImages(userText, images)
	} else {
		userMsg = llm.NewUserMessage(userText)
	}

	resp, err := o.llmClient.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			llm.NewSystemMessage(systemPrompt),
			userMsg,
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}

	return FormatResponse(resp.Content), nil
}

func buildGenerationPrompt(agentCtx *AgentContext, plan *ContentPlan, research *ResearchSummary) string {
	return fmt.Sprintf(generationSystemPromptTemplate,
		plan.ContentType,
		plan.Approach,
		strings.Join(plan.ProposedStructure.Sections, ", "),
		plan.ProposedStructure.Format,
		plan.ProposedStructure.Organization,
		bulletList(plan.KeyRequirements),
		research.AudienceContext,
		bulletList(research.KeyFacts),
		strings.Join(research.ToneIndicators, ", "),
		bulletList(research.Constraints),
		research.SynthesizedInfo,
		formatMemoryForPrompt(agentCtx.Memory))
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
