// Package session implements the orchestration pipeline that turns an agent
// session event into generated content: command handling, scope and
// sufficiency gates, context collection, planning, generation, and ordered
// activity emission.
package session

import (
	"copysmith/pkg/collector"
	"copysmith/pkg/memory"
	"copysmith/pkg/tracker"
)

// AgentContext aggregates everything one invocation needs. Built fresh per
// event, never persisted.
type AgentContext struct {
	SessionID   string
	WorkspaceID string

	Issue  *tracker.Issue
	Memory *memory.WorkspaceMemory

	Links  []collector.FetchedContent
	Images []collector.ProcessedImage
}

// ContentPlan is the structure chosen by the planning call.
type ContentPlan struct {
	ContentType       string            `json:"contentType"`
	Reasoning         string            `json:"reasoning"`
	ProposedStructure ProposedStructure `json:"proposedStructure"`
	KeyRequirements   []string          `json:"keyRequirements"`
	Approach          string            `json:"approach"`
	Considerations    []string          `json:"considerations"`
}

// ProposedStructure describes how the content should be laid out.
type ProposedStructure struct {
	Sections     []string `json:"sections"`
	Format       string   `json:"format"`
	Organization string   `json:"organization"`
}

// ResearchSummary holds facts and constraints extracted from the context
// sources, produced in the same call as the plan.
type ResearchSummary struct {
	KeyFacts            []string `json:"keyFacts"`
	ToneIndicators      []string `json:"toneIndicators"`
	AudienceContext     string   `json:"audienceContext"`
	ContentRequirements []string `json:"contentRequirements"`
	Constraints         []string `json:"constraints"`
	SynthesizedInfo     string   `json:"synthesizedInfo"`
}

// planResearchDoc is the combined JSON contract of the planning call.
type planResearchDoc struct {
	Plan     ContentPlan     `json:"plan"`
	Research ResearchSummary `json:"research"`
}

// SufficiencyVerdict is the structured output of the sufficiency judgment.
type SufficiencyVerdict struct {
	IsSufficient        bool     `json:"isSufficient"`
	Quality             string   `json:"quality"` // high, medium, low
	MissingInformation  []string `json:"missingInformation"`
	ElicitationQuestion string   `json:"elicitationQuestion"`
	Reasoning           string   `json:"reasoning"`
}
