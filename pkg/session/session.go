package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"copysmith/pkg/agent/llm"
	"copysmith/pkg/collector"
	"copysmith/pkg/config"
	"copysmith/pkg/logx"
	"copysmith/pkg/memory"
	"copysmith/pkg/tracker"
)

// Fixed user-facing messages. Declines and failures are deliberate terminal
// outcomes, so their wording never varies.
const (
	ackMessage = "On it! Let me look at this issue."

	declineMessage = "This looks like engineering work rather than a writing task, " +
		"so I'll sit this one out. Assign me to issues that need copy, content, or documentation."

	failureMessage = "I ran into an issue while working on this. Please re-assign me to try again."

	planningMessage   = "Gathering context and planning the content structure."
	generatingMessage = "Writing the content now."
)

// TrackerAPI is the slice of the tracker client the orchestrator uses.
// Satisfied by *tracker.Client; faked in tests to assert emission order.
type TrackerAPI interface {
	GetIssue(ctx context.Context, issueID string) (*tracker.Issue, error)
	ListTeamWorkflowStates(ctx context.Context, teamID string) ([]tracker.WorkflowState, error)
	CreateActivity(ctx context.Context, sessionID string, kind tracker.ActivityKind, body string) error
	UpdateIssueState(ctx context.Context, issueID, stateID string) error
	CreateComment(ctx context.Context, issueID, body string) error
}

// Event is one inbound session trigger, already authenticated and reduced
// from the webhook payload.
type Event struct {
	SessionID   string
	WorkspaceID string
	IssueID     string
	CommentBody string // empty unless the trigger was a comment
}

// Orchestrator runs the full pipeline for one workspace's events.
type Orchestrator struct {
	trackerAPI TrackerAPI
	llmClient  llm.Client
	prefStore  *memory.PrefStore
	collector  *collector.Collector
	logger     *logx.Logger

	agentName   string
	temperature float32
	maxTokens   int
	now         func() time.Time
}

// NewOrchestrator wires a pipeline from its collaborators and config.
func NewOrchestrator(cfg *config.Config, trackerAPI TrackerAPI, llmClient llm.Client, prefStore *memory.PrefStore, coll *collector.Collector) *Orchestrator {
	return &Orchestrator{
		trackerAPI:  trackerAPI,
		llmClient:   llmClient,
		prefStore:   prefStore,
		collector:   coll,
		logger:      logx.NewLogger("session"),
		agentName:   cfg.Tracker.AgentName,
		temperature: cfg.Model.Temperature,
		maxTokens:   cfg.Model.MaxTokens,
		now:         time.Now,
	}
}

// transition advances the invocation state, logging invalid jumps instead of
// failing; the transition table is the documentation of intended flow.
func (o *Orchestrator) transition(state *State, to State) {
	if !IsValidTransition(*state, to) {
		o.logger.Warn("Invalid state transition %s -> %s", *state, to)
	}
	*state = to
}

// Handle runs one session invocation to completion. Every path terminates:
// unexpected panics are caught once here and produce exactly one fixed-text
// error activity.
func (o *Orchestrator) Handle(ctx context.Context, event *Event) (finalState State) {
	state := StateReceived
	outcome := outcomeCompleted

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Session %s panicked: %v", event.SessionID, r)
			o.emit(ctx, event.SessionID, tracker.ActivityError, failureMessage)
			o.transition(&state, StateClosed)
			outcome = outcomeFailed
		}
		sessionsTotal.WithLabelValues(outcome).Inc()
		finalState = state
	}()

	// The acknowledgment must be the very first emission, well before any
	// LLM call.
	o.emit(ctx, event.SessionID, tracker.ActivityThought, ackMessage)

	if event.CommentBody != "" {
		if cmd, ok := ParseCommand(o.agentName, event.CommentBody); ok {
			o.handleCommand(ctx, event, cmd)
			outcome = outcomeCommand
			o.transition(&state, StateCommandHandled)
			o.transition(&state, StateClosed)
			return state
		}
		// Feedback applies whether or not generation proceeds.
		if update := memory.Extract(event.CommentBody); update != nil {
			if err := o.prefStore.Update(ctx, event.WorkspaceID, update); err != nil {
				o.logger.Warn("Failed to apply memory update: %v", err)
			}
		}
	}

	issue, err := o.trackerAPI.GetIssue(ctx, event.IssueID)
	if err != nil {
		o.logger.Error("Failed to fetch issue %s: %v", event.IssueID, err)
		o.emit(ctx, event.SessionID, tracker.ActivityError, failureMessage)
		outcome = outcomeFailed
		o.transition(&state, StateClosed)
		return state
	}

	if IsOutOfScope(issue.Title, issue.Description) {
		o.emit(ctx, event.SessionID, tracker.ActivityError, declineMessage)
		outcome = outcomeDeclined
		o.transition(&state, StateOutOfScope)
		o.transition(&state, StateClosed)
		return state
	}

	verdict := o.AnalyzeSufficiency(ctx, issue)
	if !verdict.IsSufficient {
		o.emit(ctx, event.SessionID, tracker.ActivityElicitation, elicitationMessage(verdict))
		outcome = outcomeElicited
		o.transition(&state, StateInsufficientContext)
		o.transition(&state, StateClosed)
		return state
	}

	o.transition(&state, StateGenerating)
	o.moveIssueToStarted(ctx, issue)

	agentCtx := &AgentContext{
		SessionID:   event.SessionID,
		WorkspaceID: event.WorkspaceID,
		Issue:       issue,
		Memory:      o.prefStore.Load(ctx, event.WorkspaceID),
	}
	agentCtx.Links, agentCtx.Images = o.collector.Collect(ctx, issue.Description, issue.Attachments)

	o.emit(ctx, event.SessionID, tracker.ActivityThought, planningMessage)
	plan, research := o.PlanAndResearch(ctx, agentCtx)

	o.emit(ctx, event.SessionID, tracker.ActivityThought, generatingMessage)
	content, err := o.Generate(ctx, agentCtx, plan, research)
	if err != nil {
		o.logger.Error("Generation failed for session %s: %v", event.SessionID, err)
		o.emit(ctx, event.SessionID, tracker.ActivityError, failureMessage)
		outcome = outcomeFailed
		o.transition(&state, StateClosed)
		return state
	}

	o.emit(ctx, event.SessionID, tracker.ActivityThought, o.assumptionsNote(agentCtx, plan, research))
	o.emit(ctx, event.SessionID, tracker.ActivityResponse, content)

	o.transition(&state, StateClosed)
	return state
}

// emit posts one activity; emission failures are logged but never abort the
// pipeline, since the content work itself may still succeed.
func (o *Orchestrator) emit(ctx context.Context, sessionID string, kind tracker.ActivityKind, body string) {
	if err := o.trackerAPI.CreateActivity(ctx, sessionID, kind, body); err != nil {
		o.logger.Warn("Failed to emit %s activity: %v", kind, err)
	}
}

// handleCommand executes an @agent directive. Replies go out as plain issue
// comments, not session activities.
func (o *Orchestrator) handleCommand(ctx context.Context, event *Event, cmd Command) {
	switch cmd {
	case CommandShowPreferences:
		mem := o.prefStore.Load(ctx, event.WorkspaceID)
		reply := memory.FormatForDisplay(mem, o.now())
		if err := o.trackerAPI.CreateComment(ctx, event.IssueID, reply); err != nil {
			o.logger.Warn("Failed to post preferences: %v", err)
		}
	case CommandForgetPreferences:
		if err := o.prefStore.Clear(ctx, event.WorkspaceID); err != nil {
			o.logger.Warn("Failed to clear preferences: %v", err)
			return
		}
		if err := o.trackerAPI.CreateComment(ctx, event.IssueID, "Done. I've forgotten all stored style preferences for this workspace."); err != nil {
			o.logger.Warn("Failed to post confirmation: %v", err)
		}
	}
}

// moveIssueToStarted transitions the issue to the team's lowest-position
// "started" state unless it is already active or finished. Best-effort.
func (o *Orchestrator) moveIssueToStarted(ctx context.Context, issue *tracker.Issue) {
	switch issue.State.Type {
	case "started", "completed", "canceled":
		return
	}

	states, err := o.trackerAPI.ListTeamWorkflowStates(ctx, issue.Team.ID)
	if err != nil {
		o.logger.Warn("Failed to list workflow states: %v", err)
		return
	}

	var target *tracker.WorkflowState
	for i := range states {
		s := &states[i]
		if s.Type != "started" {
			continue
		}
		if target == nil || s.Position < target.Position {
			target = s
		}
	}
	if target == nil {
		return
	}
	if err := o.trackerAPI.UpdateIssueState(ctx, issue.ID, target.ID); err != nil {
		o.logger.Warn("Failed to move issue to %s: %v", target.Name, err)
	}
}

// assumptionsNote summarizes what generation assumed: project, content type,
// resolved tone, plus any links that could not be fetched.
func (o *Orchestrator) assumptionsNote(agentCtx *AgentContext, plan *ContentPlan, research *ResearchSummary) string {
	var b strings.Builder
	b.WriteString("Working assumptions:\n")

	project := "no project context"
	if agentCtx.Issue.Project != nil {
		project = "project \"" + agentCtx.Issue.Project.Name + "\""
	}
	fmt.Fprintf(&b, "- Based on %s\n", project)
	fmt.Fprintf(&b, "- Content type: %s\n", plan.ContentType)
	fmt.Fprintf(&b, "- Tone: %s\n", o.resolveTone(agentCtx.Memory, research))

	for _, link := range agentCtx.Links {
		if link.Error != "" {
			fmt.Fprintf(&b, "- I couldn't access %s (%s)\n", link.URL, link.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// resolveTone prefers the stored workspace preference, then the research
// call's tone indicators, then a neutral default.
func (o *Orchestrator) resolveTone(mem *memory.WorkspaceMemory, research *ResearchSummary) string {
	if mem != nil {
		if tone := mem.StylePreferences.Settings[memory.PrefTone]; tone != "" {
			return tone + " (workspace preference)"
		}
	}
	if len(research.ToneIndicators) > 0 {
		return strings.Join(research.ToneIndicators, ", ")
	}
	return "neutral professional"
}
