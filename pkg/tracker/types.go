// Package tracker provides the issue-tracker API client: issue and workflow
// state retrieval, session activity creation, and webhook event handling.
//
// The tracker exposes a GraphQL API; the handful of documents we need are
// issued as plain HTTP POSTs, so no GraphQL client library is involved.
package tracker

import "time"

// ActivityKind classifies a session activity. Consumers render activities as
// a chronological log, so emission order matters.
type ActivityKind string

const (
	// ActivityThought is a progress note (acknowledgment, phase updates).
	ActivityThought ActivityKind = "thought"
	// ActivityResponse is the deliverable artifact.
	ActivityResponse ActivityKind = "response"
	// ActivityElicitation is a clarifying question back to the user.
	ActivityElicitation ActivityKind = "elicitation"
	// ActivityError is a failure notification.
	ActivityError ActivityKind = "error"
)

// WorkflowState is one state in a team's workflow.
type WorkflowState struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Position float64 `json:"position"`
}

// Team identifies the team owning an issue.
type Team struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Project carries optional project context for an issue.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Attachment is a file attached to an issue.
type Attachment struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Title    string            `json:"title"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CommentUser identifies a comment author. IsMe marks the agent's own
// comments so they can be filtered out of gathered context.
type CommentUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IsMe bool   `json:"isMe"`
}

// Comment is one comment on an issue.
type Comment struct {
	ID        string      `json:"id"`
	Body      string      `json:"body"`
	User      CommentUser `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Issue is the full issue detail consumed by the pipeline.
type Issue struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	State       WorkflowState `json:"state"`
	Team        Team          `json:"team"`
	Project     *Project      `json:"project"`
	Attachments []Attachment  `json:"attachments"`
	Comments    []Comment     `json:"comments"`
}

// SessionIssue is the abbreviated issue reference carried in webhook events.
type SessionIssue struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SessionComment is the comment reference carried in webhook events.
type SessionComment struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// AgentSession is the session block of an inbound webhook event.
type AgentSession struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Issue     *SessionIssue   `json:"issue"`
	Comment   *SessionComment `json:"comment"`
	IssueID   string          `json:"issueId"`
	CommentID string          `json:"commentId"`
}

// EventTypeAgentSession is the only webhook event type we handle; everything
// else is acknowledged and ignored.
const EventTypeAgentSession = "AgentSessionEvent"

// WebhookEvent is the inbound event contract after signature verification.
type WebhookEvent struct {
	Action         string        `json:"action"`
	Type           string        `json:"type"`
	OrganizationID string        `json:"organizationId"`
	AgentSession   *AgentSession `json:"agentSession"`
}
