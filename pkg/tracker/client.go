package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"copysmith/pkg/logx"
)

// Client issues GraphQL documents against the tracker API using a
// workspace-scoped OAuth access token.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
	logger     *logx.Logger
}

// NewClient creates a tracker client for one workspace's access token.
func NewClient(apiURL, accessToken string) *Client {
	return &Client{
		apiURL:     apiURL,
		token:      accessToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logx.NewLogger("tracker"),
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// do posts one GraphQL document and decodes the data block into out.
func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracker API returned status %d: %s", resp.StatusCode, truncateForLog(respBody))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("tracker API error: %s", gqlResp.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

const issueQuery = `
query Issue($id: String!) {
	issue(id: $id) {
		id
		title
		description
		state { id name type position }
		team { id key }
		project { id name description }
		attachments { nodes { id url title metadata } }
		comments { nodes { id body createdAt user { id name isMe } } }
	}
}`

// GetIssue fetches full issue detail including attachments and comments.
func (c *Client) GetIssue(ctx context.Context, issueID string) (*Issue, error) {
	var data struct {
		Issue struct {
			ID          string        `json:"id"`
			Title       string        `json:"title"`
			Description string        `json:"description"`
			State       WorkflowState `json:"state"`
			Team        Team          `json:"team"`
			Project     *Project      `json:"project"`
			Attachments struct {
				Nodes []Attachment `json:"nodes"`
			} `json:"attachments"`
			Comments struct {
				Nodes []Comment `json:"nodes"`
			} `json:"comments"`
		} `json:"issue"`
	}

	if err := c.do(ctx, issueQuery, map[string]any{"id": issueID}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch issue %s: %w", issueID, err)
	}

	return &Issue{
		ID:          data.Issue.ID,
		Title:       data.Issue.Title,
		Description: data.Issue.Description,
		State:       data.Issue.State,
		Team:        data.Issue.Team,
		Project:     data.Issue.Project,
		Attachments: data.Issue.Attachments.Nodes,
		Comments:    data.Issue.Comments.Nodes,
	}, nil
}

const organizationQuery = `
query Organization {
	organization { id name }
}`

// GetOrganizationID resolves the workspace the client's token belongs to.
// Called once after the OAuth exchange to key the stored token.
func (c *Client) GetOrganizationID(ctx context.Context) (string, error) {
	var data struct {
		Organization struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"organization"`
	}
	if err := c.do(ctx, organizationQuery, nil, &data); err != nil {
		return "", fmt.Errorf("failed to resolve organization: %w", err)
	}
	return data.Organization.ID, nil
}

const workflowStatesQuery = `
query TeamWorkflowStates($teamId: String!) {
	team(id: $teamId) {
		states { nodes { id name type position } }
	}
}`

// ListTeamWorkflowStates returns the workflow states for a team.
func (c *Client) ListTeamWorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	var data struct {
		Team struct {
			States struct {
				Nodes []WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}

	if err := c.do(ctx, workflowStatesQuery, map[string]any{"teamId": teamID}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch workflow states for team %s: %w", teamID, err)
	}
	return data.Team.States.Nodes, nil
}

const createActivityMutation = `
mutation CreateActivity($input: AgentActivityCreateInput!) {
	agentActivityCreate(input: $input) { success }
}`

// CreateActivity posts a typed session activity. Activities are rendered as
// a chronological log, so callers must emit them in order.
func (c *Client) CreateActivity(ctx context.Context, sessionID string, kind ActivityKind, body string) error {
	input := map[string]any{
		"agentSessionId": sessionID,
		"content": map[string]any{
			"type": string(kind),
			"body": body,
		},
	}
	if err := c.do(ctx, createActivityMutation, map[string]any{"input": input}, nil); err != nil {
		return fmt.Errorf("failed to create %s activity: %w", kind, err)
	}
	c.logger.Debug("Emitted %s activity for session %s", kind, sessionID)
	return nil
}

const updateIssueStateMutation = `
mutation UpdateIssueState($id: String!, $stateId: String!) {
	issueUpdate(id: $id, input: { stateId: $stateId }) { success }
}`

// UpdateIssueState moves an issue to the given workflow state.
func (c *Client) UpdateIssueState(ctx context.Context, issueID, stateID string) error {
	vars := map[string]any{"id": issueID, "stateId": stateID}
	if err := c.do(ctx, updateIssueStateMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to update issue state: %w", err)
	}
	return nil
}

const createCommentMutation = `
mutation CreateComment($input: CommentCreateInput!) {
	commentCreate(input: $input) { success }
}`

// CreateComment posts a plain comment on an issue. Used for command replies,
// which are not session activities.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) error {
	input := map[string]any{"issueId": issueID, "body": body}
	if err := c.do(ctx, createCommentMutation, map[string]any{"input": input}, nil); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func truncateForLog(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
