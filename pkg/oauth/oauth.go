// Package oauth handles the tracker's authorization-code exchange and
// per-workspace token persistence.
//
// Tokens are exchanged with actor=app so the installed identity acts as a
// workspace-level bot instead of the installing user. Tokens are never
// refreshed; an absent or expired token means the app is not installed in
// that workspace.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"copysmith/pkg/config"
	"copysmith/pkg/kvstore"
	"copysmith/pkg/logx"
)

// Token is the persisted per-workspace credential.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	Scope       string    `json:"scope"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"` // zero means no expiry
	CreatedAt   time.Time `json:"createdAt"`
}

// Expired reports whether the token has an expiry in the past.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// Manager performs the code exchange and stores tokens per workspace.
type Manager struct {
	store      kvstore.Store
	httpClient *http.Client
	logger     *logx.Logger
	now        func() time.Time
}

// NewManager creates a Manager backed by the given store.
func NewManager(store kvstore.Store) *Manager {
	return &Manager{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logx.NewLogger("oauth"),
		now:        time.Now,
	}
}

func tokenKey(workspaceID string) string {
	return "token:" + workspaceID
}

// AuthorizeURL builds the authorization URL the user is redirected to when
// installing the app.
func AuthorizeURL(cfg *config.Config, state string) string {
	q := url.Values{}
	q.Set("client_id", cfg.Tracker.ClientID)
	q.Set("redirect_uri", cfg.Tracker.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(cfg.Tracker.OAuthScopes, " "))
	q.Set("actor", "app")
	if state != "" {
		q.Set("state", state)
	}
	return cfg.Tracker.AuthorizeURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Exchange trades an authorization code for an access token. The workspace
// is not known until the token is used, so persistence is a separate Save.
func (m *Manager) Exchange(ctx context.Context, cfg *config.Config, code string) (*Token, error) {
	clientSecret, err := config.GetSecret(config.SecretOAuthClientSecret)
	if err != nil {
		return nil, fmt.Errorf("oauth client secret unavailable: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", cfg.Tracker.ClientID)
	form.Set("client_secret", clientSecret)
	form.Set("redirect_uri", cfg.Tracker.RedirectURL)
	form.Set("actor", "app")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Tracker.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned empty access token")
	}

	now := m.now().UTC()
	token := &Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Scope:       tr.Scope,
		CreatedAt:   now,
	}
	if tr.ExpiresIn > 0 {
		token.ExpiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	m.logger.Info("Exchanged authorization code (scope: %s)", tr.Scope)
	return token, nil
}

// Save persists a token for a workspace.
func (m *Manager) Save(ctx context.Context, workspaceID string, token *Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := m.store.Put(ctx, tokenKey(workspaceID), data); err != nil {
		return fmt.Errorf("failed to store token for workspace %s: %w", workspaceID, err)
	}
	return nil
}

// ErrNotInstalled signals that no usable token exists for a workspace. Events
// from such workspaces are dropped without a tracker-visible notification,
// since there is no authenticated channel to emit through.
var ErrNotInstalled = fmt.Errorf("app not installed in workspace")

// Load returns the workspace's token, or ErrNotInstalled when the token is
// absent, corrupt, or expired.
func (m *Manager) Load(ctx context.Context, workspaceID string) (*Token, error) {
	data, found, err := m.store.Get(ctx, tokenKey(workspaceID))
	if err != nil {
		return nil, fmt.Errorf("failed to load token for workspace %s: %w", workspaceID, err)
	}
	if !found {
		return nil, ErrNotInstalled
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		m.logger.Warn("Corrupt token document for workspace %s: %v", workspaceID, err)
		return nil, ErrNotInstalled
	}
	if token.AccessToken == "" || token.Expired(m.now()) {
		return nil, ErrNotInstalled
	}
	return &token, nil
}
