package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"copysmith/pkg/config"
	"copysmith/pkg/kvstore"
)

func testManager(now time.Time) *Manager {
	m := NewManager(kvstore.NewMemStore())
	m.now = func() time.Time { return now }
	return m
}

func TestSaveAndLoad(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(now)
	ctx := context.Background()

	token := &Token{
		AccessToken: "lin_oauth_abc",
		TokenType:   "Bearer",
		Scope:       "read write",
		CreatedAt:   now,
	}
	if err := m.Save(ctx, "ws-1", token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := m.Load(ctx, "ws-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.AccessToken != "lin_oauth_abc" {
		t.Errorf("access token = %q", loaded.AccessToken)
	}
	if loaded.Scope != "read write" {
		t.Errorf("scope = %q", loaded.Scope)
	}
}

func TestLoadMissingIsNotInstalled(t *testing.T) {
	m := testManager(time.Now())

	_, err := m.Load(context.Background(), "ws-missing")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
}

func TestLoadExpiredIsNotInstalled(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(now)
	ctx := context.Background()

	token := &Token{
		AccessToken: "lin_oauth_abc",
		TokenType:   "Bearer",
		CreatedAt:   now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}
	if err := m.Save(ctx, "ws-1", token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := m.Load(ctx, "ws-1")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled for expired token, got %v", err)
	}
}

func TestTokenWithoutExpiryNeverExpires(t *testing.T) {
	token := &Token{AccessToken: "x"}
	if token.Expired(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("token without expiry should not expire")
	}
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "lin_oauth_xyz",
			"token_type": "Bearer",
			"scope": "read write app:assignable",
			"expires_in": 86400
		}`))
	}))
	defer server.Close()

	os.Setenv(config.SecretOAuthClientSecret, "client-secret")
	defer os.Unsetenv(config.SecretOAuthClientSecret)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(now)

	cfg := &config.Config{}
	cfg.Tracker.TokenURL = server.URL
	cfg.Tracker.ClientID = "client-id"
	cfg.Tracker.RedirectURL = "https://copysmith.example/oauth/callback"

	token, err := m.Exchange(context.Background(), cfg, "auth-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}

	if gotForm.Get("actor") != "app" {
		t.Errorf("actor = %q, want app", gotForm.Get("actor"))
	}
	if gotForm.Get("grant_type") != "authorization_code" {
		t.Errorf("grant_type = %q", gotForm.Get("grant_type"))
	}
	if gotForm.Get("code") != "auth-code" {
		t.Errorf("code = %q", gotForm.Get("code"))
	}

	if token.AccessToken != "lin_oauth_xyz" {
		t.Errorf("access token = %q", token.AccessToken)
	}
	wantExpiry := now.Add(24 * time.Hour)
	if !token.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", token.ExpiresAt, wantExpiry)
	}

	// The exchanged token round-trips through Save and Load.
	if err := m.Save(context.Background(), "ws-1", token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := m.Load(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Load after exchange failed: %v", err)
	}
	if loaded.AccessToken != "lin_oauth_xyz" {
		t.Errorf("loaded access token = %q", loaded.AccessToken)
	}
}

func TestExchangeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	os.Setenv(config.SecretOAuthClientSecret, "client-secret")
	defer os.Unsetenv(config.SecretOAuthClientSecret)

	m := testManager(time.Now())
	cfg := &config.Config{}
	cfg.Tracker.TokenURL = server.URL

	if _, err := m.Exchange(context.Background(), cfg, "bad-code"); err == nil {
		t.Error("expected error for non-200 token response")
	}
}

func TestAuthorizeURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tracker.AuthorizeURL = "https://linear.app/oauth/authorize"
	cfg.Tracker.ClientID = "client-id"
	cfg.Tracker.RedirectURL = "https://copysmith.example/oauth/callback"
	cfg.Tracker.OAuthScopes = []string{"read", "write"}

	u := AuthorizeURL(cfg, "state-1")
	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("invalid authorize URL: %v", err)
	}
	q := parsed.Query()
	if q.Get("actor") != "app" {
		t.Errorf("actor = %q, want app", q.Get("actor"))
	}
	if q.Get("scope") != "read write" {
		t.Errorf("scope = %q", q.Get("scope"))
	}
	if !strings.HasPrefix(u, "https://linear.app/oauth/authorize?") {
		t.Errorf("unexpected URL %q", u)
	}
}
