// Package webapi is the HTTP surface: the tracker webhook, the OAuth
// callback, health, and Prometheus metrics.
package webapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"copysmith/pkg/agent/llm"
	"copysmith/pkg/collector"
	"copysmith/pkg/config"
	"copysmith/pkg/logx"
	"copysmith/pkg/memory"
	"copysmith/pkg/oauth"
	"copysmith/pkg/session"
	"copysmith/pkg/tracker"
)

// signatureHeader carries the webhook HMAC from the tracker.
const signatureHeader = "Linear-Signature"

// sessionTimeout bounds one dispatched invocation; the platform equivalent
// of the original deployment's function time limit.
const sessionTimeout = 5 * time.Minute

// Server wires the HTTP routes to the pipeline collaborators.
type Server struct {
	cfg       config.Config
	oauthMgr  *oauth.Manager
	prefStore *memory.PrefStore
	collector *collector.Collector
	llmClient llm.Client
	logger    *logx.Logger

	// newTrackerAPI builds a per-workspace tracker client; replaced in tests.
	newTrackerAPI func(accessToken string) session.TrackerAPI
}

// NewServer creates the HTTP server façade.
func NewServer(cfg config.Config, oauthMgr *oauth.Manager, prefStore *memory.PrefStore, coll *collector.Collector, llmClient llm.Client) *Server {
	apiURL := cfg.Tracker.APIURL
	return &Server{
		cfg:       cfg,
		oauthMgr:  oauthMgr,
		prefStore: prefStore,
		collector: coll,
		llmClient: llmClient,
		logger:    logx.NewLogger("webapi"),
		newTrackerAPI: func(accessToken string) session.TrackerAPI {
			return tracker.NewClient(apiURL, accessToken)
		},
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/webhook", s.handleWebhook)
	router.GET("/oauth/callback", s.handleOAuthCallback)
	router.GET("/oauth/install", s.handleInstall)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/", s.handleLanding)

	return router
}

// handleWebhook verifies the signature, filters event types, and dispatches
// session handling in a goroutine so the tracker gets its 200 immediately.
func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	// Signature enforcement applies only when a secret is configured;
	// without one the payload is accepted unverified.
	if secret, err := config.GetSecret(config.SecretWebhookSecret); err == nil {
		if !tracker.VerifySignature(secret, payload, c.GetHeader(signatureHeader)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	} else {
		s.logger.Warn("No webhook secret configured, accepting payload unverified")
	}

	event, err := tracker.ParseEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}
	if event.Type != tracker.EventTypeAgentSession || event.AgentSession == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	s.dispatch(event)
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// dispatch starts session handling in the background. A workspace without a
// stored token is dropped silently; there is no channel to report through.
func (s *Server) dispatch(event *tracker.WebhookEvent) {
	workspaceID := event.OrganizationID
	sess := event.AgentSession

	sessionEvent := &session.Event{
		SessionID:   sess.ID,
		WorkspaceID: workspaceID,
		IssueID:     sess.IssueID,
	}
	if sessionEvent.IssueID == "" && sess.Issue != nil {
		sessionEvent.IssueID = sess.Issue.ID
	}
	if sess.Comment != nil {
		sessionEvent.CommentBody = sess.Comment.Body
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()

		token, err := s.oauthMgr.Load(ctx, workspaceID)
		if err != nil {
			s.logger.Warn("Dropping event for workspace %s: %v", workspaceID, err)
			return
		}

		orch := session.NewOrchestrator(&s.cfg, s.newTrackerAPI(token.AccessToken), s.llmClient, s.prefStore, s.collector)
		state := orch.Handle(ctx, sessionEvent)
		s.logger.Info("Session %s finished in state %s", sessionEvent.SessionID, state)
	}()
}

// handleOAuthCallback completes the install: exchange the code, resolve the
// workspace with the new token, persist.
func (s *Server) handleOAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(errorPage("Missing authorization code.")))
		return
	}

	token, err := s.oauthMgr.Exchange(c.Request.Context(), &s.cfg, code)
	if err != nil {
		s.logger.Error("OAuth exchange failed: %v", err)
		c.Data(http.StatusBadGateway, "text/html; charset=utf-8", []byte(errorPage("Token exchange failed. Please retry the installation.")))
		return
	}

	api := s.newTrackerAPI(token.AccessToken)
	resolver, ok := api.(organizationResolver)
	if !ok {
		s.logger.Error("Tracker client cannot resolve organizations")
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage("Installation failed.")))
		return
	}
	workspaceID, err := resolver.GetOrganizationID(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to resolve workspace: %v", err)
		c.Data(http.StatusBadGateway, "text/html; charset=utf-8", []byte(errorPage("Could not resolve your workspace. Please retry the installation.")))
		return
	}

	if err := s.oauthMgr.Save(c.Request.Context(), workspaceID, token); err != nil {
		s.logger.Error("Failed to persist token: %v", err)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage("Installation failed.")))
		return
	}

	s.logger.Info("Installed in workspace %s", workspaceID)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(successPage))
}

// organizationResolver is the extra capability the callback needs beyond
// session.TrackerAPI.
type organizationResolver interface {
	GetOrganizationID(ctx context.Context) (string, error)
}

// handleInstall redirects to the tracker's authorization page with a fresh
// state token.
func (s *Server) handleInstall(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		state = uuid.NewString()
	}
	c.Redirect(http.StatusFound, oauth.AuthorizeURL(&s.cfg, state))
}

func (s *Server) handleLanding(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))
}
