package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// messagePayload is the wire form of a normalized message.
type messagePayload struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"isRead"`
}

// classifiedPayload attaches the classification to the original message
// fields. The classification's reasoning and provenance are debug detail
// for the dashboard, not something it should interpret.
type classifiedPayload struct {
	messagePayload
	Classification *core.Classification `json:"classification"`
}

type triageRequest struct {
	Messages []messagePayload `json:"messages" binding:"required"`
}

func (s *Server) handleAuthURL(c *gin.Context) {
	if !s.authMgr.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OAuth is not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": s.authMgr.AuthURL()})
}

// handleAuthCallbackRedirect handles the browser redirect from the consent
// screen: it exchanges the code and hands the session token to the frontend
// via a tiny self-closing page.
func (s *Server) handleAuthCallbackRedirect(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		c.Redirect(http.StatusFound, "/?error="+errParam)
		return
	}
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/?error=no_authorization_code")
		return
	}

	token, err := s.authMgr.Exchange(c.Request.Context(), code)
	if err != nil {
		s.logger.Error("OAuth callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/?error=authentication_failed")
		return
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body>
<p>Authentication successful. Redirecting...</p>
<script>
localStorage.setItem('emailTriageAuthToken', %q);
setTimeout(function () { window.location.href = '/'; }, 1500);
</script>
</body>
</html>`, token)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) handleAuthCallback(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing authorization code"})
		return
	}

	token, err := s.authMgr.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		s.logger.Error("OAuth callback failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "authentication failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Authentication successful",
		"authToken": token,
	})
}

func (s *Server) handleAuthStatus(c *gin.Context) {
	authenticated := s.authMgr.Authenticated(c.Request.Context(), sessionToken(c))
	c.JSON(http.StatusOK, gin.H{"isAuthenticated": authenticated})
}

func (s *Server) handleSignOut(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		if err := s.authMgr.SignOut(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to sign out"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signed out successfully"})
}

// handleEmails fetches the authorized user's inbox, classifies it and
// returns the ranked result.
func (s *Server) handleEmails(c *gin.Context) {
	if s.source == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no mail source configured"})
		return
	}

	ts, err := s.authMgr.TokenSource(c.Request.Context(), sessionToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.ParseInt(raw, 10, 64)
	}

	messages, err := s.source.Fetch(c.Request.Context(), ts, limit)
	if err != nil {
		s.logger.Error("Failed to fetch inbox", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch emails"})
		return
	}

	ranked := s.service.ClassifyBatch(c.Request.Context(), messages)
	c.JSON(http.StatusOK, gin.H{"emails": s.present(ranked, c.Query("tier"))})
}

// handleTriage classifies caller-supplied normalized messages. It needs no
// authentication: no provider credentials are exposed and nothing is stored.
func (s *Server) handleTriage(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	messages := make([]*core.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = &core.Message{
			ID:        m.ID,
			From:      m.From,
			Subject:   m.Subject,
			Body:      m.Body,
			Timestamp: m.Timestamp.UTC(),
			Read:      m.Read,
		}
	}

	ranked := s.service.ClassifyBatch(c.Request.Context(), messages)
	c.JSON(http.StatusOK, gin.H{"messages": s.present(ranked, c.Query("tier"))})
}

// present applies the optional tier filter and converts to wire form.
func (s *Server) present(ranked []core.Classified, tierFilter string) []classifiedPayload {
	if tierFilter != "" {
		if tier := core.Tier(tierFilter); tier.IsValid() {
			ranked = core.FilterByTier(ranked, tier)
		}
	}

	payload := make([]classifiedPayload, len(ranked))
	for i, item := range ranked {
		payload[i] = classifiedPayload{
			messagePayload: messagePayload{
				ID:        item.Message.ID,
				From:      item.Message.From,
				Subject:   item.Message.Subject,
				Body:      item.Message.Body,
				Timestamp: item.Message.Timestamp,
				Read:      item.Message.Read,
			},
			Classification: item.Classification,
		}
	}
	return payload
}
