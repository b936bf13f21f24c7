// Package httpapi serves the dashboard API: OAuth handshake, inbox fetch
// with classification, and direct triage of caller-supplied messages.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-triage/internal/auth"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// triageService is the slice of the core service the API needs.
type triageService interface {
	ClassifyBatch(ctx context.Context, msgs []*core.Message) []core.Classified
}

// mailSource produces normalized messages for an authorized user.
type mailSource interface {
	Fetch(ctx context.Context, ts oauth2.TokenSource, limit int64) ([]*core.Message, error)
}

// Server is the gin HTTP frontend.
type Server struct {
	service    triageService
	authMgr    *auth.Manager
	source     mailSource
	logger     *zap.Logger
	listenAddr string
	httpServer *http.Server
}

// NewServer creates the HTTP frontend. source may be nil when no mail
// provider is configured; the triage endpoint keeps working without it.
func NewServer(
	service triageService,
	authMgr *auth.Manager,
	source mailSource,
	logger *zap.Logger,
	listenAddr string,
) *Server {
	return &Server{
		service:    service,
		authMgr:    authMgr,
		source:     source,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/api/health", s.handleHealth)
	router.GET("/api/auth/url", s.handleAuthURL)
	router.GET("/auth/callback", s.handleAuthCallbackRedirect)
	router.POST("/api/auth/callback", s.handleAuthCallback)
	router.GET("/api/auth/status", s.handleAuthStatus)
	router.POST("/api/auth/signout", s.handleSignOut)
	router.GET("/api/emails", s.handleEmails)
	router.POST("/api/triage", s.handleTriage)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: router,
	}

	s.logger.Info("HTTP frontend starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Email triage API is running"})
}

func sessionToken(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}
