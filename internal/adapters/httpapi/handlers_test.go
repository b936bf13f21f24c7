package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-triage/internal/adapters/tokenstore"
	"github.com/mikey/email-triage/internal/auth"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

type stubTriageService struct{}

func (stubTriageService) ClassifyBatch(ctx context.Context, msgs []*core.Message) []core.Classified {
	classified := make([]core.Classified, len(msgs))
	for i, msg := range msgs {
		tier := core.TierMedium
		if strings.Contains(strings.ToLower(msg.Subject), "urgent") {
			tier = core.TierHigh
		}
		classified[i] = core.Classified{
			Message: msg,
			Classification: &core.Classification{
				Tier:       tier,
				Confidence: 80,
				Reasoning:  "test",
				Provenance: core.ProvenanceBaseline,
			},
		}
	}
	return core.Rank(classified)
}

func newTestRouter(t *testing.T) (*gin.Engine, *Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := tokenstore.NewMemoryStore(zap.NewNop(), time.Hour)
	t.Cleanup(store.Stop)
	authMgr := auth.NewManager("", "", "", store, time.Hour, zap.NewNop())

	s := NewServer(stubTriageService{}, authMgr, nil, zap.NewNop(), "")

	router := gin.New()
	router.GET("/api/health", s.handleHealth)
	router.GET("/api/auth/url", s.handleAuthURL)
	router.GET("/api/auth/status", s.handleAuthStatus)
	router.GET("/api/emails", s.handleEmails)
	router.POST("/api/triage", s.handleTriage)
	return router, s
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleAuthURLUnconfigured(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/url", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleAuthStatusUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.IsAuthenticated {
		t.Error("unknown token reported as authenticated")
	}
}

func TestHandleEmailsNoSource(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/emails", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleTriage(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := `{"messages": [
		{"id": "m1", "from": "a@example.com", "subject": "Weekly notes", "body": "", "timestamp": "2026-01-07T10:00:00Z", "isRead": false},
		{"id": "m2", "from": "b@example.com", "subject": "URGENT: outage", "body": "", "timestamp": "2026-01-07T09:00:00Z", "isRead": false}
	]}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Messages []struct {
			ID             string               `json:"id"`
			Classification *core.Classification `json:"classification"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(body.Messages))
	}
	// HIGH ranks before MEDIUM regardless of input order
	if body.Messages[0].ID != "m2" {
		t.Errorf("first message = %s, want m2", body.Messages[0].ID)
	}
	if body.Messages[0].Classification.Tier != core.TierHigh {
		t.Errorf("first tier = %s, want HIGH", body.Messages[0].Classification.Tier)
	}
}

func TestHandleTriageTierFilter(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := `{"messages": [
		{"id": "m1", "from": "a@example.com", "subject": "Weekly notes", "body": "", "timestamp": "2026-01-07T10:00:00Z", "isRead": false},
		{"id": "m2", "from": "b@example.com", "subject": "URGENT: outage", "body": "", "timestamp": "2026-01-07T09:00:00Z", "isRead": false}
	]}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/triage?tier=HIGH", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body.Messages) != 1 || body.Messages[0].ID != "m2" {
		t.Errorf("filtered messages = %+v, want only m2", body.Messages)
	}
}

func TestHandleTriageInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
