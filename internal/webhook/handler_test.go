package webhook

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIngestTagsProviderOnUnreadableBody(t *testing.T) {
	rec := &fakeReconciler{}
	audit := &fakeAudit{}
	h := NewHandler(newTestService(rec, audit), nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	oversized := bytes.Repeat([]byte("a"), maxBodySize+1)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/botconversa", bytes.NewReader(oversized))

	h.HandleBotconversa(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", w.Code, http.StatusBadRequest)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("got %d audit rows, want 1", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Provider != ProviderBotconversa {
		t.Errorf("got provider %q, want %q", entry.Provider, ProviderBotconversa)
	}
	if entry.Status != StatusError {
		t.Errorf("got status %q, want %q", entry.Status, StatusError)
	}
	if rec.calls != 0 {
		t.Error("oversized body must not reach the reconciler")
	}
}

func TestIngestTagsProviderOnEvolution(t *testing.T) {
	rec := &fakeReconciler{}
	audit := &fakeAudit{}
	h := NewHandler(newTestService(rec, audit), nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	oversized := bytes.Repeat([]byte("a"), maxBodySize+1)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/evolution", bytes.NewReader(oversized))

	h.HandleEvolution(c)

	if len(audit.entries) != 1 {
		t.Fatalf("got %d audit rows, want 1", len(audit.entries))
	}
	if got := audit.entries[0].Provider; got != ProviderEvolution {
		t.Errorf("got provider %q, want %q", got, ProviderEvolution)
	}
}
