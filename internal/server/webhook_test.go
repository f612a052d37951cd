package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/fiadolabs/fiado/internal/config"
	"github.com/fiadolabs/fiado/internal/server"
	"github.com/fiadolabs/fiado/internal/webhook"
	"go.uber.org/zap"
)

type fakeWebhookService struct {
	mu     sync.Mutex
	events []webhook.Event
}

func (f *fakeWebhookService) Dispatch(events []webhook.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
}

func (f *fakeWebhookService) ProcessEvent(ctx context.Context, event webhook.Event) error {
	return nil
}

func (f *fakeWebhookService) received() []webhook.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]webhook.Event(nil), f.events...)
}

func newTestServer(t *testing.T, svc webhook.Service) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(server.ErrorHandlingMiddleware())

	srv := server.NewServer(server.ServerParams{
		Gin:        engine,
		Cfg:        config.Config{WebhookSecret: "s3cret"},
		Log:        zap.NewNop(),
		WebhookSvc: svc,
	})
	srv.RegisterRoutes()
	return engine
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	svc := &fakeWebhookService{}
	engine := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/webhook/pix/wrong", strings.NewReader(`{"pix":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"Unauthorized"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if len(svc.received()) != 0 {
		t.Fatalf("expected no dispatch on a rejected request")
	}
}

func TestWebhookAcksAndDispatches(t *testing.T) {
	svc := &fakeWebhookService{}
	engine := newTestServer(t, svc)

	body := `{"pix":[{"txid":"9E881F1EFD4C4B0F8E4B1C6A2D3F5A7B","endToEndId":"E1","valor":"100.00","horario":"2026-03-01T12:30:00Z"}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/pix/s3cret", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	events := svc.received()
	if len(events) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(events))
	}
	if events[0].Txid != "9E881F1EFD4C4B0F8E4B1C6A2D3F5A7B" || events[0].EndToEndID != "E1" {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	svc := &fakeWebhookService{}
	engine := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/webhook/pix/s3cret", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(svc.received()) != 0 {
		t.Fatalf("expected no dispatch for a malformed body")
	}
}
