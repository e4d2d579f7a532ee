package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/infrastructure/external/telegram"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error { return p.err }

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz_OK(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{DB: &fakePinger{}})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthz_DatabaseDown(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{DB: &fakePinger{err: errors.New("connection refused")}})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	var got *telegram.Update
	deps := Dependencies{
		Updates: func(_ context.Context, u *telegram.Update) error {
			got = u
			return nil
		},
	}
	s := NewServer(DefaultConfig(), deps)

	body := strings.NewReader(`{"update_id": 77}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", body)
	rec := serve(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(77), got.UpdateID)
}

func TestWebhook_SecretTokenRequired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebhookSecret = "s3cret"
	called := false
	s := NewServer(cfg, Dependencies{
		Updates: func(context.Context, *telegram.Update) error {
			called = true
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id": 1}`))
	rec := serve(s, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id": 1}`))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestWebhook_MalformedBodyStillReturns200(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{
		Updates: func(context.Context, *telegram.Update) error { return nil },
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := serve(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_RouteAbsentWithoutUpdates(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id": 1}`))
	rec := serve(s, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
