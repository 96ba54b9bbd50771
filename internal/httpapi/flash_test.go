package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jwfoods/api/internal/config"
)

func flashApp(secret string) *App {
	return &App{cfg: config.Config{SecretKey: secret}}
}

func cookieRequest(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestFlashRoundTrip(t *testing.T) {
	app := flashApp("k1")

	rec := httptest.NewRecorder()
	app.setFlash(rec, flashSuccess, "Coefficients updated successfully!")

	next := httptest.NewRecorder()
	notice, ok := app.popFlash(next, cookieRequest(rec))
	require.True(t, ok)
	assert.Equal(t, flashSuccess, notice.Kind)
	assert.Equal(t, "Coefficients updated successfully!", notice.Message)

	// popFlash expires the cookie.
	var cleared *http.Cookie
	for _, c := range next.Result().Cookies() {
		if c.Name == flashCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestFlashRejectsTampering(t *testing.T) {
	app := flashApp("k1")

	rec := httptest.NewRecorder()
	app.setFlash(rec, flashError, "original")

	t.Run("wrong key", func(t *testing.T) {
		other := flashApp("k2")
		_, ok := other.popFlash(httptest.NewRecorder(), cookieRequest(rec))
		assert.False(t, ok)
	})

	t.Run("mangled value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "bogus.signature"})
		_, ok := app.popFlash(httptest.NewRecorder(), req)
		assert.False(t, ok)
	})

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		_, ok := app.popFlash(httptest.NewRecorder(), req)
		assert.False(t, ok)
	})
}
