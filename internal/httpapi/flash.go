package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// Flash notices are one-time messages carried across the
// post-redirect-get cycle of the admin forms. The cookie payload is
// HMAC-signed with the configured secret key so it cannot be forged.

const flashCookieName = "jwfoods_flash"

type flashKind string

const (
	flashSuccess flashKind = "success"
	flashError   flashKind = "error"
	flashWarning flashKind = "warning"
)

type flashNotice struct {
	Kind    flashKind `json:"kind"`
	Message string    `json:"message"`
}

func (a *App) setFlash(w http.ResponseWriter, kind flashKind, message string) {
	payload, err := json.Marshal(flashNotice{Kind: kind, Message: message})
	if err != nil {
		return
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded + "." + a.signFlash(encoded),
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.cfg.CookieSecure,
	})
}

// popFlash reads, verifies and clears the flash cookie. Tampered or
// malformed cookies are discarded silently.
func (a *App) popFlash(w http.ResponseWriter, r *http.Request) (flashNotice, bool) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return flashNotice{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.cfg.CookieSecure,
		MaxAge:   -1,
	})

	encoded, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(a.signFlash(encoded))) {
		return flashNotice{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return flashNotice{}, false
	}
	var notice flashNotice
	if err := json.Unmarshal(payload, &notice); err != nil || notice.Message == "" {
		return flashNotice{}, false
	}
	return notice, true
}

func (a *App) signFlash(encoded string) string {
	mac := hmac.New(sha256.New, []byte(a.cfg.SecretKey))
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
