package http

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCookieString(t *testing.T) {
	cookie := Cookie{
		Name:     "test",
		Value:    "value",
		Path:     "/",
		Domain:   "example.com",
		MaxAge:   3600,
		Secure:   true,
		HttpOnly: true,
		SameSite: SameSiteLaxMode,
	}

	expected := "test=value; Path=/; Domain=example.com; Max-Age=3600; HttpOnly; Secure; SameSite=Lax"
	result := cookie.String()

	if result != expected {
		t.Errorf("Expected %s, got %s", expected, result)
	}
}

func TestNewCookie(t *testing.T) {
	cookie := NewCookie(SessionCookieName, "abc")
	result := cookie.String()

	if !strings.HasPrefix(result, "session_id=abc; Path=/; Expires=") {
		t.Errorf("unexpected cookie %s", result)
	}
	if !strings.HasSuffix(result, "GMT; HttpOnly; Secure") {
		t.Errorf("unexpected cookie %s", result)
	}
	if cookie.IsExpired(time.Now()) {
		t.Error("fresh cookie should not be expired")
	}
	if !cookie.IsExpired(time.Now().Add(DefaultCookieLifetime + time.Minute)) {
		t.Error("cookie should expire after its lifetime")
	}
}

func TestCookieValid(t *testing.T) {
	// Valid cookie
	cookie := Cookie{
		Name:  "valid",
		Value: "test",
	}
	if err := cookie.Valid(); err != nil {
		t.Errorf("Valid cookie should not return error: %v", err)
	}

	// Invalid - empty name
	cookie = Cookie{
		Name:  "",
		Value: "test",
	}
	if err := cookie.Valid(); !errors.Is(err, ErrInvalidCookie) {
		t.Errorf("Empty name should return ErrInvalidCookie, got %v", err)
	}

	// Invalid - separator in name
	cookie = Cookie{
		Name:  "a=b",
		Value: "test",
	}
	if err := cookie.Valid(); !errors.Is(err, ErrInvalidCookie) {
		t.Errorf("'=' in name should return ErrInvalidCookie, got %v", err)
	}

	// Invalid - too long
	cookie = Cookie{
		Name:  "big",
		Value: strings.Repeat("x", 4097),
	}
	if err := cookie.Valid(); !errors.Is(err, ErrCookieTooLong) {
		t.Errorf("Expected ErrCookieTooLong, got %v", err)
	}

	// Invalid - SameSite=None without Secure
	cookie = Cookie{
		Name:     "test",
		Value:    "value",
		SameSite: SameSiteNoneMode,
		Secure:   false,
	}
	if err := cookie.Valid(); err == nil {
		t.Error("SameSite=None without Secure should return error")
	}
}

func TestCookieIsExpired(t *testing.T) {
	now := time.Now()

	// Not expired
	cookie := Cookie{
		Name:    "test",
		Value:   "value",
		Expires: now.Add(time.Hour),
	}
	if cookie.IsExpired(now) {
		t.Error("Cookie should not be expired")
	}

	// Expired by time
	cookie.Expires = now.Add(-time.Hour)
	if !cookie.IsExpired(now) {
		t.Error("Cookie should be expired")
	}

	// Expired by MaxAge
	cookie = Cookie{
		Name:   "test",
		Value:  "value",
		MaxAge: -1,
	}
	if !cookie.IsExpired(now) {
		t.Error("Cookie with MaxAge=-1 should be expired")
	}
}
