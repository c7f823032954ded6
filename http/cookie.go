package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type SameSite int

const (
	SameSiteDefaultMode SameSite = iota + 1
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

const (
	DefaultCookiePath     = "/"
	DefaultCookieLifetime = 24 * time.Hour

	cookieTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

var (
	ErrInvalidCookie = errors.New("http: invalid cookie format")
	ErrCookieTooLong = errors.New("http: cookie value too long")
)

// Cookie describes one Set-Cookie value.
type Cookie struct {
	Name  string
	Value string

	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite SameSite
}

// NewCookie returns a cookie scoped to "/" that expires in a day and is
// HttpOnly and Secure.
func NewCookie(name, value string) Cookie {
	return Cookie{
		Name:     name,
		Value:    value,
		Path:     DefaultCookiePath,
		Expires:  time.Now().Add(DefaultCookieLifetime),
		HttpOnly: true,
		Secure:   true,
	}
}

func (c Cookie) String() string {
	var b strings.Builder

	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}

	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(cookieTimeFormat))
	}

	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	} else if c.MaxAge < 0 {
		b.WriteString("; Max-Age=0")
	}

	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}

	if c.Secure {
		b.WriteString("; Secure")
	}

	switch c.SameSite {
	case SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case SameSiteStrictMode:
		b.WriteString("; SameSite=Strict")
	case SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	}

	return b.String()
}

// Valid checks the cookie against RFC 6265.
func (c Cookie) Valid() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCookie)
	}

	for _, r := range c.Name {
		if !isValidCookieNameChar(r) {
			return fmt.Errorf("%w: invalid character in name: %q", ErrInvalidCookie, r)
		}
	}

	if strings.ContainsAny(c.Value, ";\r\n") {
		return fmt.Errorf("%w: invalid character in value", ErrInvalidCookie)
	}

	if len(c.Value) > 4096 {
		return ErrCookieTooLong
	}

	if c.SameSite == SameSiteNoneMode && !c.Secure {
		return fmt.Errorf("%w: SameSite=None requires Secure", ErrInvalidCookie)
	}

	return nil
}

func (c Cookie) IsExpired(now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

func isValidCookieNameChar(r rune) bool {
	return r > 0x20 && r < 0x7f && !strings.ContainsRune(`"(),/:;<=>?@[\]{}`, r)
}
