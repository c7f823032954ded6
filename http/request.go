package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var (
	// ErrBadRequest is the protocol error class; every decode failure wraps it.
	ErrBadRequest = errors.New("http: bad request")

	ErrNoRequestLine  = errors.New("http: request line not terminated")
	ErrMissingTokens  = errors.New("http: request line needs method, target and version")
	ErrUnknownMethod  = errors.New("http: unknown method")
	ErrEmptyPath      = errors.New("http: empty path")
	ErrBadVersion     = errors.New("http: unsupported protocol version")
	ErrBadEscape      = errors.New("http: invalid percent escape")
	ErrNonASCIIEscape = errors.New("http: percent escape outside 7-bit range")

	ErrNoCookie = errors.New("http: named cookie not present")
)

type Method uint8

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodDelete
)

var methodNames = [...]string{
	MethodGet:    "GET",
	MethodPost:   "POST",
	MethodPut:    "PUT",
	MethodDelete: "DELETE",
}

// ParseMethod matches token exactly against the supported verbs.
func ParseMethod(token string) (Method, error) {
	switch token {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "PUT":
		return MethodPut, nil
	case "DELETE":
		return MethodDelete, nil
	}
	return 0, fmt.Errorf("%w: %w: %q", ErrBadRequest, ErrUnknownMethod, token)
}

func (m Method) String() string {
	if int(m) < len(methodNames) && methodNames[m] != "" {
		return methodNames[m]
	}
	return "UNKNOWN"
}

// Headers keeps header names as the client sent them.
type Headers map[string]string

// Get looks the name up exactly first and falls back to a case-insensitive
// match. Among several case variants the smallest key wins.
func (h Headers) Get(name string) (string, bool) {
	if v, found := h[name]; found {
		return v, true
	}

	winner, found := "", false
	for k := range h {
		if strings.EqualFold(k, name) && (!found || k < winner) {
			winner, found = k, true
		}
	}
	if !found {
		return "", false
	}
	return h[winner], true
}

type Request struct {
	Method  Method
	Path    string
	Version string
	Query   map[string]string
	Headers Headers
	Body    []byte

	// Cookies is nil until ParseCookies or Cookie fills it.
	Cookies map[string]string

	ctx context.Context
}

// Context returns the connection's context, never nil.
func (req *Request) Context() context.Context {
	if req.ctx != nil {
		return req.ctx
	}
	return context.Background()
}

func (req Request) WithContext(ctx context.Context) Request {
	req.ctx = ctx
	return req
}

func (req *Request) HeaderValue(name string) (string, bool) {
	return req.Headers.Get(name)
}

func (req *Request) QueryParam(name string) (string, bool) {
	v, found := req.Query[name]
	return v, found
}

func (req *Request) Cookie(name string) (string, error) {
	if req.Cookies == nil {
		req.Cookies = ParseCookies(req.Headers)
	}

	v, found := req.Cookies[name]
	if !found {
		return "", ErrNoCookie
	}
	return v, nil
}

// KeepAlive is false only when the client asked for Connection: close.
func (req *Request) KeepAlive() bool {
	v, found := req.Headers.Get(HeaderConnection)
	return !found || !strings.EqualFold(strings.TrimSpace(v), connectionClose)
}

// Clone returns a copy that shares no maps or body with req.
func (req Request) Clone() Request {
	req.Query = maps.Clone(req.Query)
	req.Headers = maps.Clone(req.Headers)
	req.Cookies = maps.Clone(req.Cookies)
	req.Body = bytes.Clone(req.Body)
	return req
}

// ParseRequestLine decodes METHOD SP TARGET SP VERSION CRLF at the start of
// buf. The returned offset points just past the LF.
func ParseRequestLine(buf []byte) (Request, int, error) {
	end := bytes.Index(buf, crlf)
	if end < 0 {
		return Request{}, 0, fmt.Errorf("%w: %w", ErrBadRequest, ErrNoRequestLine)
	}

	tokens := strings.Split(string(buf[:end]), " ")
	if len(tokens) < 3 {
		return Request{}, 0, fmt.Errorf("%w: %w", ErrBadRequest, ErrMissingTokens)
	}

	method, err := ParseMethod(tokens[0])
	if err != nil {
		return Request{}, 0, err
	}

	path, rawQuery, hasQuery := strings.Cut(tokens[1], "?")
	if path == "" {
		return Request{}, 0, fmt.Errorf("%w: %w", ErrBadRequest, ErrEmptyPath)
	}

	version := strings.TrimSpace(tokens[2])
	if !strings.HasPrefix(version, protocolPrefix) {
		return Request{}, 0, fmt.Errorf("%w: %w: %q", ErrBadRequest, ErrBadVersion, version)
	}

	query := make(map[string]string)
	if hasQuery {
		decoded, err := PercentDecode(rawQuery)
		if err != nil {
			return Request{}, 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		parseQuery(decoded, query)
	}

	return Request{
		Method:  method,
		Path:    path,
		Version: version,
		Query:   query,
		Headers: Headers{},
		Body:    []byte{},
	}, end + len(crlf), nil
}

func parseQuery(raw string, query map[string]string) {
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		// a=1=2 keeps only the segment between the first two '='.
		if i := strings.IndexByte(value, '='); i >= 0 {
			value = value[:i]
		}
		query[key] = value
	}
}

// ParseHeaders consumes "Name: Value" lines from offset up to and including
// the blank line. Lines without ": " are skipped. A missing blank line
// consumes the rest of buf.
func ParseHeaders(buf []byte, offset int) (Headers, int) {
	headers := make(Headers)

	for offset < len(buf) {
		end := bytes.Index(buf[offset:], crlf)
		if end < 0 {
			parseHeaderLine(headers, buf[offset:])
			return headers, len(buf)
		}

		line := buf[offset : offset+end]
		offset += end + len(crlf)
		if len(line) == 0 {
			break
		}

		parseHeaderLine(headers, line)
	}

	return headers, offset
}

func parseHeaderLine(headers Headers, line []byte) {
	name, value, found := strings.Cut(string(line), headerSeparator)
	if !found {
		return
	}

	// A later line replaces an earlier one whatever its case.
	for k := range headers {
		if k != name && strings.EqualFold(k, name) {
			delete(headers, k)
		}
	}
	headers[name] = value
}

// ParseBody slices Content-Length bytes starting at offset. A missing header
// means no body, an unparsable one counts as zero, and a declared length
// longer than what was buffered is truncated to what is there.
func ParseBody(headers Headers, buf []byte, offset int) []byte {
	raw, found := headers.Get(HeaderContentLength)
	if !found {
		return []byte{}
	}

	length, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || length < 0 {
		length = 0
	}

	offset = min(max(offset, 0), len(buf))
	end := len(buf)
	if length < end-offset {
		end = offset + length
	}

	return bytes.Clone(buf[offset:end])
}

// ParseCookies splits the Cookie header into name/value pairs. No header
// yields an empty map.
func ParseCookies(headers Headers) map[string]string {
	cookies := make(map[string]string)

	raw, found := headers.Get(HeaderCookie)
	if !found {
		return cookies
	}

	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, _ := strings.Cut(part, "=")
		cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return cookies
}
