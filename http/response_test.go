package http

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewResponse(t *testing.T) {
	res := NewResponse()

	if res.Status != StatusNotFound {
		t.Errorf("Expected status %d, got %d", StatusNotFound, res.Status)
	}
	if len(res.Headers) != 0 || len(res.Body) != 0 {
		t.Errorf("Expected empty response, got %+v", res)
	}
}

func TestResponseFinalize(t *testing.T) {
	res := NewResponse().WithStatus(StatusOK).WithText("Hello")

	expected := "HTTP/1.1 200 OK\r\n" +
		"content-length: 5\r\n" +
		"content-type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Hello"

	if got := string(res.Finalize()); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestResponseFinalizeRecomputesLength(t *testing.T) {
	res := NewResponse().WithStatus(StatusOK).WithText("Hello")
	res.Headers["Content-Length"] = "999"

	first := string(res.Finalize())
	if strings.Contains(first, "999") {
		t.Errorf("stale content length survived: %q", first)
	}

	res.Body = []byte("Hello, World!")
	second := string(res.Finalize())
	if !strings.Contains(second, "content-length: 13\r\n") {
		t.Errorf("expected updated length, got %q", second)
	}
	if strings.Count(strings.ToLower(second), "content-length") != 1 {
		t.Errorf("expected exactly one content-length, got %q", second)
	}
}

func TestResponseWithHeader(t *testing.T) {
	res := NewResponse().
		WithHeader(" X-Custom ", "yes").
		WithHeader("Bad:Name", "v").
		WithHeader("X-Split\r\nInjected", "v").
		WithHeader("X-Value", "a\r\nb")

	if len(res.Headers) != 1 {
		t.Errorf("expected only the valid header, got %v", res.Headers)
	}

	value, found := res.Header("x-custom")
	if !found || value != "yes" {
		t.Errorf("expected x-custom=yes, got %q", value)
	}
}

func TestResponseWithJSON(t *testing.T) {
	res := NewResponse().WithStatus(StatusOK).WithJSON(map[string]string{"a": "1"})

	if string(res.Body) != `{"a":"1"}` {
		t.Errorf("unexpected body %s", res.Body)
	}
	if ct, _ := res.Header(HeaderContentType); ct != ContentTypeJSON {
		t.Errorf("unexpected content type %s", ct)
	}

	res = NewResponse().WithStatus(StatusOK).WithJSON(make(chan int))

	if res.Status != StatusInternalError {
		t.Errorf("Expected status %d, got %d", StatusInternalError, res.Status)
	}
	if !bytes.Equal(res.Body, serializeErrorBody) {
		t.Errorf("unexpected body %s", res.Body)
	}
	if v, _ := res.Header("X-Serialize-Error"); v != "true" {
		t.Error("expected x-serialize-error header")
	}
}

func TestResponseWithMethods(t *testing.T) {
	res := NewResponse().WithHTML("<h1>Hello</h1>")
	if string(res.Body) != "<h1>Hello</h1>" {
		t.Error("WithHTML should set body")
	}
	if ct, _ := res.Header(HeaderContentType); ct != ContentTypeHTML {
		t.Errorf("unexpected content type %s", ct)
	}

	res = res.WithCookie(Cookie{Name: "test", Value: "value", Path: "/"})
	if v, _ := res.Header(HeaderSetCookie); v != "test=value; Path=/" {
		t.Errorf("unexpected cookie header %q", v)
	}
}

func TestResponseWriteTo(t *testing.T) {
	res := NotFoundResponse()

	var buf bytes.Buffer
	n, err := res.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}
	if !strings.HasPrefix(buf.String(), "HTTP/1.1 404 Not Found\r\n") {
		t.Errorf("unexpected status line in %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\r\n\r\n404 Not Found") {
		t.Errorf("unexpected body in %q", buf.String())
	}
}

func TestStatus(t *testing.T) {
	testCases := []struct {
		status   Status
		expected string
	}{
		{StatusOK, "200 OK"},
		{StatusBadRequest, "400 Bad Request"},
		{StatusUnauthorized, "401 Unauthorized"},
		{StatusNotFound, "404 Not Found"},
		{StatusMethodNotAllowed, "405 Method Not Allowed"},
		{StatusInternalError, "500 Internal Error"},
		{Status(299), "299 Unknown Status Code"},
	}

	for _, tc := range testCases {
		if got := tc.status.String(); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}

func TestResponseCopiesAreIndependent(t *testing.T) {
	base := NewResponse().WithHeader("X-Base", "1")

	derived := base.WithHeader("X-Derived", "2").WithText("body")
	if _, found := base.Header("X-Derived"); found {
		t.Error("WithHeader on a copy changed the original headers")
	}
	if _, found := base.Header(HeaderContentType); found {
		t.Error("WithText on a copy changed the original headers")
	}
	if v, _ := derived.Header("X-Base"); v != "1" {
		t.Errorf("copy lost inherited header, got %v", derived.Headers)
	}

	kept := derived
	derived.Finalize()
	if _, found := kept.Header(HeaderContentLength); found {
		t.Error("Finalize changed the headers of another copy")
	}
}

func TestResponseWithHeaderRejectsEmptyName(t *testing.T) {
	for _, name := range []string{"", "   "} {
		res := NewResponse().WithHeader(name, "v")
		if len(res.Headers) != 0 {
			t.Errorf("%q: expected header to be dropped, got %v", name, res.Headers)
		}
	}

	expected := "HTTP/1.1 404 Not Found\r\ncontent-length: 0\r\n\r\n"
	res := NewResponse().WithHeader("", "v")
	if got := string(res.Finalize()); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
