package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var serializeErrorBody = []byte(`{"Error": "Could not serialize JSON"}`)

// Response is built fluently and passed by value through the pipeline and
// router. Header names are stored lowercase.
type Response struct {
	Status  Status
	Headers map[string]string
	Body    []byte
}

// NewResponse starts every exchange: NotFound with nothing in it.
func NewResponse() Response {
	return Response{
		Status:  StatusNotFound,
		Headers: make(map[string]string),
		Body:    []byte{},
	}
}

func NotFoundResponse() Response {
	return NewResponse().WithText("404 Not Found")
}

func (res Response) WithStatus(status Status) Response {
	res.Status = status
	return res
}

// WithHeader sets name (trimmed, lowercased) to value on a copy of the
// headers. Empty names, names containing ':', CR or LF and values containing
// CR or LF are dropped.
func (res Response) WithHeader(name, value string) Response {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, ":\r\n") || strings.ContainsAny(value, "\r\n") {
		slog.Debug("response: invalid header dropped", "name", name)
		return res
	}

	res.Headers = cloneHeaders(res.Headers)
	res.Headers[name] = value
	return res
}

func cloneHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return make(map[string]string)
	}
	return maps.Clone(headers)
}

func (res Response) WithBody(contentType string, body []byte) Response {
	res = res.WithHeader(HeaderContentType, contentType)
	res.Body = body
	return res
}

func (res Response) WithText(payload string) Response {
	return res.WithBody(ContentTypeText, []byte(payload))
}

func (res Response) WithHTML(payload string) Response {
	return res.WithBody(ContentTypeHTML, []byte(payload))
}

// WithJSON serializes payload. A failure downgrades the response to a fixed
// 500 body instead of returning an error.
func (res Response) WithJSON(payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("response: encoding data to json failed", "error", err)
		return res.
			WithHeader("X-Serialize-Error", "true").
			WithStatus(StatusInternalError).
			WithBody(ContentTypeJSON, bytes.Clone(serializeErrorBody))
	}
	return res.WithBody(ContentTypeJSON, body)
}

func (res Response) WithCookie(cookie Cookie) Response {
	return res.WithHeader(HeaderSetCookie, cookie.String())
}

// Header returns the value stored for name, matched case-insensitively.
func (res *Response) Header(name string) (string, bool) {
	v, found := res.Headers[strings.ToLower(name)]
	return v, found
}

// Finalize serializes the response. content-length always reflects the
// current body, so calling it more than once is safe.
func (res *Response) Finalize() []byte {
	res.Headers = cloneHeaders(res.Headers)
	for name := range res.Headers {
		if strings.EqualFold(name, HeaderContentLength) {
			delete(res.Headers, name)
		}
	}
	res.Headers[strings.ToLower(HeaderContentLength)] = strconv.Itoa(len(res.Body))

	names := make([]string, 0, len(res.Headers))
	for name := range res.Headers {
		names = append(names, name)
	}
	slices.Sort(names)

	var b bytes.Buffer
	b.Grow(64 + 32*len(names) + len(res.Body))

	b.WriteString(protocolHttp11)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(res.Status.Code()))
	b.WriteByte(' ')
	b.WriteString(res.Status.Reason())
	b.Write(crlf)

	for _, name := range names {
		b.WriteString(name)
		b.WriteString(headerSeparator)
		b.WriteString(res.Headers[name])
		b.Write(crlf)
	}
	b.Write(crlf)
	b.Write(res.Body)

	return b.Bytes()
}

// WriteTo finalizes the response and writes it in full to w.
func (res *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(res.Finalize())
	return int64(n), err
}
