package http

const (
	// MaxHeaderBytes caps how much the collector buffers for one request.
	MaxHeaderBytes = 8000
	ReadChunkSize  = 512

	DefaultWorkerCount = 10

	SessionCookieName = "session_id"
)

const (
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderConnection    = "Connection"
	HeaderAuthorization = "Authorization"
	HeaderCookie        = "Cookie"
	HeaderSetCookie     = "Set-Cookie"
	HeaderDuration      = "X-Duration"
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
)

var (
	crlf             = []byte("\r\n")
	headerTerminator = []byte("\r\n\r\n")
	protocolHttp11   = "HTTP/1.1"
	protocolPrefix   = "HTTP/1."
	headerSeparator  = ": "
	connectionClose  = "close"
)
