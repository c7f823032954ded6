package http

import "strconv"

// Status is the closed set of codes this server produces.
type Status uint16

const (
	StatusOK               Status = 200 // RFC 7231, 6.3.1
	StatusBadRequest       Status = 400 // RFC 7231, 6.5.1
	StatusUnauthorized     Status = 401 // RFC 7235, 3.1
	StatusNotFound         Status = 404 // RFC 7231, 6.5.4
	StatusMethodNotAllowed Status = 405 // RFC 7231, 6.5.5
	StatusInternalError    Status = 500 // RFC 7231, 6.6.1
)

var (
	unknownStatusCode = "Unknown Status Code"

	statusMessages = [...]string{
		StatusOK: "OK",

		StatusBadRequest:       "Bad Request",
		StatusUnauthorized:     "Unauthorized",
		StatusNotFound:         "Not Found",
		StatusMethodNotAllowed: "Method Not Allowed",

		StatusInternalError: "Internal Error",
	}
)

func (s Status) Reason() string {
	if int(s) < len(statusMessages) && statusMessages[s] != "" {
		return statusMessages[s]
	}
	return unknownStatusCode
}

func (s Status) Code() int {
	return int(s)
}

func (s Status) String() string {
	return strconv.Itoa(int(s)) + " " + s.Reason()
}
