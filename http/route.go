package http

import "strings"

type Route struct {
	Methods []Method
	Path    string
	Handler Handler
}

// matches supports exact paths and a trailing "*" for prefixes.
func (route Route) matches(path string) bool {
	if prefix, found := strings.CutSuffix(route.Path, "*"); found {
		return strings.HasPrefix(path, prefix)
	}
	return route.Path == path
}

var NotFoundHandler Handler = func(req Request, res Response) Response {
	return res.WithStatus(StatusNotFound).WithText("404 Not Found")
}

var MethodNotAllowedHandler Handler = func(req Request, res Response) Response {
	return res.WithStatus(StatusMethodNotAllowed).WithText("405 Method Not Allowed")
}
