package http

import "slices"

// Handler produces the final response. res is whatever the middleware
// pipeline returned.
type Handler func(req Request, res Response) Response

type Router struct {
	Routes []Route
}

func NewRouter() Router {
	return Router{
		Routes: make([]Route, 0),
	}
}

func (router *Router) GET(path string, handler Handler) {
	router.Any([]Method{MethodGet}, path, handler)
}

func (router *Router) POST(path string, handler Handler) {
	router.Any([]Method{MethodPost}, path, handler)
}

func (router *Router) PUT(path string, handler Handler) {
	router.Any([]Method{MethodPut}, path, handler)
}

func (router *Router) DELETE(path string, handler Handler) {
	router.Any([]Method{MethodDelete}, path, handler)
}

func (router *Router) Any(methods []Method, path string, handler Handler) {
	router.Routes = append(router.Routes, Route{
		Methods: methods,
		Path:    path,
		Handler: handler,
	})
}

func (router *Router) Group(path string, groupFunc func(group *Router)) {
	group := NewRouter()

	groupFunc(&group)

	for _, route := range group.Routes {
		route.Path = path + route.Path
		router.Routes = append(router.Routes, route)
	}
}

// Lookup resolves a handler. A known path with the wrong method gets the
// MethodNotAllowed handler; an unknown path gets NotFound.
func (router *Router) Lookup(method Method, path string) Handler {
	pathMatched := false
	for _, route := range router.Routes {
		if !route.matches(path) {
			continue
		}

		pathMatched = true
		if slices.Contains(route.Methods, method) {
			return route.Handler
		}
	}

	if pathMatched {
		return MethodNotAllowedHandler
	}
	return NotFoundHandler
}
