package http

import (
	"sync/atomic"
)

// Middleware sees every request before the router. It may change the
// request before calling next, change the response after, or return
// without calling next at all.
type Middleware interface {
	Handle(req Request, next Next) Response
}

type MiddlewareFunc func(req Request, next Next) Response

func (f MiddlewareFunc) Handle(req Request, next Next) Response {
	return f(req, next)
}

// Next points at the remainder of a pipeline.
type Next struct {
	chain []Middleware
	index int
}

// Call runs the next middleware, or returns a bare NotFound response once
// the chain is exhausted.
func (next Next) Call(req Request) Response {
	if next.index >= len(next.chain) {
		return NewResponse()
	}
	return next.chain[next.index].Handle(req, Next{chain: next.chain, index: next.index + 1})
}

// Pipeline runs middleware in the order they were added: the first one
// added sees the request first and the response last. It is frozen by the
// first Dispatch.
type Pipeline struct {
	middleware []Middleware
	frozen     atomic.Bool
}

func NewPipeline(middleware ...Middleware) *Pipeline {
	return &Pipeline{middleware: middleware}
}

func (p *Pipeline) Use(middleware ...Middleware) *Pipeline {
	if p.frozen.Load() {
		panic("http: pipeline modified after first dispatch")
	}
	p.middleware = append(p.middleware, middleware...)
	return p
}

func (p *Pipeline) Len() int {
	return len(p.middleware)
}

func (p *Pipeline) Dispatch(req Request) Response {
	if p == nil {
		return NewResponse()
	}
	if !p.frozen.Load() {
		p.frozen.Store(true)
	}
	return Next{chain: p.middleware}.Call(req)
}
