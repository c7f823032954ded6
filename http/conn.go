package http

import (
	"context"
	"net"
	"time"
)

const (
	badRequestBody   = "400 Bad Request"
	unauthorizedBody = "401 Unauthorized"
)

// ServeConn runs the keep-alive loop for one connection: collect, decode,
// dispatch, write, and repeat until the peer closes, asks to close, sends
// something undecodable, or a write fails.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if s.closed.Load() {
		return
	}

	if s.conns != nil {
		s.conns.Store(conn, time.Now())
		defer s.conns.Delete(conn)
	}
	s.Metrics.ConnectionOpened(ctx)
	defer s.Metrics.ConnectionClosed(ctx)

	logger := s.logger().With("remote", conn.RemoteAddr().String())

	for {
		buf, err := Collect(conn, logger)
		if err != nil {
			return
		}

		res, keepAlive := s.handle(ctx, buf)

		if _, err := res.WriteTo(conn); err != nil {
			if !isPeerGone(err) {
				logger.Warn("writing response failed", "error", err)
			}
			return
		}

		if !keepAlive {
			return
		}
	}
}

// handle decodes one buffered request and produces its response. The second
// result is false when the connection must not be reused.
func (s *Server) handle(ctx context.Context, buf []byte) (Response, bool) {
	req, offset, err := ParseRequestLine(buf)
	if err != nil {
		s.logger().DebugContext(ctx, "rejecting malformed request", "error", err)
		return NewResponse().WithStatus(StatusBadRequest).WithText(badRequestBody), false
	}

	req.Headers, offset = ParseHeaders(buf, offset)
	req.Body = ParseBody(req.Headers, buf, offset)
	req = req.WithContext(ctx)

	return s.dispatch(req), req.KeepAlive()
}

// dispatch runs the pipeline on a copy of req and hands its response to the
// router, unless the pipeline refused the request.
func (s *Server) dispatch(req Request) Response {
	res := s.Pipeline.Dispatch(req.Clone())
	if res.Status == StatusUnauthorized {
		return res.WithText(unauthorizedBody)
	}

	return s.Router.Lookup(req.Method, req.Path)(req, res)
}
