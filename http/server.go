package http

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freekieb7/rawhttp/telemetry"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	ErrServerClosed         = errors.New("http: server closed")
	ErrReusePortUnsupported = errors.New("http: SO_REUSEPORT is not supported on this platform")
)

const acceptRetryDelay = 5 * time.Millisecond

type Server struct {
	Name     string
	Router   Router
	Pipeline *Pipeline
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
	Workers  int

	// ReusePort sets SO_REUSEPORT so several processes can share addr.
	ReusePort bool

	mu       sync.Mutex
	pool     *WorkerPool
	listener net.Listener
	conns    *xsync.MapOf[net.Conn, time.Time]
	closed   atomic.Bool
}

func NewServer(name string) *Server {
	return &Server{
		Name:     name,
		Router:   NewRouter(),
		Pipeline: NewPipeline(),
		Logger:   slog.Default(),
		Workers:  DefaultWorkerCount,
		conns:    xsync.NewMapOf[net.Conn, time.Time](),
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := s.listen(ctx, addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

func (s *Server) ListenAndServeTLS(ctx context.Context, addr string, config *tls.Config) error {
	listener, err := s.listen(ctx, addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, tls.NewListener(listener, config))
}

func (s *Server) listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	if s.ReusePort {
		lc.Control = setReusePort
	}
	return lc.Listen(ctx, "tcp", addr)
}

// Serve accepts connections and queues each one on the worker pool. It
// returns ErrServerClosed after Shutdown.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	pool, err := s.start(ctx, listener)
	if err != nil {
		listener.Close()
		return err
	}

	s.logger().Info("listening", "server", s.Name, "addr", listener.Addr().String(), "workers", pool.size)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			s.logger().Warn("failed to accept connection", "error", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		err = pool.Enqueue(JobFunc(func(ctx context.Context) {
			s.ServeConn(ctx, conn)
		}))
		if err != nil {
			conn.Close()
			return ErrServerClosed
		}
	}
}

func (s *Server) start(ctx context.Context, listener net.Listener) (*WorkerPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrServerClosed
	}
	if s.conns == nil {
		s.conns = xsync.NewMapOf[net.Conn, time.Time]()
	}
	if s.pool == nil {
		s.pool = NewWorkerPool(ctx, s.Workers, s.logger())
	}
	s.listener = listener

	return s.pool, nil
}

// Shutdown stops accepting, closes open connections and waits for the
// workers to drain, or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	listener, pool := s.listener, s.pool
	s.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}

	if s.conns != nil {
		s.conns.Range(func(conn net.Conn, _ time.Time) bool {
			conn.Close()
			return true
		})
	}

	if pool == nil {
		return err
	}

	pool.Close()
	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

func (s *Server) ActiveConnections() int {
	if s.conns == nil {
		return 0
	}
	return s.conns.Size()
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
