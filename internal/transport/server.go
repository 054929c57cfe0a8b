package transport

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	errors "golang.org/x/xerrors"

	"github.com/lanikai/framecast/internal/encode"
	"github.com/lanikai/framecast/internal/logging"
	"github.com/lanikai/framecast/internal/metrics"
	"github.com/lanikai/framecast/internal/queue"
)

var log = logging.DefaultLogger.WithTag("server")

const (
	DefaultPort         = 12345
	DefaultWriteTimeout = 2 * time.Second
)

type State int32

const (
	Listening State = iota
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Listening:
		return "listening"
	case Connected:
		return "connected"
	default:
		return "closed"
	}
}

type ServerConfig struct {
	// TCP listen address, e.g. ":12345".
	Addr string

	// Upper bound on a single frame write. A stalled client is dropped after
	// this long.
	WriteTimeout time.Duration

	// Drop payloads while no client is connected, instead of blocking the
	// encoder until one arrives.
	DiscardWhenIdle bool
}

// A client connection. At most one exists at a time.
type session struct {
	id    uuid.UUID
	conn  net.Conn
	sent  int
	since time.Time
}

/*
Server streams encoded files to a single TCP client. While no client is
connected, payloads are discarded (or waited on, see DiscardWhenIdle). A write
failure ends the session and the server goes back to accepting.

	srv, err := transport.Listen(cfg, rx)
	if err != nil { ... }  // setup failure
	err = srv.Run(ctx)
*/
type Server struct {
	cfg ServerConfig
	ln  net.Listener
	in  *queue.Receiver[encode.Payload]

	conns chan net.Conn
	done  chan struct{}
	state int32

	mu      sync.Mutex
	current *session
	closed  bool
}

// Listen binds the listening socket. Only one connection is accepted at a
// time; further clients wait in the kernel backlog.
func Listen(cfg ServerConfig, in *queue.Receiver[encode.Payload]) (*Server, error) {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, errors.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	log.Medium("Listening on %v", ln.Addr())
	return &Server{
		cfg:   cfg,
		ln:    netutil.LimitListener(ln, 1),
		in:    in,
		conns: make(chan net.Conn),
		done:  make(chan struct{}),
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

func (s *Server) State() State {
	return State(atomic.LoadInt32(&s.state))
}

// Run serves until ctx is cancelled or the payload channel is closed. It
// returns nil in both cases.
func (s *Server) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.shutdown)
	defer stop()
	defer s.shutdown()

	go s.acceptLoop()

	for {
		select {
		case conn, ok := <-s.conns:
			if !ok {
				return nil
			}
			s.open(conn)

		case p, ok := <-s.in.C():
			if !ok {
				log.Medium("Payload channel closed, server exiting")
				return nil
			}
			metrics.SetQueueDepth(s.in.Queue().Name(), s.in.Queue().Len())
			if !s.deliver(ctx, p) {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// deliver sends p to the current client, or disposes of it when there is
// none. Returns false if the server should exit.
func (s *Server) deliver(ctx context.Context, p encode.Payload) bool {
	defer p.Release()

	if s.State() != Connected {
		if s.cfg.DiscardWhenIdle {
			metrics.PayloadsDiscarded.Inc()
			log.Low("No client, discarding %s", p.Name)
			return true
		}
		select {
		case conn, ok := <-s.conns:
			if !ok {
				return false
			}
			s.open(conn)
		case <-ctx.Done():
			return false
		}
	}

	sess := s.current
	if sess == nil {
		return false
	}
	sess.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := WriteFrame(sess.conn, p.Name, p.Bytes()); err != nil {
		if ctx.Err() == nil {
			log.Error("Session %v: sending %s: %v", sess.id, p.Name, err)
		}
		s.end("error")
		return true
	}
	sess.sent++
	metrics.PayloadsSent.Inc()
	log.Low("Session %v: sent %s (%d bytes)", sess.id, p.Name, p.Size())
	return true
}

func (s *Server) acceptLoop() {
	defer close(s.conns)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			log.Error("Accept failed: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		select {
		case s.conns <- conn:
		case <-s.done:
			conn.Close()
			return
		}
	}
}

func (s *Server) open(conn net.Conn) {
	if s.current != nil {
		s.end("replaced")
	}
	sess := &session{id: uuid.New(), conn: conn, since: time.Now()}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.current = sess
	s.mu.Unlock()

	atomic.StoreInt32(&s.state, int32(Connected))
	log.High("Session %v: client %v connected", sess.id, conn.RemoteAddr())
}

// end closes the current session and returns to Listening.
func (s *Server) end(reason string) {
	s.mu.Lock()
	sess := s.current
	s.current = nil
	s.mu.Unlock()
	if sess == nil {
		return
	}

	sess.conn.Close()
	if s.State() == Connected {
		atomic.StoreInt32(&s.state, int32(Listening))
	}
	metrics.Sessions.WithLabelValues(reason).Inc()
	log.High("Session %v: closed (%s) after %d files in %v", sess.id, reason, sess.sent, time.Since(sess.since).Round(time.Millisecond))
}

// shutdown closes the listener and any session, unblocking Accept and
// in-flight writes. Safe to call more than once.
func (s *Server) shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	sess := s.current
	s.mu.Unlock()

	atomic.StoreInt32(&s.state, int32(Closed))
	s.ln.Close()
	if sess != nil {
		sess.conn.Close()
	}
}

// Close releases the listening socket without running the server.
func (s *Server) Close() error {
	s.shutdown()
	if s.current != nil {
		s.end("shutdown")
	}
	return nil
}
