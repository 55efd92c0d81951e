package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Server accepts TCP connections and hands each one to its own Worker.
// Workers share nothing mutable: the static root is read-only after Start
// and quit is written once, by Stop.
type Server struct {
	addr string
	dir  string
	root string // absolute form of dir, set by Start
	ln   net.Listener
	quit chan struct{}
	stop sync.Once
	log  zerolog.Logger
}

func NewServer(addr, dir string, logger zerolog.Logger) *Server {
	return &Server{
		addr: addr,
		dir:  dir,
		quit: make(chan struct{}),
		log:  logger,
	}
}

// Start creates the static root if absent and binds the listener; there is
// no fallback port.
func (s *Server) Start() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create static root: %w", err)
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return fmt.Errorf("resolve static root: %w", err)
	}
	s.root = root

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Str("root", root).Msg("listening")

	go s.acceptLoop()
	return nil
}

// Addr reports the bound address. Valid once Start has returned nil.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				s.log.Info().Msg("accept loop stopped")
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		go NewWorker(conn, s.root, s.log).Run() // worker takes ownership of conn
	}
}

// Stop closes the listener, unblocking Accept. Workers already running
// finish on their own, so a slow client can delay process exit. Safe to
// call more than once.
func (s *Server) Stop() {
	s.stop.Do(func() {
		close(s.quit)
		if s.ln != nil {
			s.ln.Close()
		}
	})
}
