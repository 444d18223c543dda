package control

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/preesm/spider2/internal/log"
)

// Server is a JSON-RPC server over a Unix domain socket, one line per
// frame, mirroring the teacher's UDS control channel.
type Server struct {
	socketPath string
	handler    *Handler
	listener   net.Listener

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
	stopped bool
}

// NewServer creates a Server bound to socketPath, dispatching requests
// to handler.
func NewServer(socketPath string, handler *Handler) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start binds the socket and accepts connections in the background
// until ctx is cancelled, then tears the server down. The bind happens
// synchronously so a caller can rely on the socket existing as soon as
// Start returns without error.
func (s *Server) Start(ctx context.Context) error {
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", s.socketPath, err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	logger := log.GetLogger()
	logger.WithField("socket", s.socketPath).Info("control server started")

	go s.acceptLoop(ctx)
	go func() {
		<-ctx.Done()
		logger.Debug("control server stopping")
		s.Stop()
	}()

	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	logger := log.GetLogger()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return
			}
			logger.WithError(err).Error("failed to accept control connection")
			continue
		}

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	logger := log.GetLogger()
	scanner := bufio.NewScanner(conn)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp := Response{JSONRPC: "2.0", Error: &ErrorInfo{Code: ErrCodeParseError, Message: err.Error()}}
			encoder.Encode(resp)
			continue
		}

		resp := s.handler.Handle(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			logger.WithError(err).Error("failed to send control response")
			return
		}
	}
}

// Stop closes the listener, every open connection, and removes the
// socket file. Safe to call more than once.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	for _, conn := range conns {
		conn.Close()
	}
	s.wg.Wait()
	os.RemoveAll(s.socketPath)

	log.GetLogger().Info("control server stopped")
	return nil
}
