package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/runtimepath"
	"github.com/1broseidon/ringlight/internal/uiloop"
)

// ErrDaemonRunning means another daemon already serves the socket.
var ErrDaemonRunning = errors.New("daemon already running")

const requestTimeout = 5 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Controller *controller.Controller
	Loop       *uiloop.Loop
	Logger     *slog.Logger
}

// Server handles IPC requests from clients. Every controller call runs on
// the UI loop.
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         *controller.Controller
	loop         *uiloop.Loop
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server. A stale socket left by a crashed
// daemon is removed; a live one is an error.
func NewServer(opts ServerOptions) (*Server, error) {
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}

	if conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond); err == nil {
		conn.Close()
		return nil, fmt.Errorf("%w on %s", ErrDaemonRunning, socketPath)
	}
	os.Remove(socketPath)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctrl:       opts.Controller,
		loop:       opts.Loop,
		logger:     logger,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			shuttingDown := s.shuttingDown
			s.shutdownMu.Unlock()
			if shuttingDown || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * requestTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.write(conn, s.handleCommand(req))
}

func (s *Server) write(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandPing:
		return ok(nil)
	case CommandGetStatus:
		return s.query(func() (any, error) { return s.ctrl.Status(), nil })
	case CommandGetDisplays:
		return s.query(func() (any, error) {
			displays, err := s.ctrl.AvailableDisplays()
			if err != nil {
				return nil, err
			}
			return DisplaysData{Displays: displays}, nil
		})
	case CommandGetPresets:
		return s.query(func() (any, error) {
			data := PresetsData{Presets: s.ctrl.Presets()}
			if p, ok := s.ctrl.SelectedPreset(); ok {
				data.Selected = p.Name
			}
			return data, nil
		})
	case CommandSet:
		var patch SetPayload
		if err := decodePayload(req.Payload, &patch); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid set payload: %v", err))
		}
		if patch.Empty() {
			return NewErrorResponse("set payload changes nothing")
		}
		return s.mutate(func() error { return s.ctrl.Set(patch) })
	case CommandEnable:
		return s.mutate(func() error { return s.ctrl.SetEnabled(true) })
	case CommandDisable:
		return s.mutate(func() error { return s.ctrl.SetEnabled(false) })
	case CommandToggle:
		return s.mutate(s.ctrl.Toggle)
	case CommandApplyPreset:
		var p ApplyPresetPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid preset payload: %v", err))
		}
		if p.Name == "" {
			return NewErrorResponse("name is required")
		}
		return s.mutate(func() error { return s.ctrl.ApplyPreset(p.Name) })
	case CommandSelectDisplay:
		var p SelectDisplayPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid display payload: %v", err))
		}
		return s.mutate(func() error { return s.ctrl.SelectDisplay(p.ID) })
	case CommandReload:
		s.logger.Info("IPC: reloading settings")
		return s.mutate(s.ctrl.Reload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// query runs fn on the UI loop and returns its data.
func (s *Server) query(fn func() (any, error)) *Response {
	var (
		data any
		err  error
	)
	if loopErr := s.do(func() { data, err = fn() }); loopErr != nil {
		return NewErrorResponse(loopErr.Error())
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(data)
}

// mutate runs fn on the UI loop and returns the resulting status.
func (s *Server) mutate(fn func() error) *Response {
	var (
		status StatusData
		err    error
	)
	if loopErr := s.do(func() {
		err = fn()
		status = s.ctrl.Status()
	}); loopErr != nil {
		return NewErrorResponse(loopErr.Error())
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(status)
}

func (s *Server) do(fn func()) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return s.loop.Do(ctx, fn)
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	return json.Unmarshal(payload, out)
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
