package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"

	"github.com/Faultbox/posegraph/internal/command"
	"github.com/Faultbox/posegraph/internal/logger"
)

// MaxMessageSize bounds one HTTP body or WebSocket frame.
const MaxMessageSize = 1 << 20

// Options configures a Server.
type Options struct {
	// Addr is the host:port to listen on.
	Addr string
	// ShutdownTimeout bounds graceful shutdown once Run's context is done.
	ShutdownTimeout time.Duration
	// AccessLog enables per-request logging at debug level.
	AccessLog bool
}

// Server accepts update messages on POST /jsonrpc and on the /ws WebSocket
// endpoint and pushes the decoded commands into a queue.
type Server struct {
	opts     Options
	queue    *command.Queue
	upgrader websocket.Upgrader
	handler  http.Handler
}

// NewServer creates a server feeding q.
func NewServer(opts Options, q *command.Queue) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		opts:  opts,
		queue: q,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/jsonrpc", s.handleRPC).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	var h http.Handler = r
	if opts.AccessLog {
		h = handlers.LoggingHandler(&zapio.Writer{Log: logger.Log, Level: zap.DebugLevel}, h)
	}
	s.handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StdLog()),
		handlers.PrintRecoveryStack(true),
	)(h)
	return s
}

// Handler returns the routed and recovery-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully. Open WebSocket connections are closed on shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StdLog(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("rpc listener started", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "rpc server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "rpc shutdown")
	}
	<-errc
	logger.Info("rpc listener stopped")
	return nil
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxMessageSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := s.dispatch(r.Context(), body)
	status := http.StatusOK
	if resp.Error != nil {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("rpc write failed", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		resp := s.dispatch(ctx, msg)
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

// dispatch decodes one message and queues its commands.
func (s *Server) dispatch(ctx context.Context, msg []byte) response {
	id, cmds, err := decode(msg)
	if cmds == nil && err != nil && !errors.Is(err, ErrInvalidElement) {
		logger.Warn("rejected rpc message", zap.Error(err))
		return errorResponse(id, err)
	}
	if err != nil {
		logger.Warn("skipped rpc elements", zap.Error(err))
	}

	queued := 0
	for _, cmd := range cmds {
		if perr := s.queue.Push(ctx, cmd); perr != nil {
			logger.Warn("command queue push aborted", zap.Error(perr), zap.Stringer("command", cmd))
			break
		}
		queued++
	}
	resp := resultResponse(id, queued, err)
	logger.Debug("rpc message handled", zap.Stringer("response", resp))
	return resp
}
