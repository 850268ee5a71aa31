package servers

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// tcpServer serves the newline-delimited scheduling protocol: one goroutine
// per accepted connection, each running a blocking read-dispatch-respond
// loop until the client sends STOP or disconnects. The accept loop never
// blocks on a single connection's lifetime.
type tcpServer struct {
	ctx      context.Context //nolint:containedctx
	name     string
	address  string
	executor Executor

	mu       sync.Mutex
	listener net.Listener
	closing  bool
	handlers sync.WaitGroup
}

func BuildTcpServer(address string, executor Executor) (string, Server) {
	return "scheduler-server", NewTcpServer(address, executor)
}

func NewTcpServer(address string, executor Executor) lifecycle.Server {
	return &tcpServer{
		name:     "scheduler-server",
		address:  address,
		executor: executor,
	}
}

func (server *tcpServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Str("address", server.address).Msg("starting up")

	server.ctx = ctx

	listener, err := net.Listen("tcp", server.address)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "startup").Str("component", server.name).Err(err).Msg("failed to listen")
		return ErrServerFailedToStart(server.name, err)
	}

	server.mu.Lock()
	server.listener = listener
	closing := server.closing
	server.mu.Unlock()

	if closing {
		_ = listener.Close()
		return nil
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if server.isClosing() || errors.Is(err, net.ErrClosed) {
				return nil
			}

			log.Ctx(ctx).Error().Str("component", server.name).Err(err).Msg("accept failed")

			return ErrServerFailedToStart(server.name, err)
		}

		server.handlers.Add(1)

		go server.handle(ctx, conn)
	}
}

// handle is the per-connection loop: read one line, dispatch it, write the
// response lines, repeat. A STOP line answers TERMINATE and closes this
// connection only; end-of-stream or a write error closes it silently.
// In-flight commands always run to completion.
func (server *tcpServer) handle(ctx context.Context, conn net.Conn) {
	defer server.handlers.Done()
	defer conn.Close()

	logger := log.Ctx(ctx).With().Str("component", server.name).Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Info().Msg("client connected")
	defer logger.Info().Msg("client disconnected")

	ctx = logger.WithContext(ctx)

	// ReadString puts no cap on the line length, so an oversized request
	// line gets a response like any other instead of dropping the client.
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		raw, err := reader.ReadString('\n')

		if raw != "" || err == nil {
			line := strings.TrimRight(raw, "\r\n")

			if strings.EqualFold(strings.TrimSpace(line), actionStop) {
				server.writeLines(&logger, writer, []string{responseTerminate})
				return
			}

			responses := server.executor.Execute(ctx, line)
			if !server.writeLines(&logger, writer, responses) {
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn().Err(err).Msg("connection read failed")
			}

			return
		}
	}
}

func (server *tcpServer) writeLines(logger *zerolog.Logger, writer *bufio.Writer, lines []string) bool {
	for _, line := range lines {
		_, _ = writer.WriteString(line)
		_ = writer.WriteByte('\n')
	}

	if err := writer.Flush(); err != nil {
		logger.Warn().Err(err).Msg("connection write failed")
		return false
	}

	return true
}

// Stop closes the listener, waits for open connections to drain (bounded by
// ctx) and performs the final snapshot save.
func (server *tcpServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	server.mu.Lock()
	server.closing = true
	listener := server.listener
	server.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}

	drained := make(chan struct{})
	go func() {
		server.handlers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		log.Ctx(ctx).Warn().Str("component", server.name).Msg("open connections did not drain in time")
	case <-time.After(drainTimeout):
		log.Ctx(ctx).Warn().Str("component", server.name).Msg("open connections did not drain in time")
	}

	if err := server.executor.Flush(ctx); err != nil {
		log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", server.name).Err(err).Msg("final snapshot save failed")
		return ErrServerFailedToStop(server.name, err)
	}

	return nil
}

func (server *tcpServer) isClosing() bool {
	server.mu.Lock()
	defer server.mu.Unlock()

	return server.closing
}

// addr reports the bound listener address, once Run has bound it.
func (server *tcpServer) addr() net.Addr {
	server.mu.Lock()
	defer server.mu.Unlock()

	if server.listener == nil {
		return nil
	}

	return server.listener.Addr()
}

const (
	actionStop        = "STOP"
	responseTerminate = "TERMINATE"
	drainTimeout      = 10 * time.Second
)
