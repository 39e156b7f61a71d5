// Command deps-lsp is a Language Server Protocol server surfacing
// dependency-freshness information for Cargo, npm, PyPI, and Go module
// manifests.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	json "github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/lsp"
)

var (
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	logfileFlag = flag.String("logfile", "", "Log file path (in addition to LSP window/logMessage)")
	traceFlag   = flag.Bool("trace", false, "Enable trace logging (very verbose)")
)

func main() {
	flag.Parse()

	var level zapcore.Level
	switch {
	case *traceFlag:
		level = zapcore.DebugLevel
	case *debugFlag:
		level = zapcore.DebugLevel
	default:
		level = zapcore.InfoLevel
	}

	stderrConfig := zap.NewDevelopmentConfig()
	stderrConfig.OutputPaths = []string{"stderr"}
	stderrConfig.ErrorOutputPaths = []string{"stderr"}
	stderrConfig.Level = zap.NewAtomicLevelAt(level)

	startupLogger, err := stderrConfig.Build()
	if err != nil {
		panic(err)
	}

	startupLogger.Info("Starting deps-lsp server",
		zap.Bool("debug", *debugFlag),
		zap.Bool("trace", *traceFlag),
		zap.String("logfile", *logfileFlag))

	ctx := context.Background()

	if err := run(ctx, startupLogger, os.Stdin, os.Stdout, level, *logfileFlag); err != nil {
		if errors.Is(err, io.EOF) {
			startupLogger.Info("Client disconnected")
			return
		}
		if err.Error() == "closed" {
			startupLogger.Info("Connection closed")
			return
		}
		startupLogger.Error("Server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, startupLogger *zap.Logger, in io.Reader, out io.Writer, level zapcore.Level, logfile string) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	client := protocol.ClientDispatcher(conn, startupLogger)

	var stderrCore zapcore.Core
	if logfile != "" {
		file, err := os.OpenFile(logfile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			startupLogger.Warn("Failed to open logfile, falling back to stderr", zap.Error(err))
			stderrCore = createStderrCore(level)
		} else {
			stderrCore = zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(file),
				level,
			)
		}
	} else {
		stderrCore = createStderrCore(level)
	}

	logger := lsp.NewLSPLogger(client, stderrCore, level)
	logger.Info("LSP connection established, logging to window/logMessage")

	server := lsp.NewServer(client, logger)

	conn.Go(ctx, withInlayHints(server, protocol.ServerHandler(server, nil)))

	<-conn.Done()

	return conn.Err()
}

// withInlayHints wraps the generated server handler with one extra route:
// textDocument/inlayHint, which is newer than go.lsp.dev/protocol v0.12.0's
// Server interface and so isn't dispatched by protocol.ServerHandler.
func withInlayHints(server *lsp.Server, next jsonrpc2.Handler) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() != "textDocument/inlayHint" {
			return next(ctx, reply, req)
		}

		var params any
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		result, err := server.InlayHintRequest(ctx, params)
		return reply(ctx, result, err)
	}
}

func createStderrCore(level zapcore.Level) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
