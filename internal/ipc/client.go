package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/lumocast/pickerd/internal/logger"
)

// DefaultTimeout bounds one selection query round trip when the caller
// does not configure one.
const DefaultTimeout = 3 * time.Second

// TransportError wraps any failure to complete a query exchange with the
// Lumocast app: connection refused, timeout, or a malformed frame. The app
// not running is a normal condition, so callers degrade rather than crash.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ipc %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DefaultSocketPath returns the well-known socket path the Lumocast app
// listens on: $XDG_RUNTIME_DIR/lumocast/picker.sock, with a /tmp fallback
// for sessions without a runtime dir.
func DefaultSocketPath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "lumocast", "picker.sock")
	}
	return filepath.Join(os.TempDir(), "lumocast-picker.sock")
}

// Client queries the Lumocast app for the current capture selection.
// Each query is one connection, one request, one response.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the given socket path. Empty socketPath
// means the well-known default; timeout <= 0 means DefaultTimeout.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

// SocketPath returns the socket path the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// QuerySelection asks the app what the user selected. Every failure mode
// returns a *TransportError; the portal backend maps those to a cancelled
// response, so this never needs to distinguish refusal from timeout beyond
// logging.
func (c *Client) QuerySelection(ctx context.Context) (*Response, error) {
	log := logger.WithComponent("ipc")

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		log.Error().Err(err).Str("socket", c.socketPath).Msg("Failed to connect to app socket")
		return nil, &TransportError{Op: "dial", Err: err}
	}
	defer conn.Close()

	// One deadline covers the whole exchange.
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &TransportError{Op: "deadline", Err: err}
	}

	req, err := json.Marshal(requestFrame{Version: ProtocolVersion, Method: methodGetSelection})
	if err != nil {
		return nil, &TransportError{Op: "encode", Err: err}
	}
	if _, err := conn.Write(append(req, '\n')); err != nil {
		log.Error().Err(err).Msg("Failed to send selection query")
		return nil, &TransportError{Op: "write", Err: err}
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		log.Error().Err(err).Msg("Failed to read selection response")
		return nil, &TransportError{Op: "read", Err: err}
	}

	resp, err := decodeResponse(line)
	if err != nil {
		log.Error().Err(err).Msg("Malformed selection response")
		return nil, &TransportError{Op: "decode", Err: err}
	}

	log.Debug().
		Int("kind", int(resp.Kind)).
		Msg("Selection query completed")
	return resp, nil
}
