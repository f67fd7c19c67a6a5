package ipc

import (
	"bufio"
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"
)

// startFakeApp listens on a unix socket and answers every connection's
// first line with the given response line.
func startFakeApp(t *testing.T, response string) string {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "picker.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", socketPath, err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				if _, err := bufio.NewReader(c).ReadBytes('\n'); err != nil {
					return
				}
				c.Write([]byte(response + "\n"))
			}(conn)
		}
	}()

	return socketPath
}

func TestQuerySelectionMonitor(t *testing.T) {
	socketPath := startFakeApp(t, `{"version":1,"result":"selection","source_type":"monitor","source_id":"mon-0"}`)
	client := NewClient(socketPath, time.Second)

	resp, err := client.QuerySelection(context.Background())
	if err != nil {
		t.Fatalf("QuerySelection failed: %v", err)
	}
	if resp.Kind != KindSelection {
		t.Fatalf("kind = %d, want %d", resp.Kind, KindSelection)
	}
	if resp.Selection.SourceType != "monitor" || resp.Selection.SourceID != "mon-0" {
		t.Fatalf("unexpected selection: %+v", resp.Selection)
	}
	if resp.Selection.Geometry != nil {
		t.Fatal("monitor selection should have no geometry")
	}
}

func TestQuerySelectionRegion(t *testing.T) {
	socketPath := startFakeApp(t, `{"version":1,"result":"selection","source_type":"region","source_id":"mon-0","geometry":{"x":10,"y":20,"width":800,"height":600}}`)
	client := NewClient(socketPath, time.Second)

	resp, err := client.QuerySelection(context.Background())
	if err != nil {
		t.Fatalf("QuerySelection failed: %v", err)
	}
	geom := resp.Selection.Geometry
	if geom == nil {
		t.Fatal("region selection must carry geometry")
	}
	if geom.X != 10 || geom.Y != 20 || geom.Width != 800 || geom.Height != 600 {
		t.Fatalf("unexpected geometry: %+v", geom)
	}
}

func TestQuerySelectionNone(t *testing.T) {
	socketPath := startFakeApp(t, `{"version":1,"result":"none"}`)
	client := NewClient(socketPath, time.Second)

	resp, err := client.QuerySelection(context.Background())
	if err != nil {
		t.Fatalf("QuerySelection failed: %v", err)
	}
	if resp.Kind != KindNoSelection {
		t.Fatalf("kind = %d, want %d", resp.Kind, KindNoSelection)
	}
}

func TestQuerySelectionError(t *testing.T) {
	socketPath := startFakeApp(t, `{"version":1,"result":"error","message":"capture engine busy"}`)
	client := NewClient(socketPath, time.Second)

	resp, err := client.QuerySelection(context.Background())
	if err != nil {
		t.Fatalf("QuerySelection failed: %v", err)
	}
	if resp.Kind != KindError {
		t.Fatalf("kind = %d, want %d", resp.Kind, KindError)
	}
	if resp.Message != "capture engine busy" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestQueryConnectionRefused(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "nobody-home.sock")
	client := NewClient(socketPath, time.Second)

	_, err := client.QuerySelection(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error %T is not a *TransportError", err)
	}
}

func TestQueryTimeout(t *testing.T) {
	// A listener that accepts but never answers.
	socketPath := filepath.Join(t.TempDir(), "silent.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	client := NewClient(socketPath, 200*time.Millisecond)
	start := time.Now()
	_, err = client.QuerySelection(context.Background())
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("query did not respect timeout, took %v", elapsed)
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error %T is not a *TransportError", err)
	}
}

func TestQueryMalformedResponse(t *testing.T) {
	socketPath := startFakeApp(t, `this is not json`)
	client := NewClient(socketPath, time.Second)

	_, err := client.QuerySelection(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("malformed frame should be a *TransportError, got %v", err)
	}
}

func TestQueryVersionMismatch(t *testing.T) {
	socketPath := startFakeApp(t, `{"version":99,"result":"none"}`)
	client := NewClient(socketPath, time.Second)

	_, err := client.QuerySelection(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("version mismatch should be a *TransportError, got %v", err)
	}
}

func TestDefaultSocketPathRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := DefaultSocketPath(); got != "/run/user/1000/lumocast/picker.sock" {
		t.Fatalf("unexpected socket path %q", got)
	}
}

func TestDefaultSocketPathFallback(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	got := DefaultSocketPath()
	if filepath.Base(got) != "lumocast-picker.sock" {
		t.Fatalf("unexpected fallback socket path %q", got)
	}
}
