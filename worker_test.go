package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type MockAddr struct {
	str string
}

func (m MockAddr) Network() string { return "" }
func (m MockAddr) String() string  { return m.str }

type MockConn struct {
	*bytes.Buffer
	addr MockAddr
}

func (m *MockConn) Close() error {
	return nil
}

func (m *MockConn) LocalAddr() net.Addr {
	return nil
}

func (m *MockConn) RemoteAddr() net.Addr {
	return m.addr
}

func (m *MockConn) SetDeadline(t time.Time) error {
	return nil
}

func (m *MockConn) SetReadDeadline(t time.Time) error {
	return nil
}

func (m *MockConn) SetWriteDeadline(t time.Time) error {
	return nil
}

// runWorker feeds raw into a worker over a mock connection and returns
// everything the worker wrote back.
func runWorker(t *testing.T, root, raw string) string {
	t.Helper()
	conn := &MockConn{
		new(bytes.Buffer),
		MockAddr{"(client)"},
	}
	conn.WriteString(raw)
	NewWorker(conn, root, zerolog.Nop()).Run()
	return conn.String()
}

func staticRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "test.txt"), []byte("Test file content"), 0o644)
	if err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return root
}

func TestWorkerGreeting(t *testing.T) {
	got := runWorker(t, t.TempDir(), "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")
	ss := []string{
		"HTTP/1.1 200 OK\r\n",
		"Content-Type: text/plain\r\n",
		"Content-Length: 13\r\n",
		"Connection: close\r\n",
		"\r\n",
		"Hello, World!",
	}
	ExpectEqual(t, strings.Join(ss, ""), got)
}

func TestWorkerStaticFile(t *testing.T) {
	got := runWorker(t, staticRoot(t), "GET /static/test.txt HTTP/1.1\r\n\r\n")
	ss := []string{
		"HTTP/1.1 200 OK\r\n",
		"Content-Type: text/plain\r\n",
		"Content-Length: 17\r\n",
		"Connection: close\r\n",
		"\r\n",
		"Test file content",
	}
	ExpectEqual(t, strings.Join(ss, ""), got)
}

func TestWorkerMethodNotAllowed(t *testing.T) {
	got := runWorker(t, t.TempDir(), "POST / HTTP/1.1\r\n\r\n")
	expect := "HTTP/1.1 405 Method Not Allowed\r\nContent-Type: text/plain\r\nContent-Length: 22\r\nConnection: close\r\n\r\n405 Method Not Allowed"
	ExpectEqual(t, expect, got)
}

func TestWorkerMethodCheckedBeforeRouting(t *testing.T) {
	// POST to an existing file still answers 405, not 200.
	got := runWorker(t, staticRoot(t), "POST /static/test.txt HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 405 ") {
		t.Errorf("got %q, want 405", got)
	}
}

func TestWorkerUnmatchedPath(t *testing.T) {
	got := runWorker(t, t.TempDir(), "GET /nope HTTP/1.1\r\n\r\n")
	expect := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 13\r\nConnection: close\r\n\r\n404 Not Found"
	ExpectEqual(t, expect, got)
}

func TestWorkerMissingFile(t *testing.T) {
	got := runWorker(t, t.TempDir(), "GET /static/absent.txt HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 404 ") {
		t.Errorf("got %q, want 404", got)
	}
}

func TestWorkerTraversalLooksLikeMiss(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "public")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("top secret"), 0o644)
	if err != nil {
		t.Fatalf("write secret: %v", err)
	}

	escape := runWorker(t, root, "GET /static/../secret.txt HTTP/1.1\r\n\r\n")
	miss := runWorker(t, root, "GET /static/absent.txt HTTP/1.1\r\n\r\n")
	ExpectEqual(t, miss, escape)
	if strings.Contains(escape, "top secret") {
		t.Errorf("escape leaked file contents: %q", escape)
	}
}

func TestWorkerEmptyStaticPath(t *testing.T) {
	got := runWorker(t, t.TempDir(), "GET /static/ HTTP/1.1\r\n\r\n")
	expect := "HTTP/1.1 400 Bad Request\r\nContent-Type: text/plain\r\nContent-Length: 15\r\nConnection: close\r\n\r\n400 Bad Request"
	ExpectEqual(t, expect, got)
}

func TestWorkerMalformedRequest(t *testing.T) {
	got := runWorker(t, t.TempDir(), "GET /\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 400 ") {
		t.Errorf("got %q, want 400", got)
	}
}

func TestWorkerLowercaseMethod(t *testing.T) {
	got := runWorker(t, t.TempDir(), "get / HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 200 ") {
		t.Errorf("got %q, want 200", got)
	}
	if !strings.HasSuffix(got, "Hello, World!") {
		t.Errorf("got %q, want greeting body", got)
	}
}

func TestWorkerUppercaseStaticPrefix(t *testing.T) {
	got := runWorker(t, staticRoot(t), "GET /STATIC/test.txt HTTP/1.1\r\n\r\n")
	if !strings.HasSuffix(got, "Test file content") {
		t.Errorf("got %q, want file body", got)
	}
}

func TestWorkerDirectoryIsMiss(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got := runWorker(t, root, "GET /static/sub HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 404 ") {
		t.Errorf("got %q, want 404", got)
	}
}

func TestWorkerEOFBeforeRequest(t *testing.T) {
	// Connection closed before a request line arrives.
	got := runWorker(t, t.TempDir(), "")
	expect := "HTTP/1.1 500 Internal Server Error\r\nContent-Type: text/plain\r\nContent-Length: 25\r\nConnection: close\r\n\r\n500 Internal Server Error"
	ExpectEqual(t, expect, got)
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	defer func(saved []route) { routes = saved }(routes)
	routes = append([]route{{
		match: func(path string) bool { return path == "/boom" },
		serve: func(w *Worker) *Response { panic("boom") },
	}}, routes...)

	got := runWorker(t, t.TempDir(), "GET /boom HTTP/1.1\r\n\r\n")
	expect := "HTTP/1.1 500 Internal Server Error\r\nContent-Type: text/plain\r\nContent-Length: 25\r\nConnection: close\r\n\r\n500 Internal Server Error"
	ExpectEqual(t, expect, got)

	got = runWorker(t, t.TempDir(), "GET / HTTP/1.1\r\n\r\n")
	if !strings.HasSuffix(got, greeting) {
		t.Errorf("got %q, want greeting after recovery", got)
	}
}
