package ioserver

import (
	"bufio"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prasoul/imgfs/internal/dispatch"
	"github.com/prasoul/imgfs/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.imgfs")
	opts := store.DefaultCreateOptions()
	opts.MaxFiles = 4
	if err := store.Create(path, opts); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s, err := store.Open(path, store.ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	srv, err := Listen("127.0.0.1:0", dispatch.New(s))
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestServeListRequest(t *testing.T) {
	srv := newTestServer(t)

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "GET /imgfs/list HTTP/1.1\r\nHost: x\r\n\r\n")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("reading response status line: %v", err)
	}
	if !strings.Contains(line, "200 OK") {
		t.Errorf("status line = %q, want 200 OK", line)
	}
}

func TestServeTwoRequestsOneConnection(t *testing.T) {
	srv := newTestServer(t)

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)

	for i := 0; i < 2; i++ {
		fmt.Fprintf(conn, "GET /imgfs/list HTTP/1.1\r\nHost: x\r\n\r\n")
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("request %d: reading response: %v", i, err)
		}
		if !strings.Contains(line, "200 OK") {
			t.Fatalf("request %d status line = %q, want 200 OK", i, line)
		}
		// Drain the rest of the headers + body for this response before
		// sending the next request on the same connection.
		for {
			l, err := r.ReadString('\n')
			if err != nil {
				t.Fatalf("request %d: draining headers: %v", i, err)
			}
			if l == "\r\n" {
				break
			}
		}
		body := make([]byte, len(`{"Images":[]}`))
		if _, err := r.Read(body); err != nil {
			t.Fatalf("request %d: reading body: %v", i, err)
		}
	}
}
