// Package ioserver runs the TCP accept loop and per-connection byte
// pump that feeds httpproto and hands parsed requests to a dispatcher.
package ioserver

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prasoul/imgfs/internal/dispatch"
	"github.com/prasoul/imgfs/internal/httpproto"
)

// maxHeaderSize is the initial read buffer size, sized to comfortably
// hold a request line plus headers before any body arrives.
const maxHeaderSize = 2048

// Server accepts connections on a TCP listener and dispatches requests
// against a single Dispatcher. All store operations the Dispatcher
// performs are serialized by the store's own mutex; Server only owns
// the network side.
type Server struct {
	listener net.Listener
	dispatch *dispatch.Dispatcher
	done     chan struct{}
	wg       sync.WaitGroup
}

// Listen starts a Server bound to addr (e.g. ":8000").
func Listen(addr string, d *dispatch.Dispatcher) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		dispatch: d,
		done:     make(chan struct{}),
	}
	return s, nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve runs the accept loop until Close is called. It blocks the
// calling goroutine; callers typically run it from main after installing
// a signal handler that calls Close.
func (s *Server) Serve() error {
	s.wg.Add(1)
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				logrus.WithError(err).Warn("ioserver: accept failed")
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops the accept loop and waits for in-flight connections to
// finish their current request before returning.
func (s *Server) Close() error {
	close(s.done)
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	// On shutdown, fail any pending or later Read so the handler returns
	// once the reply it is working on, if any, has been written.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-s.done:
			conn.SetReadDeadline(time.Now())
		case <-finished:
		}
	}()

	buf := make([]byte, maxHeaderSize)
	n := 0

	for {
		m, err := conn.Read(buf[n:])
		if err != nil {
			return
		}
		n += m

		needed := httpproto.ContentLength(buf[:n]) + maxHeaderSize
		if needed > len(buf) {
			grown := make([]byte, needed)
			copy(grown, buf[:n])
			buf = grown
		}

		status, msg := httpproto.Parse(buf[:n])
		switch status {
		case httpproto.NeedMore:
			if n == len(buf) {
				// Buffer exhausted: the headers outgrew maxHeaderSize or
				// the request overran its Content-Length. Close.
				return
			}
			continue
		case httpproto.Malformed:
			conn.Write(httpproto.Reply(httpproto.StatusBadRequest, "text/plain", []byte("malformed request\n")))
			return
		case httpproto.Ready:
			reply := s.dispatch.Handle(msg)
			if _, err := conn.Write(reply); err != nil {
				return
			}
			// Reset for the next request on this connection rather than
			// continuing to grow an already-satisfied buffer.
			buf = make([]byte, maxHeaderSize)
			n = 0
		}
	}
}
