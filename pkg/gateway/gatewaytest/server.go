// Package gatewaytest provides a loopback gateway for tests.
package gatewaytest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/urmzd/yeehome/pkg/gateway"
)

// Handler answers one request. Each returned chunk is written with a
// separate Write call; returning nil sends nothing.
type Handler func(req gateway.Response) [][]byte

// Server is a fake gateway control channel listening on loopback.
type Server struct {
	Addr gateway.Address

	ln      net.Listener
	handler Handler

	mu       sync.Mutex
	requests []gateway.Response
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer starts a server on 127.0.0.1 with a random port.
func NewServer(h Handler) *Server {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(fmt.Sprintf("gatewaytest: failed to listen: %v", err))
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	s := &Server{
		Addr:    gateway.Address{Host: "127.0.0.1", Port: port},
		ln:      ln,
		handler: h,
		conns:   make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.serve()
	return s
}

// Requests returns the requests received so far.
func (s *Server) Requests() []gateway.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gateway.Response, len(s.requests))
	copy(out, s.requests)
	return out
}

// Close stops the listener and drops every open connection.
func (s *Server) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(c)
	}
}

func (s *Server) handle(c net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = c.Close()
	}()

	r := bufio.NewReader(c)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		var req gateway.Response
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			continue
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		if s.handler == nil {
			continue
		}
		for _, chunk := range s.handler(req) {
			if _, err := c.Write(chunk); err != nil {
				return
			}
		}
	}
}

// Frame encodes values back to back and terminates them with CRLF, the way
// the gateway batches several objects into one reply.
func Frame(values ...any) []byte {
	var out []byte
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("gatewaytest: marshal frame: %v", err))
		}
		out = append(out, b...)
	}
	return append(out, '\r', '\n')
}

// Echo returns an ack carrying the request id, result "ok".
func Echo(req gateway.Response) [][]byte {
	id, _ := req.ID()
	return [][]byte{Frame(map[string]any{"id": id, "result": []string{"ok"}})}
}
