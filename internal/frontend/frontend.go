// Package frontend provides the minimal concrete transport described in
// SPEC_FULL.md §11.3: a net.Listener accepting TCP connections, each framed
// as a 32-bit big-endian length followed by encoding/gob-encoded bytes
// decoded through internal/wire's codec stand-in, feeding a fresh
// dispatcher per connection. Mirrors the dispatch-by-payload-type shape of
// internal/egg/server.go's Session loop without its gRPC/PTY machinery.
package frontend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/ehrlich-b/logsrvd/internal/config"
	"github.com/ehrlich-b/logsrvd/internal/dispatch"
	"github.com/ehrlich-b/logsrvd/internal/eventlog"
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/sinkfactory"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Server accepts connections on a single listener, one dispatcher per
// connection.
type Server struct {
	cfg    config.Config
	events eventlog.Writer
	ln     net.Listener
}

// Listen binds addr and returns a Server ready to Serve.
func Listen(cfg config.Config, events eventlog.Writer, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("frontend: listen %s: %w", addr, err)
	}
	return &Server{cfg: cfg, events: events, ln: ln}, nil
}

// Addr reports the listener's bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve accepts connections until the listener is closed, handling each on
// its own goroutine. It returns nil when the listener is closed deliberately
// (net.ErrClosed), any other error otherwise.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("frontend: accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}

	sk, err := sinkfactory.New(s.cfg, s.events, host)
	if err != nil {
		logger.Error("frontend: unable to construct sink", "error", err)
		return
	}
	d := dispatch.New(sk)
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("frontend: sink close failed", "error", err)
		}
	}()

	for {
		raw, err := readFrame(conn, s.cfg.MessageSizeMax)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("frontend: connection read failed", "remote", remote, "error", err)
			}
			return
		}

		payload, err := wire.Decode(raw)
		if err != nil {
			logger.Warn("frontend: malformed message", "remote", remote, "error", err)
			return
		}

		if err := d.Handle(wire.ClientMessage{Payload: payload, Raw: raw}); err != nil {
			logger.Warn("frontend: dispatch failed", "remote", remote, "error", err)
			writeErrorReply(conn, err.Error())
			return
		}

		if d.Ctx.ReplyPending {
			if err := writeLogIDReply(conn, d.Ctx.LogID); err != nil {
				logger.Warn("frontend: log-id reply failed", "remote", remote, "error", err)
				return
			}
			d.Ctx.ReplyPending = false
		}
	}
}

// readFrame reads one [uint32 big-endian length][gob bytes] frame, the same
// framing the journal sink persists to disk.
func readFrame(r io.Reader, maxSize int) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint32(lenBuf[:]))
	if maxSize > 0 && n > maxSize {
		return nil, fmt.Errorf("frontend: frame of %d bytes exceeds message-size-max %d", n, maxSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// logIDReply and errorReply are the two reply shapes the front end ever
// sends back: a log-id (after accept, when expect_iobufs) or a short error
// string (when dispatch fails outright).
type logIDReply struct {
	LogID string
}

type errorReply struct {
	Error string
}

func writeLogIDReply(w io.Writer, logID string) error {
	raw, err := encodeReply(logIDReply{LogID: logID})
	if err != nil {
		return err
	}
	return writeFrame(w, raw)
}

func writeErrorReply(w io.Writer, msg string) {
	raw, err := encodeReply(errorReply{Error: msg})
	if err != nil {
		return
	}
	_ = writeFrame(w, raw)
}
