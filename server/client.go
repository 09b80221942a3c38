package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/volatixdb/volatix/protocol"
)

// Client is one accepted connection's cooperative read-dispatch-write
// loop. It owns no state the engine doesn't already guard, so closing one
// Client never affects any other connection.
type Client struct {
	conn   net.Conn
	reader *protocol.Reader
	writer *protocol.Writer
	server *Server

	handshakeDone bool

	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(conn net.Conn, s *Server, ctx context.Context, cancel context.CancelFunc) *Client {
	return &Client{
		conn:   conn,
		reader: protocol.NewReader(conn),
		writer: protocol.NewWriter(conn),
		server: s,
		ctx:    ctx,
		cancel: cancel,
	}
}

// close tears down the connection and removes it from the server's client
// set; safe to call more than once.
func (c *Client) close() {
	c.cancel()
	c.conn.Close()
	c.server.clients.Delete(c.conn)
}

// run is the connection's state machine: Connected -> HandshakeAwait ->
// Ready -> Closing. It returns once the connection is no longer usable —
// on EOF, QUIT, a connection-fatal codec error, or server shutdown.
func (c *Client) run() {
	defer c.close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(idleTimeout))

		v, err := c.reader.ReadNext()
		if err != nil {
			c.handleReadError(err)
			return
		}

		cmd, err := protocol.ParseCommand(v)
		if err != nil {
			// A frame that parsed but isn't a valid command array is a
			// ProtocolError: request-fatal, not connection-fatal.
			c.writeRawError("ERR " + err.Error())
			continue
		}

		c.server.commandCount.Add(1)

		if !c.handshakeDone && cmd.Name != "HELLO" {
			c.writeRawError("ERR handshake required")
			continue
		}

		if c.dispatch(cmd) {
			return
		}
	}
}

func (c *Client) handleReadError(err error) {
	if errors.Is(err, io.EOF) {
		return
	}
	if c.ctx.Err() != nil {
		return
	}

	var tooLarge *protocol.FrameTooLargeError
	if errors.As(err, &tooLarge) {
		c.writeRawError("ERR frame too large")
		return
	}

	var parseErr *protocol.ParseError
	if errors.As(err, &parseErr) {
		// Connection-fatal: the stream can no longer be trusted to be
		// frame-aligned, so there is nothing useful left to reply to.
		c.server.logger.Debug("parse error, closing connection", "error", err)
		return
	}

	// Any other error (reset connection, read timeout, ...) just ends the
	// loop; there is no peer left to write an error frame to.
}
