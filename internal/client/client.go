package client

import (
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/rowdb/rowd/internal/dataset"
	"github.com/rowdb/rowd/internal/protocol"
)

// Option customizes a connection before the handshake runs.
type Option func(*options)

type options struct {
	dialTimeout time.Duration
	ioTimeout   time.Duration
}

// WithDialTimeout bounds how long the initial TCP dial may take.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithIOTimeout sets a deadline for every request/response exchange,
// including the handshake. Zero keeps the reference behavior of blocking
// indefinitely on a silent peer.
func WithIOTimeout(d time.Duration) Option {
	return func(o *options) {
		o.ioTimeout = d
	}
}

// Conn is an authenticated connection to a rowd server. It is created only by
// a fully successful handshake, there is no partially connected state. One
// request is in flight at a time, operations serialize on an internal lock.
type Conn struct {
	mu        sync.Mutex
	tcp       net.Conn
	host      string
	port      uint16
	greeting  protocol.Greeting
	login     protocol.Login
	ioTimeout time.Duration
}

// Connect dials host:port and runs the handshake: expect Greet + Greeting,
// send Login, then expect AccGranted. AccDenied fails with KindAuth, a server
// Error packet with KindServer, any other packet type with
// KindUnexpectedPacket. Every failure path closes the socket.
func Connect(host string, port uint16, username, password string, opts ...Option) (*Conn, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil, newError(KindAddr, err)
	}

	tcp, err := net.DialTimeout("tcp", netip.AddrPortFrom(addr, port).String(), o.dialTimeout)
	if err != nil {
		return nil, newError(KindIO, err)
	}

	c := &Conn{
		tcp:       tcp,
		host:      host,
		port:      port,
		login:     protocol.Login{Username: username, Password: password},
		ioTimeout: o.ioTimeout,
	}

	if err := c.handshake(); err != nil {
		tcp.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) handshake() error {
	c.armDeadline()

	if err := c.receive(protocol.PacketGreet); err != nil {
		return err
	}
	if err := protocol.ReadPayload(c.tcp, &c.greeting, protocol.MaxControlFrame); err != nil {
		return recvError(err)
	}

	if err := protocol.WriteType(c.tcp, protocol.PacketLogin); err != nil {
		return sendError(err)
	}
	if err := protocol.WritePayload(c.tcp, &c.login, protocol.MaxControlFrame); err != nil {
		return sendError(err)
	}

	status, err := protocol.ReadType(c.tcp)
	if err != nil {
		return recvError(err)
	}
	switch status {
	case protocol.PacketAccGranted:
		return nil
	case protocol.PacketAccDenied:
		return newError(KindAuth, nil)
	case protocol.PacketError:
		var msg protocol.ErrorMessage
		if err := protocol.ReadPayload(c.tcp, &msg, protocol.NoSizeLimit); err != nil {
			return recvError(err)
		}
		return serverError(msg)
	}
	if status.HasPayload() {
		if err := protocol.DiscardPayload(c.tcp); err != nil {
			return recvError(err)
		}
	}
	return newError(KindUnexpectedPacket, fmt.Errorf("got %s during handshake", status))
}

// Ping sends a ping command and waits for Ok.
func (c *Conn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armDeadline()

	if err := c.sendCommand(protocol.Command{Kind: protocol.CmdPing}); err != nil {
		return err
	}
	return c.receive(protocol.PacketOk)
}

// Quit sends a quit command and tears the socket down regardless of whether
// the final Ok round-trip succeeds, the server may close first.
func (c *Conn) Quit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armDeadline()

	err := c.sendCommand(protocol.Command{Kind: protocol.CmdQuit})
	if err == nil {
		err = c.receive(protocol.PacketOk)
	}
	if closeErr := c.tcp.Close(); closeErr != nil && err == nil {
		err = newError(KindIO, closeErr)
	}
	return err
}

// Close tears down the socket without the quit exchange.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tcp.Close()
}

// Execute runs a query and returns its post-processed result. The command
// frame including the query text must fit the control frame bound, which
// deliberately caps statement length; the response is unbounded.
func (c *Conn) Execute(query string) (*dataset.DataSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armDeadline()

	if err := c.sendCommand(protocol.Command{Kind: protocol.CmdQuery, Query: query}); err != nil {
		return nil, err
	}
	if err := c.receive(protocol.PacketResponse); err != nil {
		return nil, err
	}
	var rows protocol.ResultSet
	if err := protocol.ReadPayload(c.tcp, &rows, protocol.NoSizeLimit); err != nil {
		return nil, recvError(err)
	}
	return dataset.FromResultSet(rows), nil
}

// Version returns the protocol version byte from the server greeting. It is
// informational, mismatches are not rejected anywhere.
func (c *Conn) Version() uint8 {
	return c.greeting.ProtocolVersion
}

// Message returns the server greeting message.
func (c *Conn) Message() string {
	return c.greeting.Message
}

// Host returns the host this connection was dialed against.
func (c *Conn) Host() string {
	return c.host
}

// Port returns the port this connection was dialed against.
func (c *Conn) Port() uint16 {
	return c.port
}

// Username returns the username the connection authenticated with.
func (c *Conn) Username() string {
	return c.login.Username
}

func (c *Conn) sendCommand(cmd protocol.Command) error {
	if err := protocol.WriteType(c.tcp, protocol.PacketCommand); err != nil {
		return sendError(err)
	}
	if err := protocol.WritePayload(c.tcp, &cmd, protocol.MaxControlFrame); err != nil {
		return sendError(err)
	}
	return nil
}

// receive reads one packet type and matches it against expected. A server
// Error packet always wins: its message is decoded and surfaced as
// KindServer no matter what was expected. Any other mismatch drains the
// received packet's payload so the stream stays aligned for the next
// exchange, then fails as KindUnexpectedPacket. On a match the caller decodes
// the expected payload itself, if any.
func (c *Conn) receive(expected protocol.PacketType) error {
	received, err := protocol.ReadType(c.tcp)
	if err != nil {
		return recvError(err)
	}

	if received == protocol.PacketError {
		var msg protocol.ErrorMessage
		if err := protocol.ReadPayload(c.tcp, &msg, protocol.NoSizeLimit); err != nil {
			return recvError(err)
		}
		return serverError(msg)
	}

	if received != expected {
		if received.HasPayload() {
			if err := protocol.DiscardPayload(c.tcp); err != nil {
				return recvError(err)
			}
		}
		return newError(KindUnexpectedPacket, fmt.Errorf("expected %s, got %s", expected, received))
	}
	return nil
}

func (c *Conn) armDeadline() {
	if c.ioTimeout > 0 {
		c.tcp.SetDeadline(time.Now().Add(c.ioTimeout))
	}
}
