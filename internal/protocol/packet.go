package protocol

import "fmt"

// Binary TCP protocol spoken between rowd servers and clients. Every exchange
// on the wire is a single packet type byte, optionally followed by one
// length-prefixed payload frame. Which payload (if any) follows is fixed per
// packet type, see HasPayload.
//
// The protocol version is carried in the server greeting. It is informational
// only, there is no negotiation.

const ProtocolVersion uint8 = 1

// PacketType identifies the kind of the next payload on the wire.
type PacketType uint8

const (
	PacketGreet PacketType = iota + 1
	PacketLogin
	PacketCommand
	PacketOk
	PacketError
	PacketResponse
	PacketAccGranted
	PacketAccDenied
)

func (t PacketType) String() string {
	switch t {
	case PacketGreet:
		return "Greet"
	case PacketLogin:
		return "Login"
	case PacketCommand:
		return "Command"
	case PacketOk:
		return "Ok"
	case PacketError:
		return "Error"
	case PacketResponse:
		return "Response"
	case PacketAccGranted:
		return "AccGranted"
	case PacketAccDenied:
		return "AccDenied"
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// Valid reports whether t is a member of the closed packet type set.
func (t PacketType) Valid() bool {
	return t >= PacketGreet && t <= PacketAccDenied
}

// HasPayload is the total mapping from packet type to whether a payload frame
// follows the type byte. Ok, AccGranted and AccDenied are bare acks.
func (t PacketType) HasPayload() bool {
	switch t {
	case PacketGreet, PacketLogin, PacketCommand, PacketError, PacketResponse:
		return true
	}
	return false
}

// Greeting is sent by the server immediately after accepting a connection,
// before the client sends anything.
type Greeting struct {
	ProtocolVersion uint8
	Message         string
}

func (g *Greeting) marshal(e *encoder) {
	e.writeUint8(g.ProtocolVersion)
	e.writeString(g.Message)
}

func (g *Greeting) unmarshal(d *decoder) error {
	var err error
	if g.ProtocolVersion, err = d.readUint8(); err != nil {
		return err
	}
	g.Message, err = d.readString()
	return err
}

// Login carries the credentials for the single authorization attempt a
// connection gets.
type Login struct {
	Username string
	Password string
}

func (l *Login) marshal(e *encoder) {
	e.writeString(l.Username)
	e.writeString(l.Password)
}

func (l *Login) unmarshal(d *decoder) error {
	var err error
	if l.Username, err = d.readString(); err != nil {
		return err
	}
	l.Password, err = d.readString()
	return err
}

// CommandKind discriminates the Command payload variants.
type CommandKind uint8

const (
	CmdPing CommandKind = iota + 1
	CmdQuit
	CmdQuery
)

func (k CommandKind) String() string {
	switch k {
	case CmdPing:
		return "Ping"
	case CmdQuit:
		return "Quit"
	case CmdQuery:
		return "Query"
	}
	return fmt.Sprintf("Unknown(%d)", uint8(k))
}

// Command follows every PacketCommand type byte. Query text is only present
// for CmdQuery.
type Command struct {
	Kind  CommandKind
	Query string
}

func (c *Command) marshal(e *encoder) {
	e.writeUint8(uint8(c.Kind))
	if c.Kind == CmdQuery {
		e.writeString(c.Query)
	}
}

func (c *Command) unmarshal(d *decoder) error {
	kind, err := d.readUint8()
	if err != nil {
		return err
	}
	c.Kind = CommandKind(kind)
	switch c.Kind {
	case CmdPing, CmdQuit:
		c.Query = ""
		return nil
	case CmdQuery:
		c.Query, err = d.readString()
		return err
	}
	return fmt.Errorf("%w: command kind %d", ErrBadPayload, kind)
}

// Error message classes carried in ErrorMessage.Code. Zero means unspecified.
const (
	ErrCodeUnspecified uint16 = iota
	ErrCodeParse
	ErrCodeExecute
	ErrCodeAuth
	ErrCodeProtocol
)

// ErrorMessage follows a PacketError type byte. It may arrive at any point in
// the protocol, superseding whatever payload the peer was expecting.
type ErrorMessage struct {
	Code    uint16
	Message string
}

func (m *ErrorMessage) marshal(e *encoder) {
	e.writeUint16(m.Code)
	e.writeString(m.Message)
}

func (m *ErrorMessage) unmarshal(d *decoder) error {
	var err error
	if m.Code, err = d.readUint16(); err != nil {
		return err
	}
	m.Message, err = d.readString()
	return err
}
