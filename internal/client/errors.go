package client

import (
	"errors"

	"github.com/rowdb/rowd/internal/protocol"
)

// ErrorKind partitions every failure a connection can produce. Callers switch
// on the kind, never on message text.
type ErrorKind uint8

const (
	// KindAddr means the host address could not be parsed.
	KindAddr ErrorKind = iota + 1
	// KindIO is a transport-level failure, fatal to the session.
	KindIO
	// KindEncode means a packet could not be encoded or exceeded its size
	// bound on the way out.
	KindEncode
	// KindDecode means received bytes were malformed, truncated or exceeded
	// the expected size bound.
	KindDecode
	// KindUnexpectedPacket means the peer sent a legal packet type out of
	// sequence. The mismatched payload has already been drained.
	KindUnexpectedPacket
	// KindAuth means the server denied the login.
	KindAuth
	// KindServer carries an application error the server reported explicitly.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindAddr:
		return "wrong address format"
	case KindIO:
		return "IO error occurred"
	case KindEncode:
		return "could not encode/send packet"
	case KindDecode:
		return "could not decode/receive packet"
	case KindUnexpectedPacket:
		return "received unexpected packet"
	case KindAuth:
		return "could not authenticate user"
	case KindServer:
		return "server reported error"
	}
	return "unknown error"
}

// Error is the unified error type surfaced by every connection operation.
type Error struct {
	Kind ErrorKind
	// Server holds the message reported by the server, set only for
	// KindServer.
	Server protocol.ErrorMessage

	cause error
}

func (e *Error) Error() string {
	if e.Kind == KindServer {
		return e.Server.Message
	}
	if e.cause != nil {
		return e.Kind.String() + ": " + e.cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind extracts the ErrorKind from err, or zero when err did not come from
// this package.
func Kind(err error) ErrorKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func serverError(msg protocol.ErrorMessage) *Error {
	return &Error{Kind: KindServer, Server: msg}
}

// sendError classifies failures on the write side: exceeding the size bound
// is an encoding problem, anything else is transport.
func sendError(err error) *Error {
	if errors.Is(err, protocol.ErrFrameTooLarge) {
		return newError(KindEncode, err)
	}
	return newError(KindIO, err)
}

// recvError classifies failures on the read side: codec sentinels are decode
// problems, anything else is transport.
func recvError(err error) *Error {
	switch {
	case errors.Is(err, protocol.ErrFrameTooLarge),
		errors.Is(err, protocol.ErrTruncated),
		errors.Is(err, protocol.ErrBadPayload),
		errors.Is(err, protocol.ErrUnknownPacketType):
		return newError(KindDecode, err)
	}
	return newError(KindIO, err)
}
