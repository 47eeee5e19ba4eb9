package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rowdb/rowd/internal/engine"
	"github.com/rowdb/rowd/internal/protocol"
)

// handle runs the full per-connection state machine: greet, await login,
// authorize, then serve commands until quit or disconnect. Any failure
// terminates this handler only.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With(
		zap.String("conn", uuid.NewString()),
		zap.String("remote", conn.RemoteAddr().String()),
	)
	logger.Debug("new connection")
	defer logger.Debug("connection closed")

	if err := protocol.WriteType(conn, protocol.PacketGreet); err != nil {
		logger.Debug("send greeting", zap.Error(err))
		return
	}
	greeting := protocol.Greeting{
		ProtocolVersion: protocol.ProtocolVersion,
		Message:         s.cfg.Greeting,
	}
	if err := protocol.WritePayload(conn, &greeting, protocol.MaxControlFrame); err != nil {
		logger.Debug("send greeting", zap.Error(err))
		return
	}

	login, ok := s.awaitLogin(conn, logger)
	if !ok {
		return
	}

	if !s.authenticator.Authenticate(login.Username, login.Password) {
		logger.Info("login denied", zap.String("username", login.Username))
		// One login attempt per connection.
		if err := protocol.WriteType(conn, protocol.PacketAccDenied); err != nil {
			logger.Debug("send denial", zap.Error(err))
		}
		return
	}

	if err := protocol.WriteType(conn, protocol.PacketAccGranted); err != nil {
		logger.Debug("send grant", zap.Error(err))
		return
	}
	logger.Debug("login granted", zap.String("username", login.Username))

	s.serve(ctx, conn, logger)
}

func (s *Server) awaitLogin(conn net.Conn, logger *zap.Logger) (protocol.Login, bool) {
	aType, err := protocol.ReadType(conn)
	if err != nil {
		logDisconnect(logger, "await login", err)
		return protocol.Login{}, false
	}
	if aType != protocol.PacketLogin {
		logger.Warn("protocol violation during handshake", zap.Stringer("packet", aType))
		s.sendError(conn, logger, protocol.ErrCodeProtocol, "expected Login packet, got "+aType.String())
		return protocol.Login{}, false
	}
	var login protocol.Login
	if err := protocol.ReadPayload(conn, &login, protocol.MaxControlFrame); err != nil {
		logger.Warn("bad login payload", zap.Error(err))
		s.sendError(conn, logger, protocol.ErrCodeProtocol, "malformed login")
		return protocol.Login{}, false
	}
	return login, true
}

// serve is the command loop: one Command packet in, one response out, until
// quit, disconnect or a protocol violation.
func (s *Server) serve(ctx context.Context, conn net.Conn, logger *zap.Logger) {
	for {
		aType, err := protocol.ReadType(conn)
		if err != nil {
			logDisconnect(logger, "await command", err)
			return
		}
		if aType != protocol.PacketCommand {
			if aType.HasPayload() {
				if err := protocol.DiscardPayload(conn); err != nil {
					logDisconnect(logger, "drain unexpected payload", err)
					return
				}
			}
			logger.Warn("protocol violation", zap.Stringer("packet", aType))
			s.sendError(conn, logger, protocol.ErrCodeProtocol, "expected Command packet, got "+aType.String())
			return
		}

		var cmd protocol.Command
		if err := protocol.ReadPayload(conn, &cmd, protocol.MaxControlFrame); err != nil {
			logger.Warn("bad command payload", zap.Error(err))
			s.sendError(conn, logger, protocol.ErrCodeProtocol, "malformed command")
			return
		}

		switch cmd.Kind {
		case protocol.CmdPing:
			if err := protocol.WriteType(conn, protocol.PacketOk); err != nil {
				logDisconnect(logger, "ack ping", err)
				return
			}
		case protocol.CmdQuit:
			// Best effort, the client may already be gone.
			if err := protocol.WriteType(conn, protocol.PacketOk); err != nil {
				logger.Debug("ack quit", zap.Error(err))
			}
			return
		case protocol.CmdQuery:
			if !s.query(ctx, conn, logger, cmd.Query) {
				return
			}
		}
	}
}

// query executes one statement and writes either Response + ResultSet or
// Error + ErrorMessage. It reports whether the connection is still usable.
func (s *Server) query(ctx context.Context, conn net.Conn, logger *zap.Logger, queryText string) bool {
	logger.Debug("executing query", zap.String("query", queryText))

	rows, err := s.executor.Execute(ctx, queryText)
	if err != nil {
		code := protocol.ErrCodeExecute
		if errors.Is(err, engine.ErrParse) {
			code = protocol.ErrCodeParse
		}
		return s.sendError(conn, logger, code, err.Error())
	}

	if err := protocol.WriteType(conn, protocol.PacketResponse); err != nil {
		logDisconnect(logger, "send response", err)
		return false
	}
	if err := protocol.WritePayload(conn, &rows, protocol.NoSizeLimit); err != nil {
		logDisconnect(logger, "send result set", err)
		return false
	}
	return true
}

func (s *Server) sendError(conn net.Conn, logger *zap.Logger, code uint16, message string) bool {
	if err := protocol.WriteType(conn, protocol.PacketError); err != nil {
		logDisconnect(logger, "send error packet", err)
		return false
	}
	msg := protocol.ErrorMessage{Code: code, Message: message}
	if err := protocol.WritePayload(conn, &msg, protocol.NoSizeLimit); err != nil {
		logDisconnect(logger, "send error message", err)
		return false
	}
	return true
}

func logDisconnect(logger *zap.Logger, op string, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		logger.Debug("client disconnected", zap.String("op", op))
		return
	}
	logger.Error("connection error", zap.String("op", op), zap.Error(err))
}
