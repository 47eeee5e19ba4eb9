package protocol

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTypeUnknownByte(t *testing.T) {
	t.Parallel()

	_, err := ReadType(bytes.NewReader([]byte{0}))
	assert.ErrorIs(t, err, ErrUnknownPacketType)

	_, err = ReadType(bytes.NewReader([]byte{255}))
	assert.ErrorIs(t, err, ErrUnknownPacketType)

	_, err = ReadType(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadTypeRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteType(&buf, PacketAccGranted))

	aType, err := ReadType(&buf)
	require.NoError(t, err)
	assert.Equal(t, PacketAccGranted, aType)
}

func TestWritePayloadSizeBound(t *testing.T) {
	t.Parallel()

	oversized := &Command{Kind: CmdQuery, Query: strings.Repeat("a", MaxControlFrame)}

	var buf bytes.Buffer
	err := WritePayload(&buf, oversized, MaxControlFrame)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Zero(t, buf.Len(), "nothing may reach the wire when the bound is exceeded")

	// The same payload is fine without a limit.
	require.NoError(t, WritePayload(&buf, oversized, NoSizeLimit))
}

func TestReadPayloadSizeBound(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	payload := &ErrorMessage{Message: strings.Repeat("b", 2*MaxControlFrame)}
	require.NoError(t, WritePayload(&buf, payload, NoSizeLimit))

	var decoded ErrorMessage
	err := ReadPayload(&buf, &decoded, MaxControlFrame)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadPayloadTruncatedFrame(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WritePayload(&buf, &Login{Username: "alice", Password: "pw"}, MaxControlFrame))

	// Drop the frame tail.
	whole := buf.Bytes()
	short := bytes.NewReader(whole[:len(whole)-3])

	var decoded Login
	err := ReadPayload(short, &decoded, MaxControlFrame)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadPayloadTrailingBytes(t *testing.T) {
	t.Parallel()

	// A greeting frame with extra bytes after the message must be rejected,
	// otherwise a peer could smuggle bytes between exchanges.
	var e encoder
	e.buf = make([]byte, frameHeaderSize)
	(&Greeting{ProtocolVersion: 1, Message: "hi"}).marshal(&e)
	e.buf = append(e.buf, 0xde, 0xad)
	e.buf[3] = byte(len(e.buf) - frameHeaderSize)

	var decoded Greeting
	err := ReadPayload(bytes.NewReader(e.buf), &decoded, MaxControlFrame)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestDiscardPayloadRealignsStream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WritePayload(&buf, &Greeting{ProtocolVersion: 1, Message: "unexpected"}, MaxControlFrame))
	require.NoError(t, WriteType(&buf, PacketOk))

	require.NoError(t, DiscardPayload(&buf))

	// The next read lands exactly on the following packet type byte.
	aType, err := ReadType(&buf)
	require.NoError(t, err)
	assert.Equal(t, PacketOk, aType)
	assert.Zero(t, buf.Len())
}

func TestDiscardPayloadTruncated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WritePayload(&buf, &Greeting{ProtocolVersion: 1, Message: "partial"}, MaxControlFrame))
	whole := buf.Bytes()

	err := DiscardPayload(bytes.NewReader(whole[:len(whole)-1]))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
}
