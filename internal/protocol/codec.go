package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// MaxControlFrame is the hard byte ceiling for control payloads
	// (Greeting, Login, Command). It deliberately caps statement length.
	MaxControlFrame = 1024

	// NoSizeLimit disables the frame size check. Used for bulk payloads
	// (ResultSet, ErrorMessage) which may legitimately grow large.
	NoSizeLimit = 0

	frameHeaderSize = 4
)

var (
	ErrFrameTooLarge     = errors.New("protocol: frame exceeds size limit")
	ErrTruncated         = errors.New("protocol: truncated payload")
	ErrBadPayload        = errors.New("protocol: malformed payload")
	ErrUnknownPacketType = errors.New("protocol: unknown packet type")
)

// Payload is implemented by every structured message that can follow a packet
// type byte on the wire.
type Payload interface {
	marshal(e *encoder)
	unmarshal(d *decoder) error
}

// WriteType writes a single packet type byte. Types are never framed, a
// payload frame follows only when t.HasPayload().
func WriteType(w io.Writer, t PacketType) error {
	_, err := w.Write([]byte{byte(t)})
	return err
}

// ReadType blocks until one packet type byte is read. A byte outside the
// closed set fails with ErrUnknownPacketType; the stream is not recoverable
// after that since there is no way to know whether a frame follows.
func ReadType(r io.Reader) (PacketType, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	t := PacketType(b[0])
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPacketType, b[0])
	}
	return t, nil
}

// WritePayload marshals p and writes it as one length-prefixed frame. The
// frame, header excluded, must not exceed limit bytes unless limit is
// NoSizeLimit. Header and body go out in a single Write.
func WritePayload(w io.Writer, p Payload, limit uint32) error {
	var e encoder
	e.buf = make([]byte, frameHeaderSize)
	p.marshal(&e)
	body := len(e.buf) - frameHeaderSize
	if limit != NoSizeLimit && body > int(limit) {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, body, limit)
	}
	binary.BigEndian.PutUint32(e.buf[:frameHeaderSize], uint32(body))
	_, err := w.Write(e.buf)
	return err
}

// ReadPayload reads one length-prefixed frame and unmarshals it into p. The
// frame must not exceed limit bytes unless limit is NoSizeLimit. Frames with
// trailing bytes after the payload fail with ErrBadPayload.
func ReadPayload(r io.Reader, p Payload, limit uint32) error {
	size, err := readFrameHeader(r)
	if err != nil {
		return err
	}
	if limit != NoSizeLimit && size > limit {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, size, limit)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	d := decoder{buf: buf}
	if err := p.unmarshal(&d); err != nil {
		return err
	}
	if d.off != len(d.buf) {
		return fmt.Errorf("%w: %d trailing bytes", ErrBadPayload, len(d.buf)-d.off)
	}
	return nil
}

// DiscardPayload consumes exactly one frame without decoding it, leaving the
// stream aligned on the next packet type byte.
func DiscardPayload(r io.Reader) error {
	size, err := readFrameHeader(r)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return nil
}

func readFrameHeader(r io.Reader) (uint32, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(header[:]), nil
}

// encoder appends big-endian primitives to a byte buffer. Strings carry a
// uint32 length prefix.
type encoder struct {
	buf []byte
}

func (e *encoder) writeUint8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) writeUint16(v uint16) {
	e.buf = binary.BigEndian.AppendUint16(e.buf, v)
}

func (e *encoder) writeUint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

func (e *encoder) writeUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *encoder) writeFloat64(v float64) {
	e.writeUint64(math.Float64bits(v))
}

func (e *encoder) writeBool(v bool) {
	if v {
		e.writeUint8(1)
	} else {
		e.writeUint8(0)
	}
}

func (e *encoder) writeString(s string) {
	e.writeUint32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

// decoder reads primitives back out of a single frame. All reads are bounds
// checked, a short buffer fails with ErrTruncated.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) next(n int) ([]byte, error) {
	if len(d.buf)-d.off < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(d.buf)-d.off)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) readUint8() (uint8, error) {
	b, err := d.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) readUint16() (uint16, error) {
	b, err := d.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) readUint32() (uint32, error) {
	b, err := d.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) readUint64() (uint64, error) {
	b, err := d.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) readFloat64() (float64, error) {
	n, err := d.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(n), nil
}

func (d *decoder) readBool() (bool, error) {
	b, err := d.readUint8()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

func (d *decoder) readString() (string, error) {
	size, err := d.readUint32()
	if err != nil {
		return "", err
	}
	b, err := d.next(int(size))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
