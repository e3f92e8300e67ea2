package wsclient

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	finBit     = 0x80
	maskBit    = 0x80
	opcodeBits = 0x0F
	lengthBits = 0x7F

	// 7-bit length markers for the extended length forms.
	length16 = 126
	length64 = 127

	readChunk = 4096
)

// frame is one decoded frame with its payload already unmasked.
type frame struct {
	fin     bool
	opcode  Opcode
	payload []byte
}

// appendFrame appends a single masked client frame (FIN set) to dst.
func appendFrame(dst []byte, op Opcode, payload []byte, key [4]byte) []byte {
	n := len(payload)
	dst = append(dst, finBit|byte(op))

	switch {
	case n < length16:
		dst = append(dst, maskBit|byte(n))
	case n < 1<<16:
		dst = append(dst, maskBit|length16)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, maskBit|length64)
		dst = binary.BigEndian.AppendUint64(dst, uint64(n))
	}

	dst = append(dst, key[:]...)
	start := len(dst)
	dst = append(dst, payload...)
	maskBytes(dst[start:], key)
	return dst
}

// maskBytes XORs b in place with key. Applying it twice restores b.
func maskBytes(b []byte, key [4]byte) {
	for i := range b {
		b[i] ^= key[i%4]
	}
}

// frameReader decodes frames from r, keeping unconsumed bytes in buf.
type frameReader struct {
	r   io.Reader
	buf []byte
	max uint64
}

// need reads from r until buf holds at least n bytes.
func (fr *frameReader) need(n int) error {
	var chunk [readChunk]byte
	for len(fr.buf) < n {
		got, err := fr.r.Read(chunk[:])
		fr.buf = append(fr.buf, chunk[:got]...)
		if got > 0 {
			continue
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return ErrClosedWhileReading
		}
		return fmt.Errorf("read frame: %w", err)
	}
	return nil
}

// readFrame decodes the next frame and drops its bytes from the buffer.
func (fr *frameReader) readFrame() (frame, error) {
	if err := fr.need(2); err != nil {
		return frame{}, err
	}

	b0, b1 := fr.buf[0], fr.buf[1]
	f := frame{
		fin:    b0&finBit != 0,
		opcode: Opcode(b0 & opcodeBits),
	}
	masked := b1&maskBit != 0
	length := uint64(b1 & lengthBits)
	idx := 2

	switch length {
	case length16:
		if err := fr.need(idx + 2); err != nil {
			return frame{}, err
		}
		length = uint64(binary.BigEndian.Uint16(fr.buf[idx:]))
		idx += 2
	case length64:
		if err := fr.need(idx + 8); err != nil {
			return frame{}, err
		}
		length = binary.BigEndian.Uint64(fr.buf[idx:])
		idx += 8

		// The most significant bit of the 64-bit length must be 0.
		if length > math.MaxInt64-uint64(idx+4) {
			return frame{}, &FrameError{Err: ErrInvalidLength, Opcode: f.opcode, Fin: f.fin, Length: length}
		}
	}

	if length > fr.max {
		return frame{}, &FrameError{Err: ErrFrameTooLarge, Opcode: f.opcode, Fin: f.fin, Length: length}
	}

	var key [4]byte
	if masked {
		if err := fr.need(idx + 4); err != nil {
			return frame{}, err
		}
		copy(key[:], fr.buf[idx:idx+4])
		idx += 4
	}

	end := idx + int(length)
	if err := fr.need(end); err != nil {
		return frame{}, err
	}

	f.payload = make([]byte, length)
	copy(f.payload, fr.buf[idx:end])
	rest := copy(fr.buf, fr.buf[end:])
	fr.buf = fr.buf[:rest]

	if masked {
		maskBytes(f.payload, key)
	}
	return f, nil
}

// textPayload applies the receive rules: close frames and anything that is
// not a final text frame are errors.
func textPayload(f frame) (string, error) {
	if f.opcode == OpClose {
		return "", closeError(f.payload)
	}
	if f.opcode != OpText || !f.fin {
		return "", &FrameError{Err: ErrUnsupportedFrame, Opcode: f.opcode, Fin: f.fin, Length: uint64(len(f.payload))}
	}
	if utf8.Valid(f.payload) {
		return string(f.payload), nil
	}
	return strings.ToValidUTF8(string(f.payload), "\uFFFD"), nil
}

func closeError(payload []byte) *CloseError {
	if len(payload) < 2 {
		return &CloseError{}
	}
	return &CloseError{
		Code:   int(binary.BigEndian.Uint16(payload)),
		Reason: strings.ToValidUTF8(string(payload[2:]), "\uFFFD"),
	}
}
