package wsclient

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Opcode identifies a WebSocket frame type.
type Opcode uint8

// Frame opcodes from RFC 6455 section 5.2.
const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (o Opcode) String() string {
	switch o {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(%#x)", uint8(o))
	}
}

// Errors
var (
	ErrHandshake          = errors.New("websocket handshake failed")
	ErrClosedByPeer       = errors.New("websocket closed by server")
	ErrClosedWhileReading = errors.New("websocket closed while reading")
	ErrUnsupportedFrame   = errors.New("unsupported websocket frame")
	ErrFrameTooLarge      = errors.New("websocket frame too large")
	ErrInvalidLength      = errors.New("invalid websocket frame length")
	ErrUnsupportedScheme  = errors.New("unsupported websocket url scheme")
	ErrAlreadyClosed      = errors.New("already closed")
)

// HandshakeError reports a non-101 answer to the opening handshake.
type HandshakeError struct {
	StatusLine string // First line of the server response, may be empty
	Header     string // Full response header block as received
}

func (e *HandshakeError) Error() string {
	if e.StatusLine == "" {
		return "websocket handshake failed: no status line received"
	}
	return "websocket handshake failed: " + e.StatusLine
}

func (e *HandshakeError) Unwrap() error {
	return ErrHandshake
}

// FrameError describes a frame RecvText refused to return.
type FrameError struct {
	Err    error
	Opcode Opcode
	Fin    bool
	Length uint64
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v (opcode=%s, fin=%t, len=%d)", e.Err, e.Opcode, e.Fin, e.Length)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// CloseError is returned by RecvText when the server sends a close frame.
type CloseError struct {
	Code   int // 0 when the close frame carried no status code
	Reason string
}

func (e *CloseError) Error() string {
	if e.Code == 0 {
		return ErrClosedByPeer.Error()
	}
	if e.Reason == "" {
		return fmt.Sprintf("%v (code=%d)", ErrClosedByPeer, e.Code)
	}
	return fmt.Sprintf("%v (code=%d, reason=%q)", ErrClosedByPeer, e.Code, e.Reason)
}

func (e *CloseError) Unwrap() error {
	return ErrClosedByPeer
}

// Config configures Dial and the resulting Conn.
type Config struct {
	Timeout    time.Duration // Dial, handshake, write and default read deadline
	MaxPayload uint64        // Largest frame payload RecvText accepts
	TLSConfig  *tls.Config   // Used for wss:// (ServerName defaults to the URL host)
	Header     http.Header   // Extra handshake request headers
	Logger     *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		MaxPayload: 16 << 20,
	}
}

// Option configures a Dial call.
type Option func(*Config)

// WithTimeout sets the connect/handshake timeout and the default read and
// write deadlines.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithTLSConfig sets the TLS configuration used for wss:// URLs.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Config) {
		c.TLSConfig = cfg
	}
}

// WithHeader adds extra headers to the handshake request.
func WithHeader(h http.Header) Option {
	return func(c *Config) {
		c.Header = h
	}
}

// WithMaxPayload caps the payload size of incoming frames.
func WithMaxPayload(n uint64) Option {
	return func(c *Config) {
		c.MaxPayload = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
