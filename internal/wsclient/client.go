package wsclient

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

const maxHandshakeHeader = 64 << 10

var headerTerminator = []byte("\r\n\r\n")

// Conn is an open WebSocket session. It is not safe for concurrent use;
// each check owns its Conn for the duration of one session.
type Conn struct {
	cfg    Config
	logger *slog.Logger
	url    string

	conn net.Conn
	fr   frameReader

	mu     sync.Mutex
	closed bool
}

// Dial performs the opening handshake against rawURL (ws:// or wss://).
// Bytes received after the handshake response are kept for RecvText.
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Conn, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}

	var secure bool
	switch strings.ToLower(u.Scheme) {
	case "ws":
	case "wss":
		secure = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
		if secure {
			port = "443"
		}
	}
	addr := net.JoinHostPort(host, port)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if secure {
		tlsCfg := &tls.Config{}
		if cfg.TLSConfig != nil {
			tlsCfg = cfg.TLSConfig.Clone()
		}
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = host
		}
		tc := tls.Client(nc, tlsCfg)
		if err := tc.HandshakeContext(ctx); err != nil {
			nc.Close()
			return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
		}
		nc = tc
	}

	if deadline, ok := ctx.Deadline(); ok {
		nc.SetDeadline(deadline)
	}

	leftover, err := handshake(nc, u, addr, cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	nc.SetDeadline(time.Time{})

	logger.Debug("websocket connected", "url", rawURL, "buffered", len(leftover))

	return &Conn{
		cfg:    cfg,
		logger: logger,
		url:    rawURL,
		conn:   nc,
		fr: frameReader{
			r:   nc,
			buf: leftover,
			max: cfg.MaxPayload,
		},
	}, nil
}

// handshake writes the upgrade request and reads the response header block.
// It returns whatever followed the header terminator.
func handshake(rw io.ReadWriter, u *url.URL, hostHeader string, cfg Config) ([]byte, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	var req bytes.Buffer
	fmt.Fprintf(&req, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&req, "Host: %s\r\n", hostHeader)
	req.WriteString("Upgrade: websocket\r\n")
	req.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(&req, "Sec-WebSocket-Key: %s\r\n", key)
	req.WriteString("Sec-WebSocket-Version: 13\r\n")
	for name, values := range cfg.Header {
		for _, v := range values {
			fmt.Fprintf(&req, "%s: %s\r\n", name, v)
		}
	}
	req.WriteString("\r\n")

	if _, err := rw.Write(req.Bytes()); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	var resp []byte
	var chunk [readChunk]byte
	for !bytes.Contains(resp, headerTerminator) {
		if len(resp) > maxHandshakeHeader {
			return nil, &HandshakeError{StatusLine: statusLine(resp), Header: string(resp)}
		}
		n, err := rw.Read(chunk[:])
		resp = append(resp, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if n == 0 {
				return nil, fmt.Errorf("read handshake response: %w", err)
			}
		}
	}

	header, leftover, found := bytes.Cut(resp, headerTerminator)
	if !found {
		return nil, &HandshakeError{StatusLine: statusLine(resp), Header: string(resp)}
	}

	line := statusLine(header)
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] != "101" {
		return nil, &HandshakeError{StatusLine: line, Header: string(header)}
	}

	return bytes.Clone(leftover), nil
}

func statusLine(header []byte) string {
	line, _, _ := bytes.Cut(header, []byte("\r\n"))
	return string(line)
}

func newKey() (string, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate websocket key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(nonce[:]), nil
}

func newMask() ([4]byte, error) {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, fmt.Errorf("generate mask key: %w", err)
	}
	return key, nil
}

// SendText writes msg as one masked text frame.
func (c *Conn) SendText(msg string) error {
	if c.isClosed() {
		return ErrAlreadyClosed
	}

	key, err := newMask()
	if err != nil {
		return err
	}
	data := appendFrame(nil, OpText, []byte(msg), key)

	if c.cfg.Timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.Timeout))
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("write text frame: %w", err)
	}
	return nil
}

// RecvText reads the next frame and returns its text. A timeout of zero uses
// the configured default. Deadline expiry is reported as a net.Error with
// Timeout() true; see IsTimeout.
func (c *Conn) RecvText(timeout time.Duration) (string, error) {
	if c.isClosed() {
		return "", ErrAlreadyClosed
	}

	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}

	f, err := c.fr.readFrame()
	if err != nil {
		return "", err
	}
	return textPayload(f)
}

// Buffered returns a copy of the bytes received but not yet consumed.
func (c *Conn) Buffered() []byte {
	return bytes.Clone(c.fr.buf)
}

// URL returns the URL the connection was dialed with.
func (c *Conn) URL() string {
	return c.url
}

// Close sends a best-effort close frame and closes the socket. Closing an
// already closed Conn returns nil.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if key, err := newMask(); err == nil {
		payload := binary.BigEndian.AppendUint16(nil, 1000)
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		if _, err := c.conn.Write(appendFrame(nil, OpClose, payload, key)); err != nil {
			c.logger.Debug("failed to send close frame", "error", err)
		}
	}

	return c.conn.Close()
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// IsTimeout reports whether err is a read or write deadline expiry.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
