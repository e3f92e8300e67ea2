package fixture

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// connSet tracks open WebSocket connections so Close can drop them.
type connSet struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func (cs *connSet) add(c *websocket.Conn) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.conns == nil {
		cs.conns = make(map[*websocket.Conn]struct{})
	}
	cs.conns[c] = struct{}{}
}

func (cs *connSet) remove(c *websocket.Conn) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.conns, c)
}

func (cs *connSet) closeAll() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for c := range cs.conns {
		c.Close()
	}
	clear(cs.conns)
}

// upgrade switches the request to a WebSocket and tracks the connection.
// The returned release func untracks and closes it.
func (s *Server) upgrade(c *gin.Context) (*websocket.Conn, func(), bool) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "path", c.Request.URL.Path, "error", err)
		return nil, nil, false
	}
	s.sockets.add(conn)
	return conn, func() {
		s.sockets.remove(conn)
		conn.Close()
	}, true
}

// echo sends every text message back unchanged.
func (s *Server) echo(c *gin.Context) {
	conn, release, ok := s.upgrade(c)
	if !ok {
		return
	}
	defer release()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(mt, data); err != nil {
			return
		}
	}
}

// dukeETF serves the ticker. WebSocket clients get one frame per tick;
// plain requests long-poll for the next tick.
func (s *Server) dukeETF(c *gin.Context) {
	if websocket.IsWebSocketUpgrade(c.Request) {
		s.tickerStream(c)
		return
	}

	q, err := s.ticker.next(c.Request.Context())
	if err != nil {
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=UTF-8", []byte(formatQuote(q)))
}

func (s *Server) tickerStream(c *gin.Context) {
	conn, release, ok := s.upgrade(c)
	if !ok {
		return
	}
	defer release()

	// The reader only notices the peer going away.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		q, err := s.ticker.next(ctx)
		if err != nil {
			return
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(formatQuote(q))); err != nil {
			return
		}
	}
}
