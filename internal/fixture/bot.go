package fixture

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const botName = "Duke"

var dukeBirthday = time.Date(1995, time.May, 23, 0, 0, 0, 0, time.UTC)

// botMessage is the wire form of every chat message. Type selects which
// fields are meaningful.
type botMessage struct {
	Type     string   `json:"type"`
	Name     string   `json:"name,omitempty"`
	Target   *string  `json:"target,omitempty"`
	Message  *string  `json:"message,omitempty"`
	Info     string   `json:"info,omitempty"`
	Userlist []string `json:"userlist,omitempty"`
}

func infoMessage(info string) botMessage {
	return botMessage{Type: "info", Info: info}
}

func chatMessage(name, target, message string) botMessage {
	return botMessage{Type: "chat", Name: name, Target: &target, Message: &message}
}

func usersMessage(users []string) botMessage {
	return botMessage{Type: "users", Userlist: users}
}

// valid reports whether m carries the fields its type requires.
func (m botMessage) valid() bool {
	switch m.Type {
	case "join":
		return m.Name != ""
	case "chat":
		return m.Name != "" && m.Target != nil && m.Message != nil
	default:
		return false
	}
}

// botClient is one chat session. Writes go through send so that a single
// goroutine owns the connection's write side.
type botClient struct {
	conn *websocket.Conn
	send chan []byte

	name   string
	active bool
}

// botHub broadcasts chat traffic to every session and answers messages
// addressed to Duke.
type botHub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients []*botClient
}

func newBotHub(logger *slog.Logger) *botHub {
	return &botHub{logger: logger}
}

func (h *botHub) add(c *botClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients = append(h.clients, c)
}

func (h *botHub) remove(c *botClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, other := range h.clients {
		if other == c {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			break
		}
	}
}

// sendAll queues m for every session. A session whose queue is full misses
// the message.
func (h *botHub) sendAll(m botMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		h.logger.Debug("failed to encode bot message", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("bot session queue full", "name", c.name)
		}
	}
}

// users lists Duke followed by every joined session.
func (h *botHub) users() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	users := []string{botName}
	for _, c := range h.clients {
		if c.active {
			users = append(users, c.name)
		}
	}
	return users
}

func (h *botHub) join(c *botClient, name string) {
	h.mu.Lock()
	c.name = name
	c.active = true
	h.mu.Unlock()

	h.sendAll(infoMessage(name + " has joined the chat"))
	h.sendAll(chatMessage(botName, name, "Hi there!!"))
	h.sendAll(usersMessage(h.users()))
}

func (h *botHub) leave(c *botClient) {
	h.mu.Lock()
	name, joined := c.name, c.active
	c.active = false
	h.mu.Unlock()

	if joined {
		h.sendAll(infoMessage(name + " has left the chat"))
		h.sendAll(usersMessage(h.users()))
	}
}

// handle processes one raw frame. Frames that are not valid messages are
// dropped.
func (h *botHub) handle(c *botClient, raw []byte) {
	var m botMessage
	if err := json.Unmarshal(raw, &m); err != nil || !m.valid() {
		h.logger.Debug("invalid bot message", "raw", string(raw))
		return
	}

	switch m.Type {
	case "join":
		h.join(c, m.Name)
	case "chat":
		h.sendAll(m)
		if *m.Target == botName {
			h.sendAll(chatMessage(botName, m.Name, botRespond(*m.Message, time.Now())))
		}
	}
}

// botRespond answers the questions Duke knows about.
func botRespond(msg string, now time.Time) string {
	q := strings.ToLower(msg)
	switch {
	case strings.Contains(q, "how are you"):
		return "I'm doing great, thank you!"
	case strings.Contains(q, "how old are you"):
		return fmt.Sprintf("I'm %d years old.", age(dukeBirthday, now))
	case strings.Contains(q, "when is your birthday"), strings.Contains(q, "your birthday"):
		return "My birthday is on May 23rd. Thanks for asking!"
	case strings.Contains(q, "your favorite color"):
		return "My favorite color is blue. What's yours?"
	default:
		return "Sorry, I did not understand what you said. " +
			"You can ask me how I'm doing, how old I am, when my birthday is or what my favorite color is."
	}
}

func age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func (s *Server) websocketBot(c *gin.Context) {
	conn, release, ok := s.upgrade(c)
	if !ok {
		return
	}
	defer release()

	client := &botClient{conn: conn, send: make(chan []byte, 64)}
	s.bots.add(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for data := range client.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.bots.handle(client, raw)
	}

	s.bots.remove(client)
	s.bots.leave(client)
	close(client.send)
	<-done
}
