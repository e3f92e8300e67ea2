package targets

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
	"github.com/rickgao/smokebench/internal/wsclient"
)

const botName = "Duke"

// WebSocketBot checks the chat bot: joining is announced, Duke greets the
// user and answers a fixed set of questions.
type WebSocketBot struct {
	info

	PollWindow time.Duration // Receive window while waiting for a message
	QuietWait  time.Duration // How long to listen after the untargeted message
}

// NewWebSocketBot creates the websocketbot suite.
func NewWebSocketBot() *WebSocketBot {
	return &WebSocketBot{
		info: info{
			name:        "websocketbot",
			description: "Chat bot over WebSocket: join, greeting, five questions, untargeted chat",
			envVar:      "WEBSOCKETBOT_BASE",
			defaultBase: "http://localhost:8080",
		},
		PollWindow: time.Second,
		QuietWait:  2 * time.Second,
	}
}

// botMessage is the union of the JSON messages the bot endpoint sends.
type botMessage struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Target   string   `json:"target"`
	Message  string   `json:"message"`
	Info     string   `json:"info"`
	Userlist []string `json:"userlist"`
}

type joinMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// chatMessage always carries target; the endpoint drops chats without it.
type chatMessage struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

type botQuestion struct {
	Ask    string
	Expect string
}

var botQuestions = []botQuestion{
	{"How are you?", "great"},
	{"How old are you?", "years old"},
	{"When is your birthday?", "May 23rd"},
	{"What is your favorite color?", "blue"},
	{"What is your name?", "Sorry, I did not understand"},
}

// Run implements suite.Suite. Exit codes: 2 index page failed, 3 WebSocket
// failed, 9 network error. Bot answers are soft checks.
func (s *WebSocketBot) Run(ctx context.Context, env *suite.Env) error {
	resp, err := mustGetOK(ctx, env, "/index.html", 2, 9)
	if err != nil {
		return err
	}
	env.Report.Soft(
		strings.Contains(resp.Body, "WebsocketBot") && strings.Contains(resp.Body, "WebSocket"),
		"Page content looks correct",
		"Page content might not be as expected",
	)

	url := probe.WebSocketURL(env.Base, "/websocketbot")
	env.Report.Verbosef("WS connect -> %s", url)
	conn, err := wsclient.Dial(ctx, url,
		wsclient.WithTimeout(env.Timeouts.WS),
		wsclient.WithLogger(env.Logger),
	)
	if err != nil {
		return check.Wrap(3, err, "WS connect")
	}
	defer conn.Close()
	env.Report.Passf("WebSocket connected: %s", url)

	b := &botSession{suite: s, env: env, conn: conn, user: "TestUser"}
	ok, err := b.run(ctx)
	if err != nil {
		return err
	}

	env.Report.Soft(ok, "WebSocket functionality working", "WebSocket functionality issues")
	env.Report.Passf("Smoke sequence complete")
	return nil
}

type botSession struct {
	suite *WebSocketBot
	env   *suite.Env
	conn  *wsclient.Conn
	user  string

	// ended holds the receive error that stopped the conversation.
	ended error
}

// stopped warns and reports true once the conversation has ended early.
func (b *botSession) stopped() bool {
	if b.ended == nil {
		return false
	}
	b.env.Report.Warnf("Conversation ended early: %v", b.ended)
	return true
}

// run drives the conversation and reports whether every soft check held.
func (b *botSession) run(ctx context.Context) (bool, error) {
	ok := true
	report := b.env.Report

	if err := b.send(joinMessage{Type: "join", Name: b.user}); err != nil {
		return false, err
	}

	_, joined, err := b.waitFor(ctx, b.env.Timeouts.WS, func(m botMessage) bool {
		return m.Type == "info" && strings.Contains(m.Info, "joined")
	})
	if err != nil {
		return false, err
	}
	ok = report.Soft(joined, "Join acknowledged", "No join confirmation received") && ok
	if b.stopped() {
		return false, nil
	}

	_, greeted, err := b.waitFor(ctx, b.env.Timeouts.WS, func(m botMessage) bool {
		return m.Type == "chat" && m.Name == botName && strings.Contains(m.Message, "Hi there")
	})
	if err != nil {
		return false, err
	}
	ok = report.Soft(greeted, "Duke greeted the user", "No greeting from Duke") && ok
	if b.stopped() {
		return false, nil
	}

	for _, q := range botQuestions {
		answered, err := b.ask(ctx, q)
		if err != nil {
			return false, err
		}
		ok = answered && ok
		if b.stopped() {
			return false, nil
		}
	}

	quiet, err := b.untargeted(ctx)
	if err != nil {
		return false, err
	}
	if b.stopped() {
		return false, nil
	}
	return quiet && ok, nil
}

func (b *botSession) ask(ctx context.Context, q botQuestion) (bool, error) {
	if err := b.send(chatMessage{Type: "chat", Name: b.user, Target: botName, Message: q.Ask}); err != nil {
		return false, err
	}
	want := strings.ToLower(q.Expect)

	m, found, err := b.waitFor(ctx, b.env.Timeouts.WS, func(m botMessage) bool {
		return m.Type == "chat" && m.Name == botName && strings.Contains(strings.ToLower(m.Message), want)
	})
	if err != nil {
		return false, err
	}
	if found {
		b.env.Report.Passf("Q: %q -> %q", q.Ask, m.Message)
		return true, nil
	}
	b.env.Report.Warnf("Q: %q -> no answer containing %q", q.Ask, q.Expect)
	return false, nil
}

// untargeted sends a chat addressed to nobody. The bot should stay silent;
// the user's own message is echoed back.
func (b *botSession) untargeted(ctx context.Context) (bool, error) {
	text := "Hello everyone!"
	if err := b.send(chatMessage{Type: "chat", Name: b.user, Target: "", Message: text}); err != nil {
		return false, err
	}

	m, replied, err := b.waitFor(ctx, b.suite.QuietWait, func(m botMessage) bool {
		return m.Type == "chat" && m.Name == botName
	})
	if err != nil {
		return false, err
	}
	if replied {
		b.env.Report.Warnf("Duke replied to an untargeted message: %q", m.Message)
		return false, nil
	}
	if b.ended != nil {
		return false, nil
	}
	b.env.Report.Passf("Untargeted message sent, no reply from Duke")
	return true, nil
}

func (b *botSession) send(m any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return check.Wrap(3, err, "encode message")
	}
	b.env.Report.Verbosef("WS send: %s", data)
	if err := b.conn.SendText(string(data)); err != nil {
		return check.Wrap(3, err, "WS send")
	}
	return nil
}

// waitFor reads messages in short windows until match accepts one or the
// timeout passes. Non-JSON frames and window timeouts are skipped. Any other
// receive error, such as a close frame, ends the conversation without
// failing the suite.
func (b *botSession) waitFor(ctx context.Context, timeout time.Duration, match func(botMessage) bool) (botMessage, bool, error) {
	if b.ended != nil {
		return botMessage{}, false, nil
	}
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return botMessage{}, false, nil
		}
		window := min(b.suite.PollWindow, remaining)

		raw, err := b.conn.RecvText(window)
		if err != nil {
			if !wsclient.IsTimeout(err) {
				b.env.Report.Verbosef("WS recv error: %v", err)
				b.ended = err
				return botMessage{}, false, nil
			}
			if err := suite.Sleep(ctx, 100*time.Millisecond); err != nil {
				return botMessage{}, false, err
			}
			continue
		}
		b.env.Report.Verbosef("WS recv: %s", raw)

		var m botMessage
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		if match(m) {
			return m, true, nil
		}
	}
}
