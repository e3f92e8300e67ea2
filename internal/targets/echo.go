package targets

import (
	"context"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
	"github.com/rickgao/smokebench/internal/wsclient"
)

// Echo checks a WebSocket echo endpoint: two messages sent a wait apart
// come back unchanged and the session closes cleanly.
type Echo struct {
	info
}

// NewEcho creates the echo suite. The base may be an http(s) or ws(s) URL;
// "/echo" is appended unless already present.
func NewEcho() *Echo {
	return &Echo{info{
		name:        "echo",
		description: "WebSocket echo: ping-1, wait, ping-2, close",
		envVar:      "ECHO_URL",
		defaultBase: "ws://localhost:8080/echo",
	}}
}

// Run implements suite.Suite. Exit code 5 on any WebSocket failure.
func (s *Echo) Run(ctx context.Context, env *suite.Env) error {
	url := probe.WebSocketURL(env.Base, "/echo")
	env.Report.Verbosef("WS connect -> %s", url)

	conn, err := wsclient.Dial(ctx, url,
		wsclient.WithTimeout(env.Timeouts.WS),
		wsclient.WithLogger(env.Logger),
	)
	if err != nil {
		return check.Wrap(5, err, "WS connect")
	}
	defer conn.Close()
	env.Report.Passf("WebSocket connected: %s", url)

	if err := s.roundTrip(conn, env, "ping-1"); err != nil {
		return err
	}
	if err := suite.Sleep(ctx, env.Timeouts.ChangeWait); err != nil {
		return err
	}
	if err := s.roundTrip(conn, env, "ping-2"); err != nil {
		return err
	}

	if err := conn.Close(); err != nil {
		return check.Wrap(5, err, "WS close")
	}
	env.Report.Passf("WebSocket closed")
	return nil
}

func (s *Echo) roundTrip(conn *wsclient.Conn, env *suite.Env, msg string) error {
	if err := conn.SendText(msg); err != nil {
		return check.Wrap(5, err, "WS send "+msg)
	}
	got, err := conn.RecvText(env.Timeouts.WS)
	if err != nil {
		return check.Wrap(5, err, "WS recv "+msg)
	}
	if got != msg {
		return check.Failf(5, "WS echo mismatch: sent %q, got %q", msg, got)
	}
	env.Report.Passf("WS echo %q", msg)
	return nil
}
