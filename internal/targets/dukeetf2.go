package targets

import (
	"context"
	"time"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
	"github.com/rickgao/smokebench/internal/wsclient"
)

// DukeETF2 checks the WebSocket price ticker.
type DukeETF2 struct {
	info
}

// NewDukeETF2 creates the dukeetf2 suite.
func NewDukeETF2() *DukeETF2 {
	return &DukeETF2{info{
		name:        "dukeetf2",
		description: "WebSocket ticker: index page, /dukeetf frames change over time",
		envVar:      "DUKEETF_BASE",
		defaultBase: "http://localhost:8080",
	}}
}

// Run implements suite.Suite. Exit codes: 2 index page failed, 5 WebSocket
// failed, 9 network error.
func (s *DukeETF2) Run(ctx context.Context, env *suite.Env) error {
	if _, err := mustGetOK(ctx, env, "/index.html", 2, 9); err != nil {
		return err
	}
	softGetOK(ctx, env, "/resources/css/default.css")

	if err := s.assertFramesChange(ctx, env); err != nil {
		return err
	}

	env.Report.Passf("Smoke sequence complete")
	return nil
}

func (s *DukeETF2) assertFramesChange(ctx context.Context, env *suite.Env) error {
	url := probe.WebSocketURL(env.Base, "/dukeetf")
	env.Report.Verbosef("WS connect -> %s", url)

	conn, err := wsclient.Dial(ctx, url,
		wsclient.WithTimeout(env.Timeouts.WS),
		wsclient.WithLogger(env.Logger),
	)
	if err != nil {
		return check.Wrap(5, err, "WS connect")
	}
	defer conn.Close()

	first, err := s.recvSample(conn, env, 1)
	if err != nil {
		return err
	}

	if err := suite.Sleep(ctx, env.Timeouts.ChangeWait); err != nil {
		return err
	}

	second, err := s.recvSample(conn, env, 2)
	if err != nil {
		return err
	}

	wait := env.Timeouts.ChangeWait.Round(time.Second)
	if first != second {
		env.Report.Passf("WS changes over %s: %.2f/%d -> %.2f/%d",
			wait, first.Price, first.Volume, second.Price, second.Volume)
		return nil
	}
	return check.Failf(5, "WS values unchanged after %s: %.2f/%d", wait, first.Price, first.Volume)
}

func (s *DukeETF2) recvSample(conn *wsclient.Conn, env *suite.Env, n int) (priceVolume, error) {
	msg, err := conn.RecvText(env.Timeouts.WS)
	if err != nil {
		return priceVolume{}, check.Wrap(5, err, "WS recv")
	}
	env.Report.Verbosef("WS recv#%d: %q", n, msg)

	pv, ok := parsePriceVolume(msg)
	if !ok {
		return priceVolume{}, check.Failf(5, "WS frame not parseable: %q", msg)
	}
	return pv, nil
}
