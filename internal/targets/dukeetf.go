package targets

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// DukeETF checks the long-polling price ticker.
type DukeETF struct {
	info
}

// NewDukeETF creates the dukeetf suite.
func NewDukeETF() *DukeETF {
	return &DukeETF{info{
		name:        "dukeetf",
		description: "Long-poll ticker: main page, long-poll answers, price/volume changes",
		envVar:      "DUKEETF_BASE",
		defaultBase: "http://localhost:9080/dukeetf-10-SNAPSHOT",
	}}
}

// Run implements suite.Suite. Exit codes: 2 main page failed, 4 long-poll
// failed, 6 values did not change, 9 network error.
func (s *DukeETF) Run(ctx context.Context, env *suite.Env) error {
	if _, err := mustGetOK(ctx, env, "/main.xhtml", 2, 9); err != nil {
		return err
	}
	softGetOK(ctx, env, "/resources/css/default.css")

	if err := s.assertLongPoll(ctx, env); err != nil {
		return err
	}
	if err := s.assertPriceChanges(ctx, env); err != nil {
		return err
	}

	env.Report.Passf("Smoke sequence complete")
	return nil
}

func (s *DukeETF) assertLongPoll(ctx context.Context, env *suite.Env) error {
	candidates := []string{
		env.Base,
		probe.Join(env.Base, "/dukeetf"),
		probe.Join(env.Base, "/"),
	}
	for i, url := range candidates {
		if s.tryLongPoll(ctx, env, url, i+1) {
			return nil
		}
	}
	return check.Failf(4, "Long-poll endpoint did not respond with 200 + non-empty body within timeout.")
}

func (s *DukeETF) tryLongPoll(ctx context.Context, env *suite.Env, url string, n int) bool {
	env.Report.Verbosef("Long-poll TRY cand#%d: %s (timeout=%s)", n, url, env.Timeouts.LongPoll)

	resp, err := env.HTTP.Do(ctx, probe.Request{Method: http.MethodGet, URL: url, Timeout: env.Timeouts.LongPoll})
	if err != nil {
		env.Report.Verbosef("Long-poll error: %v", err)
		return false
	}
	body := strings.TrimSpace(resp.Body)
	if resp.Status == http.StatusOK && body != "" {
		env.Report.Passf("Long-poll cand#%d -> 200 in %.2fs, %d bytes", n, resp.Elapsed.Seconds(), len(body))
		return true
	}
	env.Report.Verbosef("Long-poll unexpected: status=%d, body=%q", resp.Status, resp.Snippet(200))
	return false
}

// tickerURL is the endpoint serving one "price / volume" sample per request.
func tickerURL(base string) string {
	b := strings.TrimRight(base, "/")
	if strings.HasSuffix(b, "/dukeetf") {
		return b
	}
	return probe.Join(base, "/dukeetf")
}

func (s *DukeETF) assertPriceChanges(ctx context.Context, env *suite.Env) error {
	url := tickerURL(env.Base)
	env.Report.Verbosef("Change-check URL: %s", url)

	first, err := s.sample(ctx, env, url, "first")
	if err != nil {
		return err
	}

	if err := suite.Sleep(ctx, env.Timeouts.ChangeWait); err != nil {
		return err
	}

	second, err := s.sample(ctx, env, url, "second")
	if err != nil {
		return err
	}

	wait := env.Timeouts.ChangeWait.Round(time.Second)
	if first != second {
		env.Report.Passf("DukeETF changes over %s: %.2f/%d -> %.2f/%d",
			wait, first.Price, first.Volume, second.Price, second.Volume)
		return nil
	}
	return check.Failf(6, "DukeETF values unchanged after %s: %.2f/%d", wait, first.Price, first.Volume)
}

func (s *DukeETF) sample(ctx context.Context, env *suite.Env, url, which string) (priceVolume, error) {
	resp, err := env.HTTP.Do(ctx, probe.Request{Method: http.MethodGet, URL: url, Timeout: env.Timeouts.LongPoll})
	if err != nil {
		return priceVolume{}, check.Wrap(9, err, "change-check "+which+" read")
	}
	if resp.Status != http.StatusOK {
		return priceVolume{}, check.Failf(6, "change-check %s read -> HTTP %d", which, resp.Status)
	}
	pv, ok := parsePriceVolume(resp.Body)
	if !ok {
		return priceVolume{}, check.Failf(6, "change-check %s read: could not parse numbers from body: %q", which, resp.Body)
	}
	return pv, nil
}
