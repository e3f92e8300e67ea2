package targets

import (
	"context"
	"regexp"
	"strconv"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// Register adds every target suite to r.
func Register(r *suite.Registry) {
	r.Register(NewHelloServlet())
	r.Register(NewJaxrsHello())
	r.Register(NewHelloService())
	r.Register(NewMood())
	r.Register(NewCart())
	r.Register(NewDukeETF())
	r.Register(NewDukeETF2())
	r.Register(NewWebSocketBot())
	r.Register(NewCounter())
	r.Register(NewConverter())
	r.Register(NewEcho())
	r.Register(NewSimpleGreeting())
	r.Register(NewStandalone())
	r.Register(NewInterceptor())
	r.Register(NewTimerSession())
	r.Register(NewCoffeeShop())
	r.Register(NewGuessNumber())
	r.Register(NewJaxrsCustomer())
	r.Register(NewJaxrsRSVP())
	r.Register(NewRoster())
	r.Register(NewOrder())
}

// NewRegistry returns a registry holding every target suite.
func NewRegistry() *suite.Registry {
	r := suite.NewRegistry()
	Register(r)
	return r
}

// info implements the descriptive half of suite.Suite.
type info struct {
	name        string
	description string
	envVar      string
	defaultBase string
}

func (i info) Name() string        { return i.name }
func (i info) Description() string { return i.description }
func (i info) EnvVar() string      { return i.envVar }
func (i info) DefaultBase() string { return i.defaultBase }

// mustGetOK fetches path under the base URL and requires a 200. Transport
// errors exit with netCode, other statuses with failCode.
func mustGetOK(ctx context.Context, env *suite.Env, path string, failCode, netCode int) (*probe.Response, error) {
	url := probe.Join(env.Base, path)
	env.Report.Verbosef("GET %s", url)

	resp, err := env.HTTP.Get(ctx, url)
	if err != nil {
		return nil, check.Wrap(netCode, err, path)
	}
	if resp.Status != 200 {
		return nil, check.Failf(failCode, "GET %s -> %d", path, resp.Status)
	}
	env.Report.Passf("GET %s -> 200", path)
	return resp, nil
}

// softGetOK fetches path and warns instead of failing.
func softGetOK(ctx context.Context, env *suite.Env, path string) {
	url := probe.Join(env.Base, path)
	env.Report.Verbosef("GET %s (soft)", url)

	resp, err := env.HTTP.Get(ctx, url)
	if err != nil {
		env.Report.Warnf("%s -> %v", path, err)
		return
	}
	if resp.Status != 200 {
		env.Report.Warnf("GET %s -> %d", path, resp.Status)
		return
	}
	env.Report.Passf("GET %s -> 200", path)
}

var priceVolumeRe = regexp.MustCompile(`\s*(-?\d+(?:\.\d+)?)\s*/\s*(-?\d+)\s*`)

// priceVolume is one DukeETF sample, rendered by the target as
// "<price> / <volume>".
type priceVolume struct {
	Price  float64
	Volume int64
}

func parsePriceVolume(s string) (priceVolume, bool) {
	m := priceVolumeRe.FindStringSubmatch(s)
	if m == nil {
		return priceVolume{}, false
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return priceVolume{}, false
	}
	volume, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return priceVolume{}, false
	}
	return priceVolume{Price: price, Volume: volume}, true
}
