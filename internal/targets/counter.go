package targets

import (
	"context"
	"regexp"
	"strconv"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/suite"
)

var accessCountRe = regexp.MustCompile(`This page has been accessed (\d+) time\(s\)\.`)

// Counter checks the hit counter page in a browser: the page shows the
// access count and a second visit increments it by one.
type Counter struct {
	info
}

// NewCounter creates the counter suite.
func NewCounter() *Counter {
	return &Counter{info{
		name:        "counter",
		description: "Hit counter (browser): page shows the access count, reload adds one",
		envVar:      "COUNTER_BASE_URL",
		defaultBase: "http://localhost:8080",
	}}
}

// Run implements suite.Suite. Exit code 1 when any check failed.
func (s *Counter) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "COUNTER_HOME_URI", "/counter")
	if err != nil {
		return err
	}
	defer page.Close()

	t := &tally{report: env.Report}

	first, ok := s.visit(env, page, home)
	t.record(ok, "Page loaded successfully and contains expected text.",
		"Page did not contain expected text.")

	second, ok := s.visit(env, page, home)
	t.record(ok && second == first+1,
		"Access counter increased by one ("+strconv.Itoa(first)+" -> "+strconv.Itoa(second)+").",
		"Access counter did not increase by one.")

	return t.result()
}

// visit loads the counter page and returns the displayed access count.
func (s *Counter) visit(env *suite.Env, page browser.Page, url string) (int, bool) {
	html, err := pageContent(page, url)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", url, err)
		return 0, false
	}
	m := accessCountRe.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
