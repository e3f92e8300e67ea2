package targets

import (
	"context"
	"fmt"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// tally counts browser checks. Browser suites run every check and fail with
// exit code 1 at the end if any of them failed.
type tally struct {
	report *check.Reporter
	total  int
	passed int
}

func (t *tally) record(ok bool, passMsg, failMsg string) bool {
	t.total++
	if ok {
		t.passed++
		t.report.Passf("%s", passMsg)
	} else {
		t.report.Failf("%s", failMsg)
	}
	return ok
}

func (t *tally) result() error {
	return t.resultCode(check.ExitFailure)
}

// resultCode reports the summary and fails with code if any check failed.
func (t *tally) resultCode(code int) error {
	t.summary()
	if t.passed != t.total {
		return check.Failf(code, "%d of %d browser checks failed", t.total-t.passed, t.total)
	}
	return nil
}

// summary reports the pass count without failing. Suites whose targets
// only report their checks use it in place of result.
func (t *tally) summary() {
	t.report.Infof("Summary: %d/%d tests passed.", t.passed, t.total)
}

// openHome opens a page for a browser suite. homeEnv names the variable
// holding the path of the home page under the base URL.
func openHome(ctx context.Context, env *suite.Env, homeEnv, defaultHome string) (browser.Page, string, error) {
	if env.Browser == nil {
		return nil, "", check.Wrap(check.ExitFailure, browser.ErrNotConfigured, "open browser")
	}
	page, err := env.Browser.NewPage(ctx)
	if err != nil {
		return nil, "", check.Wrap(check.ExitFailure, err, "open browser")
	}
	home := probe.Join(env.Base, env.EnvOr(homeEnv, defaultHome))
	return page, home, nil
}

// pageContent navigates to url and returns the rendered DOM.
func pageContent(page browser.Page, url string) (string, error) {
	if err := page.Goto(url); err != nil {
		return "", err
	}
	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content of %s: %w", url, err)
	}
	return html, nil
}

// field is one labeled form control and the value to type into it.
type field struct {
	label string
	value string
}

// submitForm fills fields in order, clicks button and returns the page
// shown afterwards. Failures are logged verbosely and reported as false.
func submitForm(env *suite.Env, page browser.Page, button string, fields ...field) (string, bool) {
	for _, f := range fields {
		if err := page.FillByLabel(f.label, f.value); err != nil {
			env.Report.Verbosef("fill %q: %v", f.label, err)
			return "", false
		}
	}
	if err := page.ClickButton(button); err != nil {
		env.Report.Verbosef("click %q: %v", button, err)
		return "", false
	}
	html, err := page.Content()
	if err != nil {
		env.Report.Verbosef("read page after %q: %v", button, err)
		return "", false
	}
	return html, true
}

// currentContent returns the DOM of the page, logging read errors.
func currentContent(env *suite.Env, page browser.Page) string {
	html, err := page.Content()
	if err != nil {
		env.Report.Verbosef("read page: %v", err)
	}
	return html
}
