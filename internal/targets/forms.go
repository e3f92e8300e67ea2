package targets

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/suite"
)

// SimpleGreeting checks the greeting form in a browser.
type SimpleGreeting struct {
	info

	// UserName is the name typed into the greeting form.
	UserName string
}

// NewSimpleGreeting creates the simplegreeting suite.
func NewSimpleGreeting() *SimpleGreeting {
	return &SimpleGreeting{
		info: info{
			name:        "simplegreeting",
			description: "Greeting form (browser): \"Say Hello\" answers \"Hi, John!\"",
			envVar:      "SIMPLE_GREETING_BASE_URL",
			defaultBase: "http://localhost:8080",
		},
		UserName: "John",
	}
}

// Run implements suite.Suite. Exit code 1 when any check failed.
func (s *SimpleGreeting) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "SIMPLE_GREETING_HOME_URI", "/simplegreeting")
	if err != nil {
		return err
	}
	defer page.Close()

	t := &tally{report: env.Report}

	html, err := pageContent(page, home)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
	}
	t.record(err == nil && strings.Contains(html, "Simple Greeting"),
		"Page loaded successfully and contains expected text.",
		"Page did not contain expected text.")

	html, ok := submitForm(env, page, "Say Hello", field{"Enter your name:", s.UserName})
	t.record(ok && strings.Contains(html, "Hi, "+s.UserName+"!"),
		"Greeting displayed correctly.",
		"Greeting not displayed as expected.")

	return t.result()
}

// Interceptor checks that the method interceptor lower-cases the submitted
// name. The target only reports its checks: the exit code is always 0 once
// the browser is up.
type Interceptor struct {
	info
}

// NewInterceptor creates the ejb-interceptor suite.
func NewInterceptor() *Interceptor {
	return &Interceptor{info{
		name:        "ejb-interceptor",
		description: "Interceptor form (browser): submitted name comes back lower-cased",
		envVar:      "TASKCREATOR_BASE_URL",
		defaultBase: "http://localhost:8080",
	}}
}

// Run implements suite.Suite.
func (s *Interceptor) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "INTERCEPTOR_HOME_URI", "/")
	if err != nil {
		return err
	}
	defer page.Close()

	const prompt = "Enter your name:"
	t := &tally{report: env.Report}

	html, err := pageContent(page, home)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
	}
	t.record(err == nil && strings.Contains(html, prompt),
		"Page loaded successfully and contains expected text.",
		"Page did not contain expected text.")

	html, ok := submitForm(env, page, "Submit", field{prompt, "TEST USER"})
	t.record(ok && strings.Contains(html, "Hello, test user."),
		"Name was converted to lower case by the interceptor.",
		"Response did not contain the lower-cased name.")

	back := page.GoBack() == nil && strings.Contains(currentContent(env, page), prompt)
	t.record(back,
		"Back navigation returned to the form.",
		"Back navigation did not return to the form.")

	t.summary()
	return nil
}

var programmaticRe = regexp.MustCompile(`The last programmatic timeout was:\s*([^<]*)`)

// TimerSession checks that the programmatic and automatic timers of the
// timer session bean fire. Like Interceptor it only reports its checks.
type TimerSession struct {
	info

	// Wait is how long to let the timers run before refreshing.
	Wait time.Duration
}

// NewTimerSession creates the ejb-timersession suite.
func NewTimerSession() *TimerSession {
	return &TimerSession{
		info: info{
			name:        "ejb-timersession",
			description: "Timer session bean (browser): programmatic and automatic timeouts fire",
			envVar:      "SERVICE_BASE_URL",
			defaultBase: "http://localhost:9080",
		},
		Wait: time.Minute,
	}
}

// Run implements suite.Suite. A canceled context while waiting for the
// timers exits with 9.
func (s *TimerSession) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "TIMERSESSION_HOME_URI", "/timersession")
	if err != nil {
		return err
	}
	defer page.Close()

	t := &tally{report: env.Report}

	html, err := pageContent(page, home)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
	}
	t.record(err == nil && strings.Contains(html, "The last programmatic timeout was: never."),
		"Page loaded with no programmatic timeout yet.",
		"Page did not show the initial programmatic timeout.")

	html, ok := submitForm(env, page, "Set Timer")
	t.record(ok && strings.Contains(html, "Timer page"),
		"Timer set.",
		"Setting the timer did not show the timer page.")

	env.Report.Infof("Waiting %s for the timers to fire...", s.Wait)
	select {
	case <-ctx.Done():
		return check.Wrap(check.ExitUnexpected, ctx.Err(), "wait for timers")
	case <-time.After(s.Wait):
	}

	html, ok = submitForm(env, page, "Refresh")
	fired := false
	if m := programmaticRe.FindStringSubmatch(html); ok && m != nil {
		fired = !strings.Contains(m[1], "never.")
		env.Report.Verbosef("programmatic timeout: %s", strings.TrimSpace(m[1]))
	}
	t.record(fired,
		"Programmatic timeout fired.",
		"Programmatic timeout still reads never.")
	t.record(ok && !strings.Contains(html, "The last automatic timeout was: never"),
		"Automatic timeout fired.",
		"Automatic timeout still reads never.")

	t.summary()
	return nil
}

// GuessNumber plays the number guessing game: a low guess uses up one try,
// repeating it is rejected, and reset restores every try.
type GuessNumber struct {
	info
}

// NewGuessNumber creates the guessnumber suite.
func NewGuessNumber() *GuessNumber {
	return &GuessNumber{info{
		name:        "guessnumber",
		description: "Number guessing game (browser): guess, invalid repeat, reset",
		envVar:      "GUESS_NUMBER_BASE_URL",
		defaultBase: "http://localhost:8080",
	}}
}

// Run implements suite.Suite. Exit code 1 when any check failed.
func (s *GuessNumber) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "GUESS_NUMBER_HOME_URI", "/guessnumber")
	if err != nil {
		return err
	}
	defer page.Close()

	const label = "Number:"
	t := &tally{report: env.Report}

	html, err := pageContent(page, home)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
	}
	t.record(err == nil && strings.Contains(html, "Guess My Number"),
		"Page loaded successfully and contains expected text.",
		"Page did not contain expected text.")

	html, ok := submitForm(env, page, "Guess", field{label, "1"})
	t.record(ok && strings.Contains(html, ">9<"),
		"First guess used one of ten tries.",
		"Remaining tries not decremented after the first guess.")

	html, ok = submitForm(env, page, "Guess", field{label, "1"})
	kept, err := page.InputValue(label)
	if err != nil {
		env.Report.Verbosef("read %q: %v", label, err)
	}
	t.record(ok && strings.Contains(html, "Invalid guess") && kept == "1",
		"Repeated guess rejected and kept in the field.",
		"Repeated guess was not rejected as invalid.")

	html, ok = submitForm(env, page, "Reset")
	t.record(ok && strings.Contains(html, ">10<"),
		"Reset restored ten tries.",
		"Reset did not restore the tries.")

	return t.result()
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	navRe   = regexp.MustCompile(`(?is)<nav\b.*?<a\b.*?</nav>`)
)

// CoffeeShop checks the landing page of the coffee shop and its
// navigation links.
type CoffeeShop struct {
	info
}

// NewCoffeeShop creates the coffee-shop suite.
func NewCoffeeShop() *CoffeeShop {
	return &CoffeeShop{info{
		name:        "coffee-shop",
		description: "Coffee shop (browser): title, About and Menu navigation, nav bar",
		envVar:      "COFFEE_SHOP_BASE_URL",
		defaultBase: "http://localhost:8080",
	}}
}

// Run implements suite.Suite. Exit code 1 when any check failed.
func (s *CoffeeShop) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "COFFEE_SHOP_HOME_URI", "/")
	if err != nil {
		return err
	}
	defer page.Close()

	t := &tally{report: env.Report}

	html, err := pageContent(page, home)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
	}
	title := ""
	if m := titleRe.FindStringSubmatch(html); m != nil {
		title = m[1]
	}
	t.record(err == nil && strings.Contains(strings.ToLower(title), "coffee") &&
		hasLink(html, "about") && hasLink(html, "menu"),
		"Homepage loaded with title and navigation links.",
		"Homepage title or navigation links missing.")

	for _, link := range []string{"About", "Menu"} {
		t.record(s.follow(env, page, home, link),
			"Navigated to the "+link+" section.",
			"Could not navigate to the "+link+" section.")
	}

	html, err = pageContent(page, home)
	t.record(err == nil && strings.Contains(strings.ToLower(html), "<body"),
		"Homepage banner content loaded.",
		"Homepage body did not load.")
	t.record(err == nil && navRe.MatchString(html),
		"Navigation menu present.",
		"Navigation menu missing.")

	return t.result()
}

// follow opens home and clicks the link named link.
func (s *CoffeeShop) follow(env *suite.Env, page browser.Page, home, link string) bool {
	if _, err := pageContent(page, home); err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
		return false
	}
	if err := page.ClickLink(link); err != nil {
		env.Report.Verbosef("click %s: %v", link, err)
		return false
	}
	return strings.Contains(strings.ToLower(currentContent(env, page)), "<body")
}

var anchorTextRe = regexp.MustCompile(`(?is)<a\b[^>]*>(.*?)</a>`)

// hasLink reports whether html has an anchor whose text contains text,
// ignoring case.
func hasLink(html, text string) bool {
	for _, m := range anchorTextRe.FindAllStringSubmatch(html, -1) {
		if strings.Contains(strings.ToLower(m[1]), strings.ToLower(text)) {
			return true
		}
	}
	return false
}
