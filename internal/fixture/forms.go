package fixture

import (
	"fmt"
	"html"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

func htmlPage(c *gin.Context, body string) {
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(body))
}

const simpleGreetingHTML = `<!DOCTYPE html>
<html>
<head><title>Simple Greeting</title></head>
<body>
<h1>Simple Greeting</h1>
<form method="post" action="simplegreeting">
<label for="name">Enter your name:</label>
<input type="text" id="name" name="name" value="%s">
<input type="submit" name="action" value="Say Hello">
</form>
<p>%s</p>
</body>
</html>
`

func (s *Server) simpleGreetingForm(c *gin.Context) {
	htmlPage(c, fmt.Sprintf(simpleGreetingHTML, "", ""))
}

func (s *Server) simpleGreet(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	msg := ""
	if name != "" {
		msg = "Hi, " + html.EscapeString(name) + "!"
	}
	htmlPage(c, fmt.Sprintf(simpleGreetingHTML, html.EscapeString(name), msg))
}

const interceptorFormHTML = `<!DOCTYPE html>
<html>
<head><title>Interceptor Example</title></head>
<body>
<form method="post" action="">
<label for="name">Enter your name:</label>
<input type="text" id="name" name="name">
<input type="submit" name="action" value="Submit">
</form>
</body>
</html>
`

func (s *Server) interceptorForm(c *gin.Context) {
	htmlPage(c, interceptorFormHTML)
}

// interceptorGreet answers with the name lower-cased, the way the method
// interceptor rewrites the bean property before the response page reads it.
func (s *Server) interceptorGreet(c *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(c.PostForm("name")))
	htmlPage(c, fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Interceptor Example - Response</title></head>
<body>
<p>Hello, %s.</p>
<a href="./">Back</a>
</body>
</html>
`, html.EscapeString(name)))
}

// Guess number bounds.
const (
	guessMin     = 0
	guessMax     = 100
	guessBudget  = 10
	guessPattern = "Guess My Number"
)

// guessGame is the single game shared by every client of the fixture.
type guessGame struct {
	mu        sync.Mutex
	number    int
	min, max  int
	remaining int
}

func newGuessGame() *guessGame {
	g := &guessGame{}
	g.reset()
	return g
}

// reset picks a new secret. The secret is never the lowest value so a first
// guess of guessMin+1 is always too low.
func (g *guessGame) reset() {
	g.number = guessMin + 2 + rand.IntN(guessMax-guessMin-1)
	g.min = guessMin
	g.max = guessMax
	g.remaining = guessBudget
}

// guess applies one guess and returns the message to show.
func (g *guessGame) guess(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < g.min || n > g.max {
		return "Invalid guess"
	}
	if g.remaining <= 0 {
		return "No guesses left!"
	}
	g.remaining--
	switch {
	case n == g.number:
		return "Correct!"
	case n < g.number:
		g.min = n + 1
		return "Higher!"
	default:
		g.max = n - 1
		return "Lower!"
	}
}

func (g *guessGame) render(value, msg string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s</h1>
<p>I'm thinking of a number from <span>%d</span> to <span>%d</span>. You have <span>%d</span> guesses remaining.</p>
<form method="post" action="guessnumber">
<label for="number">Number:</label>
<input type="text" id="number" name="number" value="%s">
<input type="submit" name="action" value="Guess">
<input type="submit" name="action" value="Reset">
</form>
<p class="message">%s</p>
</body>
</html>
`, guessPattern, guessPattern, g.min, g.max, g.remaining, html.EscapeString(value), msg)
}

// guessForm starts a new game on every visit.
func (s *Server) guessForm(c *gin.Context) {
	g := s.guess
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
	htmlPage(c, g.render("", ""))
}

func (s *Server) guessSubmit(c *gin.Context) {
	g := s.guess
	g.mu.Lock()
	defer g.mu.Unlock()

	if c.PostForm("action") == "Reset" {
		g.reset()
		htmlPage(c, g.render("", ""))
		return
	}
	value := c.PostForm("number")
	msg := g.guess(value)
	htmlPage(c, g.render(value, msg))
}

// timerSession reports when the programmatic and automatic timers last
// fired. The automatic timer fires every automatic interval after start;
// the programmatic one fires once, a delay after it is set.
type timerSession struct {
	mu           sync.Mutex
	started      time.Time
	automatic    time.Duration
	delay        time.Duration
	programmedAt time.Time
	now          func() time.Time
}

func newTimerSession(cfg Config) *timerSession {
	return &timerSession{
		started:   time.Now(),
		automatic: cfg.AutomaticTimeout,
		delay:     cfg.ProgrammaticTimeout,
		now:       time.Now,
	}
}

func (ts *timerSession) set() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.programmedAt = ts.now()
}

// last returns the rendered times of the last programmatic and automatic
// timeouts, "never" for a timer that has not fired.
func (ts *timerSession) last() (programmatic, automatic string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	programmatic, automatic = "never", "never"
	if !ts.programmedAt.IsZero() {
		if fired := ts.programmedAt.Add(ts.delay); !fired.After(now) {
			programmatic = fired.Format(time.RFC1123)
		}
	}
	if ts.automatic > 0 {
		if n := now.Sub(ts.started) / ts.automatic; n > 0 {
			automatic = ts.started.Add(n * ts.automatic).Format(time.RFC1123)
		}
	}
	return programmatic, automatic
}

func (ts *timerSession) render() string {
	programmatic, automatic := ts.last()
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Timer Session Bean Example</title></head>
<body>
<h1>Timer page</h1>
<p>The last programmatic timeout was: %s.</p>
<p>The last automatic timeout was: %s</p>
<form method="post" action="timersession">
<input type="submit" name="action" value="Set Timer">
<input type="submit" name="action" value="Refresh">
</form>
</body>
</html>
`, programmatic, automatic)
}

func (s *Server) timerPage(c *gin.Context) {
	htmlPage(c, s.timers.render())
}

func (s *Server) timerAction(c *gin.Context) {
	if c.PostForm("action") == "Set Timer" {
		s.timers.set()
	}
	htmlPage(c, s.timers.render())
}

const coffeeShopHTML = `<!DOCTYPE html>
<html>
<head><title>Coffee Shop</title></head>
<body>
<nav>
<a href="#about">About</a>
<a href="#menu">Menu</a>
</nav>
<section class="banner"><h1>Fresh coffee, brewed to order</h1></section>
<section id="about"><h2>About</h2><p>A small shop serving espresso since 2008.</p></section>
<section id="menu"><h2>Menu</h2>
<ul><li>Espresso</li><li>Latte</li><li>Cappuccino</li></ul>
</section>
</body>
</html>
`

func (s *Server) coffeeShop(c *gin.Context) {
	htmlPage(c, coffeeShopHTML)
}
