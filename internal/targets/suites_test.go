package targets

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// route is a fixed response for routeServer.
type route struct {
	status      int
	contentType string
	body        string
}

func routeServer(t *testing.T, routes map[string]route) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if rt.contentType != "" {
			w.Header().Set("Content-Type", rt.contentType)
		}
		w.WriteHeader(rt.status)
		w.Write([]byte(rt.body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// closedURL returns the URL of a server that is no longer listening.
func closedURL() string {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	return ts.URL
}

func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/index.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>WebsocketBot WebSocket</html>"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestSuites_ExitCodes(t *testing.T) {
	ok := func(body string) route { return route{status: 200, contentType: "text/html", body: body} }

	tests := []struct {
		name  string
		suite suite.Suite
		base  func(t *testing.T) string
		want  int
	}{
		{
			name:  "hello-servlet name not echoed",
			suite: NewHelloServlet(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/greeting": ok("Hello, stranger!")}).URL
			},
			want: 2,
		},
		{
			name:  "hello-servlet missing name accepted",
			suite: NewHelloServlet(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/greeting": ok("Hello, SmokeUser!")}).URL
			},
			want: 3,
		},
		{
			name:  "hello-servlet network error",
			suite: NewHelloServlet(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  4,
		},
		{
			name:  "jaxrs-hello wrong content type",
			suite: NewJaxrsHello(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/helloworld": {status: 200, contentType: "application/json", body: "{}"},
				}).URL
			},
			want: 2,
		},
		{
			name:  "jaxrs-hello network error",
			suite: NewJaxrsHello(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  9,
		},
		{
			name:  "helloservice wrong greeting",
			suite: NewHelloService(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/": {status: 200, contentType: "text/xml", body: "<return>Hi</return>"}}).URL + "/"
			},
			want: 1,
		},
		{
			name:  "helloservice http error",
			suite: NewHelloService(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL + "/missing" },
			want:  1,
		},
		{
			name:  "helloservice connection error",
			suite: NewHelloService(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  1,
		},
		{
			name:  "mood missing report",
			suite: NewMood(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL },
			want:  2,
		},
		{
			name:  "mood network error",
			suite: NewMood(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  9,
		},
		{
			name:  "dukeetf main page missing",
			suite: NewDukeETF(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL },
			want:  2,
		},
		{
			name:  "dukeetf long-poll empty",
			suite: NewDukeETF(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/app/main.xhtml": ok("<html/>"),
					"/app/dukeetf":    ok("   "),
				}).URL + "/app"
			},
			want: 4,
		},
		{
			name:  "dukeetf values unchanged",
			suite: NewDukeETF(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/main.xhtml": ok("<html/>"),
					"/dukeetf":    {status: 200, contentType: "text/plain", body: "100.00 / 300000"},
				}).URL
			},
			want: 6,
		},
		{
			name:  "dukeetf unparseable sample",
			suite: NewDukeETF(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/main.xhtml": ok("<html/>"),
					"/dukeetf":    ok("market closed"),
				}).URL
			},
			want: 6,
		},
		{
			name:  "dukeetf2 index missing",
			suite: NewDukeETF2(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL },
			want:  2,
		},
		{
			name:  "dukeetf2 handshake refused",
			suite: NewDukeETF2(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/index.html": ok("<html/>")}).URL
			},
			want: 5,
		},
		{
			name:  "dukeetf2 values unchanged",
			suite: NewDukeETF2(),
			base: func(t *testing.T) string {
				return mockWSServer(t, func(conn *websocket.Conn) {
					for i := 0; i < 2; i++ {
						conn.WriteMessage(websocket.TextMessage, []byte("100.00 / 300000"))
					}
					conn.ReadMessage()
				}).URL
			},
			want: 5,
		},
		{
			name:  "dukeetf2 unparseable frame",
			suite: NewDukeETF2(),
			base: func(t *testing.T) string {
				return mockWSServer(t, func(conn *websocket.Conn) {
					conn.WriteMessage(websocket.TextMessage, []byte("hello"))
					conn.ReadMessage()
				}).URL
			},
			want: 5,
		},
		{
			name:  "websocketbot index missing",
			suite: NewWebSocketBot(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL },
			want:  2,
		},
		{
			name:  "websocketbot handshake refused",
			suite: NewWebSocketBot(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/index.html": ok("WebsocketBot WebSocket")}).URL
			},
			want: 3,
		},
		{
			name:  "echo altered reply",
			suite: NewEcho(),
			base: func(t *testing.T) string {
				return mockWSServer(t, func(conn *websocket.Conn) {
					for {
						_, msg, err := conn.ReadMessage()
						if err != nil {
							return
						}
						conn.WriteMessage(websocket.TextMessage, []byte(strings.ToUpper(string(msg))))
					}
				}).URL
			},
			want: 5,
		},
		{
			name:  "echo server gone",
			suite: NewEcho(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  5,
		},
		{
			name:  "standalone wrong message",
			suite: NewStandalone(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/greet": {status: 200, contentType: "application/json", body: `{"message":"Hello"}`},
				}).URL
			},
			want: 1,
		},
		{
			name:  "standalone network error",
			suite: NewStandalone(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  1,
		},
		{
			name:  "jaxrs-customer index missing",
			suite: NewJaxrsCustomer(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL },
			want:  2,
		},
		{
			name:  "jaxrs-customer list failed",
			suite: NewJaxrsCustomer(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/index.xhtml":         ok("<html>Customer</html>"),
					"/webapi/Customer/all": {status: 500, body: "boom"},
				}).URL
			},
			want: 3,
		},
		{
			name:  "jaxrs-customer network error",
			suite: NewJaxrsCustomer(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  9,
		},
		{
			name:  "jaxrs-rsvp event list failed",
			suite: NewJaxrsRSVP(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/index.xhtml":       ok("<html>RSVP</html>"),
					"/webapi/status/all": {status: 500, body: "boom"},
				}).URL
			},
			want: 3,
		},
		{
			name:  "jaxrs-rsvp listed event missing",
			suite: NewJaxrsRSVP(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{
					"/index.xhtml":       ok("<html>RSVP</html>"),
					"/webapi/status/all": {status: 200, contentType: "application/json", body: `[{"id":7,"name":"JavaOne"}]`},
				}).URL
			},
			want: 4,
		},
		{
			name:  "roster application error",
			suite: NewRoster(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/": {status: 500, body: "boom"}}).URL
			},
			want: 2,
		},
		{
			name:  "roster health endpoints failing",
			suite: NewRoster(),
			base: func(t *testing.T) string {
				down := route{status: 500, body: "down"}
				return routeServer(t, map[string]route{
					"/":                ok("<html>Roster</html>"),
					"/q/health/live":   down,
					"/q/health/ready":  down,
					"/q/health":        down,
					"/actuator/health": down,
				}).URL
			},
			want: 2,
		},
		{
			name:  "roster network error",
			suite: NewRoster(),
			base:  func(t *testing.T) string { return closedURL() },
			want:  9,
		},
		{
			name:  "order list missing",
			suite: NewOrder(),
			base:  func(t *testing.T) string { return routeServer(t, nil).URL },
			want:  2,
		},
		{
			name:  "order without browser",
			suite: NewOrder(),
			base: func(t *testing.T) string {
				return routeServer(t, map[string]route{"/orders": ok("<html>Order</html>")}).URL
			},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(tt.base(t))
			te.Timeouts.LongPoll = time.Second
			te.Timeouts.WS = time.Second

			if code := te.run(t, tt.suite); code != tt.want {
				te.dump(t)
				t.Fatalf("exit code = %d, want %d", code, tt.want)
			}
			if !strings.Contains(te.errOut.String(), "[FAIL]") {
				t.Error("missing [FAIL] line on stderr")
			}
		})
	}
}

func TestMood_SoftChecksWarn(t *testing.T) {
	ts := routeServer(t, map[string]route{"/report": {status: 200, contentType: "text/plain", body: "nothing here"}})
	te := newTestEnv(ts.URL)

	if code := te.run(t, NewMood()); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0", code)
	}
	if n := te.Report.Warnings(); n != 4 {
		te.dump(t)
		t.Errorf("warnings = %d, want 4", n)
	}
}

func TestHelloServlet_UsesSmokeName(t *testing.T) {
	var seen string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("name required"))
			return
		}
		seen = name
		w.Write([]byte("Hello, " + name))
	}))
	defer ts.Close()

	te := newTestEnv(ts.URL)
	te.vars["SMOKE_NAME"] = "Grace Hopper"

	if code := te.run(t, NewHelloServlet()); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d", code)
	}
	if seen != "Grace Hopper" {
		t.Errorf("server saw name %q, want %q", seen, "Grace Hopper")
	}
	if te.Report.Warnings() != 0 {
		t.Errorf("unexpected warnings: %s", te.errOut.String())
	}
}

func TestCart_StepFailures(t *testing.T) {
	health := route{status: 200, contentType: "application/json", body: `{"status":"UP"}`}
	okJSON := func(body string) route { return route{status: 200, contentType: "application/json", body: body} }

	tests := []struct {
		name   string
		routes map[string]route
		want   int
	}{
		{
			name:   "health down",
			routes: map[string]route{"/api/cart/health": okJSON(`{"status":"DOWN"}`)},
			want:   cartExitHealth,
		},
		{
			name: "initialize rejected",
			routes: map[string]route{
				"/api/cart/health":     health,
				"/api/cart/initialize": {status: 500, body: "boom"},
			},
			want: cartExitInitialize,
		},
		{
			name: "initialize without message",
			routes: map[string]route{
				"/api/cart/health":     health,
				"/api/cart/initialize": okJSON(`{}`),
			},
			want: cartExitInitialize,
		},
		{
			name: "add book fails",
			routes: map[string]route{
				"/api/cart/health":     health,
				"/api/cart/initialize": okJSON(`{"message":"ok"}`),
			},
			want: cartExitAdd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := routeServer(t, tt.routes)
			s := NewCart()
			s.Fallbacks = nil
			te := newTestEnv(ts.URL + "/api/cart")

			if code := te.run(t, s); code != tt.want {
				te.dump(t)
				t.Fatalf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestCart_NoHealthyBase(t *testing.T) {
	s := NewCart()
	s.Fallbacks = nil
	te := newTestEnv(closedURL())

	if code := te.run(t, s); code != cartExitHealth {
		te.dump(t)
		t.Fatalf("exit code = %d, want %d", code, cartExitHealth)
	}
	if !strings.Contains(te.errOut.String(), "No base validated") {
		t.Errorf("missing fallback warning:\n%s", te.errOut.String())
	}
}

func TestCart_FallbackDiscovery(t *testing.T) {
	ts := newFixture(t)
	s := NewCart()
	s.Fallbacks = []string{closedURL() + "/cart/api/cart", ts.URL + "/cart/api/cart"}
	te := newTestEnv(closedURL())

	if code := te.run(t, s); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(te.out.String(), "Base discovered: "+ts.URL) {
		t.Errorf("fallback not discovered:\n%s", te.out.String())
	}
}

func TestWebSocketBot_SilentBot(t *testing.T) {
	ts := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := NewWebSocketBot()
	s.PollWindow = 50 * time.Millisecond
	s.QuietWait = 100 * time.Millisecond
	te := newTestEnv(ts.URL)
	te.Timeouts.WS = 200 * time.Millisecond

	if code := te.run(t, s); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0 (answers are soft)", code)
	}
	if !strings.Contains(te.errOut.String(), "WebSocket functionality issues") {
		t.Errorf("missing overall warning:\n%s", te.errOut.String())
	}
	// join, greeting, five questions and the overall result.
	if n := te.Report.Warnings(); n != 8 {
		t.Errorf("warnings = %d, want 8", n)
	}
}

func TestWebSocketBot_ChattyBot(t *testing.T) {
	ts := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			// Duke answers everything, including untargeted chat.
			reply := `{"type":"chat","name":"Duke","target":"TestUser","message":"` + chattyReply(string(msg)) + `"}`
			if strings.Contains(string(msg), `"join"`) {
				conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"info","info":"TestUser has joined the chat"}`))
			}
			conn.WriteMessage(websocket.TextMessage, []byte(reply))
		}
	})

	s := NewWebSocketBot()
	s.PollWindow = 50 * time.Millisecond
	s.QuietWait = 200 * time.Millisecond
	te := newTestEnv(ts.URL)
	te.Timeouts.WS = 500 * time.Millisecond

	if code := te.run(t, s); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(te.errOut.String(), "Duke replied to an untargeted message") {
		te.dump(t)
		t.Error("untargeted reply not flagged")
	}
}

func TestWebSocketBot_ServerClosesMidConversation(t *testing.T) {
	ts := mockWSServer(t, func(conn *websocket.Conn) {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"info","info":"TestUser has joined the chat"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","name":"Duke","target":"TestUser","message":"Hi there!!"}`))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		time.Sleep(500 * time.Millisecond)
	})

	s := NewWebSocketBot()
	s.PollWindow = 50 * time.Millisecond
	s.QuietWait = 100 * time.Millisecond
	te := newTestEnv(ts.URL)
	te.Timeouts.WS = time.Second

	if code := te.run(t, s); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0 (a closed conversation is soft)", code)
	}
	errOut := te.errOut.String()
	for _, want := range []string{"Conversation ended early", "WebSocket functionality issues"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}
	if !strings.Contains(te.out.String(), "Duke greeted the user") {
		t.Errorf("greeting before close should pass:\n%s", te.out.String())
	}
}

func chattyReply(msg string) string {
	for _, q := range botQuestions {
		if strings.Contains(msg, q.Ask) {
			return q.Expect
		}
	}
	return "Hi there!!"
}

func TestCounter_Failures(t *testing.T) {
	page := func(n string) func() (string, error) {
		return func() (string, error) {
			return "<p>This page has been accessed " + n + " time(s).</p>", nil
		}
	}

	tests := []struct {
		name    string
		browser browser.Launcher
	}{
		{
			name: "count not incremented",
			browser: &browser.Fake{Pages: map[string]func() (string, error){
				"http://counter.test/counter": page("4"),
			}},
		},
		{
			name: "page missing",
			browser: &browser.Fake{Pages: map[string]func() (string, error){
				"http://counter.test/counter": func() (string, error) { return "", errors.New("net::ERR_CONNECTION_REFUSED") },
			}},
		},
		{
			name:    "no browser",
			browser: browser.Unavailable{Err: browser.ErrNotConfigured},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv("http://counter.test")
			te.Browser = tt.browser

			if code := te.run(t, NewCounter()); code != 1 {
				te.dump(t)
				t.Fatalf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestCounter_HomeURIFromEnv(t *testing.T) {
	visits := 0
	fake := &browser.Fake{Pages: map[string]func() (string, error){
		"http://counter.test/app/hits": func() (string, error) {
			visits++
			return "This page has been accessed " + strconv.Itoa(visits) + " time(s).", nil
		},
	}}
	te := newTestEnv("http://counter.test")
	te.Browser = fake
	te.vars["COUNTER_HOME_URI"] = "/app/hits"

	if code := te.run(t, NewCounter()); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(te.out.String(), "Summary: 2/2 tests passed.") {
		t.Errorf("missing summary:\n%s", te.out.String())
	}
	if fake.Opened() != 1 || fake.Closed() != 1 {
		t.Errorf("pages opened=%d closed=%d, want 1/1", fake.Opened(), fake.Closed())
	}
}

func TestConverter_WrongResult(t *testing.T) {
	fake := &browser.Fake{
		Pages: map[string]func() (string, error){
			"http://converter.test/converter": func() (string, error) {
				return `<p>Enter a dollar amount to convert:</p><input title="Amount">`, nil
			},
		},
		OnClick: func(pageURL, button string, fields map[string]string) (string, error) {
			return "<p>5 dollars are 500.00 yen.</p>", nil
		},
	}
	te := newTestEnv("http://converter.test")
	te.Browser = fake

	if code := te.run(t, NewConverter()); code != 1 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(te.out.String(), "Summary: 1/2 tests passed.") {
		t.Errorf("missing summary:\n%s", te.out.String())
	}
}

// staticBrowser serves home and answers every click with the next page of
// clicks, repeating the last one.
func staticBrowser(homeURL, home string, clicks ...string) *browser.Fake {
	n := 0
	return &browser.Fake{
		Pages: map[string]func() (string, error){
			homeURL: func() (string, error) { return home, nil },
		},
		OnClick: func(pageURL, button string, fields map[string]string) (string, error) {
			page := clicks[min(n, len(clicks)-1)]
			n++
			return page, nil
		},
	}
}

func TestInterceptor_FailedChecksOnlyReport(t *testing.T) {
	te := newTestEnv("http://interceptor.test")
	te.Browser = staticBrowser("http://interceptor.test/",
		`<label for="name">Enter your name:</label><input id="name">`,
		"<p>Hello, TEST USER.</p>")

	if code := te.run(t, NewInterceptor()); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(te.out.String(), "Summary: 2/3 tests passed.") {
		t.Errorf("missing summary:\n%s", te.out.String())
	}
	if !strings.Contains(te.errOut.String(), "Response did not contain the lower-cased name.") {
		t.Errorf("missing failed check:\n%s", te.errOut.String())
	}
}

func TestTimerSession_TimersNeverFire(t *testing.T) {
	const stuck = `<h1>Timer page</h1><p>The last programmatic timeout was: never.</p>` +
		`<p>The last automatic timeout was: never</p>`

	s := NewTimerSession()
	s.Wait = 10 * time.Millisecond
	te := newTestEnv("http://timers.test")
	te.Browser = staticBrowser("http://timers.test/timersession", stuck, stuck)

	if code := te.run(t, s); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(te.out.String(), "Summary: 2/4 tests passed.") {
		te.dump(t)
		t.Errorf("missing summary")
	}
}

func TestGuessNumber_RepeatedGuessAccepted(t *testing.T) {
	const form = `<h1>Guess My Number</h1><label for="number">Number:</label>`

	te := newTestEnv("http://guess.test")
	te.Browser = staticBrowser("http://guess.test/guessnumber", form,
		form+"<span>9</span>", form+"<span>8</span>", form+"<span>10</span>")

	if code := te.run(t, NewGuessNumber()); code != 1 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(te.out.String(), "Summary: 3/4 tests passed.") {
		t.Errorf("missing summary:\n%s", te.out.String())
	}
}

func TestCoffeeShop_MissingNavigation(t *testing.T) {
	te := newTestEnv("http://coffee.test")
	te.Browser = staticBrowser("http://coffee.test/",
		"<html><head><title>Coffee Shop</title></head><body><h1>Welcome</h1></body></html>")

	if code := te.run(t, NewCoffeeShop()); code != 1 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(te.out.String(), "Summary: 1/5 tests passed.") {
		t.Errorf("missing summary:\n%s", te.out.String())
	}
}

func TestJaxrsCustomer_CreateFailureOnlyWarns(t *testing.T) {
	ts := routeServer(t, map[string]route{
		"/index.xhtml":         {status: 200, contentType: "text/html", body: "<html>Customer</html>"},
		"/webapi/Customer/all": {status: 200, contentType: "application/json", body: "[]"},
	})
	te := newTestEnv(ts.URL)

	if code := te.run(t, NewJaxrsCustomer()); code != 0 {
		te.dump(t)
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(te.errOut.String(), "Customer creation failed; skipping remaining CRUD tests") {
		te.dump(t)
		t.Error("missing skip warning")
	}
}

func TestCreatedCustomerID(t *testing.T) {
	tests := []struct {
		name string
		resp *probe.Response
		want string
	}{
		{
			name: "location header",
			resp: &probe.Response{Header: http.Header{"Location": {"http://app/webapi/Customer/42"}}},
			want: "42",
		},
		{
			name: "json body",
			resp: &probe.Response{ContentType: "application/json", Body: `{"id":7,"firstname":"John"}`, Header: http.Header{}},
			want: "7",
		},
		{
			name: "xml body",
			resp: &probe.Response{ContentType: "application/xml", Body: `<customer id="9"><firstname>John</firstname></customer>`, Header: http.Header{}},
			want: "9",
		},
		{
			name: "nothing",
			resp: &probe.Response{ContentType: "text/plain", Body: "created", Header: http.Header{}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createdCustomerID(tt.resp); got != tt.want {
				t.Errorf("createdCustomerID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventIDsFromJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []int
	}{
		{"list", `[{"id":3},{"id":1},{"id":3}]`, []int{3, 1}},
		{"string ids", `[{"id":"5"}]`, []int{5}},
		{"skips people", `[{"id":1,"responses":[{"id":9,"person":{"id":8}}]}]`, []int{1}},
		{"nested location", `{"events":[{"id":2}],"venue":{"id":4}}`, []int{4}},
		{"not json", `<events/>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eventIDsFromJSON(tt.body)
			if !slices.Equal(got, tt.want) {
				t.Errorf("eventIDsFromJSON(%s) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}
