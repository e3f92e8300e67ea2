// Package fixture serves an in-process stand-in for the demo applications
// the smoke suites target.
//
// One gin engine hosts every target on its own path, so a single base URL
// satisfies every suite:
//
//	/, /index.html, /main.xhtml      landing pages (DukeETF, WebsocketBot)
//	/resources/css/default.css       stylesheet
//	/dukeetf                         price ticker: WebSocket or long-poll
//	/websocketbot                    chat bot (WebSocket, JSON messages)
//	/echo                            WebSocket echo
//	/greeting, /helloworld           hello servlet and JAX-RS resource
//	/report                          mood servlet
//	/helloservice/HelloServiceBean   SOAP sayHello
//	/cart/api/cart/...               stateful cart REST API (cookie session)
//	/counter, /converter             hit counter and currency converter forms
//	/simplegreeting, /interceptor/   greeting forms
//	/guessnumber                     number guessing game (one shared game)
//	/timersession                    programmatic and automatic timers
//	/coffee-shop/                    coffee shop landing page
//	/standalone/greet                JSON greeting
//	/jaxrs-customer/...              customer pages and CRUD REST resource
//	/rsvp/...                        event invitations and responses
//	/roster, /roster/q/health/...    roster landing page and health checks
//	/orders, /lineItems              order list, create and delete form
//
// The ticker moves price by 0.5 and volume by 2500 on every tick, so two
// samples taken a tick apart always differ.
//
// Usage:
//
//	srv := fixture.New(fixture.WithTickInterval(50 * time.Millisecond))
//	defer srv.Close()
//	ts := httptest.NewServer(srv.Handler())
//
// or, as a standalone process (see `smoke fixture`):
//
//	err := srv.ListenAndServe(ctx, ":8080")
package fixture
