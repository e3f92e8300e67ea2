package fixture

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Server hosts every fixture target on one gin engine.
type Server struct {
	cfg    Config
	logger *slog.Logger
	engine *gin.Engine

	ticker   *ticker
	bots     *botHub
	carts    *cartStore
	guess    *guessGame
	timers   *timerSession
	orders   *orderStore

	customers *customerStore
	rsvp      *rsvpStore

	hits     atomic.Int64
	upgrader websocket.Upgrader
	sockets  connSet

	closeOnce sync.Once
}

// New creates a Server and starts its ticker. Call Close when done.
func New(opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fixture")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		ticker: newTicker(cfg, logger),
		bots:   newBotHub(logger),
		carts:  newCartStore(),
		guess:  newGuessGame(),
		timers: newTimerSession(cfg),
		orders: newOrderStore(),

		customers: newCustomerStore(),
		rsvp:      newRSVPStore(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()

	s.ticker.start(context.Background())
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.index)
	r.GET("/index.html", s.index)
	r.GET("/main.xhtml", s.mainPage)
	r.GET("/resources/css/default.css", s.stylesheet)

	r.GET("/dukeetf", s.dukeETF)
	r.GET("/websocketbot", s.websocketBot)
	r.GET("/echo", s.echo)

	r.GET("/greeting", s.greeting)
	r.GET("/helloworld", s.helloWorld)
	r.GET("/report", s.report)
	r.POST("/helloservice/HelloServiceBean", s.sayHello)

	r.GET("/counter", s.counter)
	r.GET("/converter", s.converterForm)
	r.POST("/converter", s.convert)

	cart := r.Group("/cart/api/cart")
	cart.Use(s.carts.session)
	cart.GET("/health", s.cartHealth)
	cart.POST("/initialize", s.cartInitialize)
	cart.POST("/books/:title", s.cartAddBook)
	cart.GET("/books", s.cartBooks)
	cart.DELETE("/books/:title", s.cartRemoveBook)
	cart.DELETE("", s.cartClear)

	r.GET("/simplegreeting", s.simpleGreetingForm)
	r.POST("/simplegreeting", s.simpleGreet)
	r.GET("/interceptor/", s.interceptorForm)
	r.POST("/interceptor/", s.interceptorGreet)
	r.GET("/guessnumber", s.guessForm)
	r.POST("/guessnumber", s.guessSubmit)
	r.GET("/timersession", s.timerPage)
	r.POST("/timersession", s.timerAction)
	r.GET("/coffee-shop/", s.coffeeShop)

	r.GET("/standalone/greet", s.standaloneGreet)

	customer := r.Group("/jaxrs-customer")
	customer.GET("/index.xhtml", s.customerPage("Customer"))
	customer.GET("/list.xhtml", s.customerPage("Customer List"))
	customer.GET("/error.xhtml", s.customerPage("Error"))
	customer.GET("/webapi/Customer/all", s.customerAll)
	customer.POST("/webapi/Customer", s.customerCreate)
	customer.GET("/webapi/Customer/:id", s.customerGet)
	customer.PUT("/webapi/Customer/:id", s.customerUpdate)
	customer.DELETE("/webapi/Customer/:id", s.customerDelete)

	rsvp := r.Group("/rsvp")
	rsvp.GET("/index.xhtml", s.customerPage("RSVP"))
	rsvp.GET("/resources/css/default.css", s.stylesheet)
	rsvp.GET("/webapi/status/all", s.rsvpAll)
	rsvp.GET("/webapi/status/:event", s.rsvpStatus)
	rsvp.GET("/webapi/:event/:person", s.rsvpGetResponse)
	rsvp.POST("/webapi/:event/:person", s.rsvpSetResponse)

	r.GET("/roster", s.rosterHome)
	r.GET("/roster/q/health", s.rosterHealth)
	r.GET("/roster/q/health/live", s.rosterHealth)
	r.GET("/roster/q/health/ready", s.rosterHealth)

	r.GET("/orders", s.ordersPage)
	r.POST("/orders", s.ordersSubmit)
	r.GET("/lineItems", s.lineItems)
	r.GET("/css/default.css", s.stylesheet)
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Handler returns the HTTP handler serving every target.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Quote returns the current ticker quote.
func (s *Server) Quote() Quote {
	q, _ := s.ticker.current()
	return q
}

// Close stops the ticker and disconnects every WebSocket session.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.ticker.stop()
		s.sockets.closeAll()
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and closes the Server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.sockets.closeAll()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	s.logger.Info("fixture stopped")
	return err
}
