package fixture

import (
	"net/http"
	"slices"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "JSESSIONID"
	sessionKey    = "cartSession"
)

type cart struct {
	customerName string
	customerID   string
	books        []string
}

// cartStore keeps one cart per session cookie, like a stateful session bean.
type cartStore struct {
	mu    sync.Mutex
	carts map[string]*cart
}

func newCartStore() *cartStore {
	return &cartStore{carts: make(map[string]*cart)}
}

// session resolves the session id from the cookie, issuing a new one when
// absent.
func (cs *cartStore) session(c *gin.Context) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		id = uuid.NewString()
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
		})
	}
	c.Set(sessionKey, id)
	c.Next()
}

// with runs fn on the session's cart under the store lock. A nil cart means
// the session has not been initialized.
func (cs *cartStore) with(c *gin.Context, fn func(id string, ct *cart)) {
	id := c.GetString(sessionKey)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	fn(id, cs.carts[id])
}

type initializeRequest struct {
	CustomerName string `json:"customerName"`
	CustomerID   string `json:"customerId"`
}

func (s *Server) cartHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (s *Server) cartInitialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.CustomerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerName is required"})
		return
	}

	id := c.GetString(sessionKey)
	s.carts.mu.Lock()
	s.carts.carts[id] = &cart{customerName: req.CustomerName, customerID: req.CustomerID}
	s.carts.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "Cart initialized for " + req.CustomerName})
}

func (s *Server) cartAddBook(c *gin.Context) {
	title := c.Param("title")
	s.carts.with(c, func(_ string, ct *cart) {
		if ct == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart not initialized"})
			return
		}
		ct.books = append(ct.books, title)
		c.JSON(http.StatusOK, gin.H{"title": title})
	})
}

func (s *Server) cartBooks(c *gin.Context) {
	s.carts.with(c, func(_ string, ct *cart) {
		if ct == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart not initialized"})
			return
		}
		books := slices.Clone(ct.books)
		if books == nil {
			books = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
	})
}

func (s *Server) cartRemoveBook(c *gin.Context) {
	title := c.Param("title")
	s.carts.with(c, func(_ string, ct *cart) {
		if ct == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart not initialized"})
			return
		}
		i := slices.Index(ct.books, title)
		if i < 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": title + " not in cart."})
			return
		}
		ct.books = slices.Delete(ct.books, i, i+1)
		c.JSON(http.StatusOK, gin.H{"title": title})
	})
}

func (s *Server) cartClear(c *gin.Context) {
	s.carts.with(c, func(id string, _ *cart) {
		delete(s.carts.carts, id)
	})
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
