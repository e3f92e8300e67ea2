package fixture

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

func (s *Server) standaloneGreet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Greetings!"})
}

// Customer is one record of the customer resource.
type Customer struct {
	ID        int      `json:"id"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   *Address `json:"address,omitempty"`
}

// Address is the postal address of a Customer.
type Address struct {
	Number   int    `json:"number"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type customerStore struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]Customer
}

func newCustomerStore() *customerStore {
	cs := &customerStore{nextID: 1, byID: make(map[int]Customer)}
	cs.add(Customer{Firstname: "Duke", Lastname: "Java", Email: "duke@example.com"})
	return cs
}

// add stores c under a new id. Callers hold no lock.
func (cs *customerStore) add(c Customer) Customer {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c.ID = cs.nextID
	cs.nextID++
	cs.byID[c.ID] = c
	return c
}

func (cs *customerStore) all() []Customer {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]Customer, 0, len(cs.byID))
	for _, c := range cs.byID {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Customer) int { return a.ID - b.ID })
	return out
}

func customerID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (s *Server) customerPage(title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		htmlPage(c, fmt.Sprintf("<!DOCTYPE html>\n<html><head><title>%s</title></head><body><h1>%s</h1></body></html>\n", title, title))
	}
}

func (s *Server) customerAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.customers.all())
}

func (s *Server) customerCreate(c *gin.Context) {
	var in Customer
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer"})
		return
	}
	created := s.customers.add(in)
	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimRight(c.Request.URL.Path, "/"), created.ID))
	c.Status(http.StatusCreated)
}

func (s *Server) customerGet(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	s.customers.mu.Lock()
	cust, found := s.customers.byID[id]
	s.customers.mu.Unlock()
	if !found {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (s *Server) customerUpdate(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var in Customer
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer"})
		return
	}

	s.customers.mu.Lock()
	defer s.customers.mu.Unlock()
	if _, found := s.customers.byID[id]; !found {
		c.Status(http.StatusNotFound)
		return
	}
	in.ID = id
	s.customers.byID[id] = in
	c.Status(http.StatusNoContent)
}

func (s *Server) customerDelete(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	s.customers.mu.Lock()
	defer s.customers.mu.Unlock()
	if _, found := s.customers.byID[id]; !found {
		c.Status(http.StatusNotFound)
		return
	}
	delete(s.customers.byID, id)
	c.Status(http.StatusNoContent)
}

// RSVP response states.
const (
	rsvpNotResponded = "NOT_RESPONDED"
	rsvpAttending    = "ATTENDING"
	rsvpNotAttending = "NOT_ATTENDING"
	rsvpMaybe        = "MAYBE_ATTENDING"
)

// rsvpStates maps the label posted by the client to the stored state.
var rsvpStates = map[string]string{
	"Attending":      rsvpAttending,
	"Not attending":  rsvpNotAttending,
	"Maybe":          rsvpMaybe,
	"Not responded":  rsvpNotResponded,
	rsvpAttending:    rsvpAttending,
	rsvpNotAttending: rsvpNotAttending,
	rsvpMaybe:        rsvpMaybe,
	rsvpNotResponded: rsvpNotResponded,
}

type rsvpPerson struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type rsvpResponse struct {
	ID       int        `json:"id"`
	Person   rsvpPerson `json:"person"`
	Response string     `json:"response"`
}

type rsvpEvent struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Location  string         `json:"location"`
	Responses []rsvpResponse `json:"responses"`
}

type rsvpStore struct {
	mu     sync.Mutex
	events []*rsvpEvent
}

func newRSVPStore() *rsvpStore {
	duke := rsvpPerson{ID: 1, FirstName: "Duke", LastName: "Java"}
	tux := rsvpPerson{ID: 2, FirstName: "Tux", LastName: "Penguin"}
	return &rsvpStore{events: []*rsvpEvent{{
		ID:       1,
		Name:     "JavaOne",
		Location: "San Francisco",
		Responses: []rsvpResponse{
			{ID: 1, Person: duke, Response: rsvpAttending},
			{ID: 2, Person: tux, Response: rsvpNotResponded},
		},
	}}}
}

// event returns the event with the path id. Callers hold mu.
func (rs *rsvpStore) event(raw string) *rsvpEvent {
	id, err := strconv.Atoi(strings.Trim(raw, "/"))
	if err != nil {
		return nil
	}
	for _, e := range rs.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// response returns the invitation of person in event. Callers hold mu.
func (rs *rsvpStore) response(eventID, personID string) *rsvpResponse {
	e := rs.event(eventID)
	if e == nil {
		return nil
	}
	pid, err := strconv.Atoi(personID)
	if err != nil {
		return nil
	}
	for i := range e.Responses {
		if e.Responses[i].Person.ID == pid {
			return &e.Responses[i]
		}
	}
	return nil
}

type rsvpEventSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (s *Server) rsvpAll(c *gin.Context) {
	s.rsvp.mu.Lock()
	defer s.rsvp.mu.Unlock()
	out := make([]rsvpEventSummary, 0, len(s.rsvp.events))
	for _, e := range s.rsvp.events {
		out = append(out, rsvpEventSummary{ID: e.ID, Name: e.Name, Location: e.Location})
	}
	c.JSON(http.StatusOK, out)
}

// rsvpStatus serves /webapi/status/{eventId}; an unknown event has no
// content, the way the resource returns a null entity.
func (s *Server) rsvpStatus(c *gin.Context) {
	s.rsvp.mu.Lock()
	defer s.rsvp.mu.Unlock()
	e := s.rsvp.event(c.Param("event"))
	if e == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) rsvpGetResponse(c *gin.Context) {
	s.rsvp.mu.Lock()
	defer s.rsvp.mu.Unlock()
	r := s.rsvp.response(c.Param("event"), c.Param("person"))
	if r == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, r)
}

// rsvpSetResponse takes the new state as the raw request body.
func (s *Server) rsvpSetResponse(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	state, ok := rsvpStates[strings.TrimSpace(string(raw))]
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	s.rsvp.mu.Lock()
	defer s.rsvp.mu.Unlock()
	r := s.rsvp.response(c.Param("event"), c.Param("person"))
	if r == nil {
		c.Status(http.StatusNotFound)
		return
	}
	r.Response = state
	c.Status(http.StatusNoContent)
}

func (s *Server) rosterHome(c *gin.Context) {
	htmlPage(c, "<!DOCTYPE html>\n<html><head><title>Roster</title></head><body><h1>Roster</h1><p>Leagues, teams and players.</p></body></html>\n")
}

// rosterHealth mimics a health endpoint with a datasource check.
func (s *Server) rosterHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"checks": []gin.H{
			{"name": "Database connections health check", "status": "UP", "data": gin.H{"<default>": "UP"}},
		},
	})
}
