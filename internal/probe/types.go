package probe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

// Request describes a single HTTP exchange.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// Timeout overrides the client timeout when positive. Long-poll
	// endpoints need a longer window than ordinary pages.
	Timeout time.Duration
}

// Response is the outcome of a request that reached the server, whatever
// its status code.
type Response struct {
	Status      int
	Body        string // Decoded as UTF-8, invalid sequences replaced
	ContentType string
	Header      http.Header
	Elapsed     time.Duration
}

// OK reports whether the status is 200.
func (r *Response) OK() bool {
	return r.Status == http.StatusOK
}

// MediaType returns the response media type without parameters.
func (r *Response) MediaType() string {
	return MediaType(r.ContentType)
}

// JSON unmarshals the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal([]byte(r.Body), v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Snippet returns at most n bytes of the body, for failure messages. The
// cut never splits a rune.
func (r *Response) Snippet(n int) string {
	if len(r.Body) <= n {
		return r.Body
	}
	for n > 0 && !utf8.RuneStart(r.Body[n]) {
		n--
	}
	return r.Body[:n]
}

// NetworkError reports a request that produced no HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("NETWORK-ERROR: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
