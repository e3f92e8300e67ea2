// Package probe provides the HTTP client used by smoke suites.
//
// Responses with any status code are returned as *Response values so that
// suites can assert on 4xx/5xx answers. Only transport failures (DNS,
// connection refused, timeouts, unreadable bodies) are errors, reported as
// *NetworkError. Requests are never retried.
package probe
