package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Do performs req and returns the response for any status code.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: req.URL, Err: fmt.Errorf("create request: %w", err)}
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if c.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	hc := c.httpClient
	if req.Timeout > 0 && hc.Timeout > 0 && req.Timeout > hc.Timeout {
		clone := *hc
		clone.Timeout = req.Timeout
		hc = &clone
	}

	c.logger.Debug("http request", "method", method, "url", req.URL)

	start := time.Now()
	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: req.URL, Err: fmt.Errorf("read response: %w", err)}
	}
	elapsed := time.Since(start)

	c.logger.Debug("http response",
		"method", method,
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", elapsed,
	)

	return &Response{
		Status:      resp.StatusCode,
		Body:        strings.ToValidUTF8(string(data), "\uFFFD"),
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Elapsed:     elapsed,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: rawURL})
}

// Post sends body with the given content type.
func (c *Client) Post(ctx context.Context, rawURL, contentType string, body []byte) (*Response, error) {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return c.Do(ctx, Request{Method: http.MethodPost, URL: rawURL, Header: header, Body: body})
}

// PostJSON marshals v and posts it as application/json. A nil v sends an
// empty body with the JSON content type.
func (c *Client) PostJSON(ctx context.Context, rawURL string, v any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPost, rawURL, v)
}

// PutJSON marshals v and sends it with PUT as application/json.
func (c *Client) PutJSON(ctx context.Context, rawURL string, v any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPut, rawURL, v)
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, v any) (*Response, error) {
	body := []byte{}
	if v != nil {
		var err error
		body, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return c.Do(ctx, Request{Method: method, URL: rawURL, Header: header, Body: body})
}

// GetAccept performs a GET request asking for the given media type.
func (c *Client) GetAccept(ctx context.Context, rawURL, accept string) (*Response, error) {
	header := http.Header{}
	header.Set("Accept", accept)
	return c.Do(ctx, Request{Method: http.MethodGet, URL: rawURL, Header: header})
}

// PostForm posts form values as application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	return c.Post(ctx, rawURL, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// PostXML posts an XML document (SOAP envelopes) as text/xml.
func (c *Client) PostXML(ctx context.Context, rawURL, doc string) (*Response, error) {
	return c.Post(ctx, rawURL, "text/xml", []byte(doc))
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, URL: rawURL})
}
