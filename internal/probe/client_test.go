package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient()
		if c.httpClient.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
		if c.httpClient.Jar != nil {
			t.Error("default client should not carry a cookie jar")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient(WithTimeout(5 * time.Second))
		if c.Timeout() != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.Timeout(), 5*time.Second)
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient(WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 3 * time.Second}
		c := NewClient(WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestDo_NonSuccessIsResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"ok", http.StatusOK, "hello"},
		{"bad request", http.StatusBadRequest, "missing parameter 'name'"},
		{"not found", http.StatusNotFound, `{"error":"not in cart"}`},
		{"server error", http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := NewClient().Get(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("Status = %d, want %d", resp.Status, tt.status)
			}
			if resp.Body != tt.body {
				t.Errorf("Body = %q, want %q", resp.Body, tt.body)
			}
			if resp.MediaType() != "text/plain" {
				t.Errorf("MediaType() = %q, want %q", resp.MediaType(), "text/plain")
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewClient(WithTimeout(time.Second)).Get(context.Background(), addr)
	if err == nil {
		t.Fatal("expected error for closed server")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T", err)
	}
	if !strings.HasPrefix(err.Error(), "NETWORK-ERROR: ") {
		t.Errorf("Error() = %q, want NETWORK-ERROR prefix", err.Error())
	}
	if netErr.URL != addr {
		t.Errorf("URL = %q, want %q", netErr.URL, addr)
	}
}

func TestDo_RequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	c := NewClient()
	_, err := c.Do(context.Background(), Request{URL: server.URL, Timeout: 50 * time.Millisecond})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDo_LongerRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte("101.50 / 2000"))
	}))
	defer server.Close()

	c := NewClient(WithTimeout(50 * time.Millisecond))
	resp, err := c.Do(context.Background(), Request{URL: server.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.Body != "101.50 / 2000" {
		t.Errorf("Body = %q", resp.Body)
	}
	if c.Timeout() != 50*time.Millisecond {
		t.Errorf("client timeout mutated to %v", c.Timeout())
	}
}

func TestDo_InvalidUTF8Replaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{'o', 'k', 0xff})
	}))
	defer server.Close()

	resp, err := NewClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Body != "ok\uFFFD" {
		t.Errorf("Body = %q, want %q", resp.Body, "ok\uFFFD")
	}
}

func TestPostHelpers(t *testing.T) {
	type seen struct {
		method      string
		contentType string
		body        string
	}
	got := make(chan seen, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- seen{r.Method, r.Header.Get("Content-Type"), string(body)}
	}))
	defer server.Close()

	c := NewClient()
	ctx := context.Background()

	tests := []struct {
		name string
		do   func() (*Response, error)
		want seen
	}{
		{
			name: "json",
			do: func() (*Response, error) {
				return c.PostJSON(ctx, server.URL, map[string]string{"customerName": "Duke"})
			},
			want: seen{http.MethodPost, "application/json", `{"customerName":"Duke"}`},
		},
		{
			name: "json nil body",
			do:   func() (*Response, error) { return c.PostJSON(ctx, server.URL, nil) },
			want: seen{http.MethodPost, "application/json", ""},
		},
		{
			name: "put json",
			do: func() (*Response, error) {
				return c.PutJSON(ctx, server.URL, map[string]string{"phone": "555-0000"})
			},
			want: seen{http.MethodPut, "application/json", `{"phone":"555-0000"}`},
		},
		{
			name: "form",
			do: func() (*Response, error) {
				return c.PostForm(ctx, server.URL, url.Values{"amount": {"5"}})
			},
			want: seen{http.MethodPost, "application/x-www-form-urlencoded", "amount=5"},
		},
		{
			name: "xml",
			do:   func() (*Response, error) { return c.PostXML(ctx, server.URL, "<a/>") },
			want: seen{http.MethodPost, "text/xml", "<a/>"},
		},
		{
			name: "delete",
			do:   func() (*Response, error) { return c.Delete(ctx, server.URL) },
			want: seen{http.MethodDelete, "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.do(); err != nil {
				t.Fatalf("request failed: %v", err)
			}
			s := <-got
			if s != tt.want {
				t.Errorf("server saw %+v, want %+v", s, tt.want)
			}
		})
	}
}

func TestGetAccept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Accept"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := NewClient().GetAccept(context.Background(), server.URL, "application/xml")
	if err != nil {
		t.Fatalf("GetAccept failed: %v", err)
	}
	if resp.MediaType() != "application/xml" {
		t.Errorf("server saw Accept %q, want application/xml", resp.ContentType)
	}
}

func TestSession_KeepsCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("JSESSIONID"); err == nil && c.Value == "abc" {
			w.Write([]byte("known"))
			return
		}
		w.Write([]byte("anonymous"))
	}))
	defer server.Close()

	ctx := context.Background()
	base := NewClient()
	session := base.Session()

	if _, err := session.Get(ctx, server.URL+"/login"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	resp, err := session.Get(ctx, server.URL+"/whoami")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Body != "known" {
		t.Errorf("session Body = %q, want %q", resp.Body, "known")
	}

	resp, err = base.Get(ctx, server.URL+"/whoami")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Body != "anonymous" {
		t.Errorf("base client Body = %q, want %q", resp.Body, "anonymous")
	}
}

func TestResponse_Helpers(t *testing.T) {
	resp := &Response{Status: 200, Body: `{"status":"UP"}`}

	if !resp.OK() {
		t.Error("OK() = false for 200")
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := resp.JSON(&health); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if health.Status != "UP" {
		t.Errorf("status = %q, want UP", health.Status)
	}

	if got := resp.Snippet(5); got != `{"sta` {
		t.Errorf("Snippet(5) = %q", got)
	}
	if got := resp.Snippet(100); got != resp.Body {
		t.Errorf("Snippet(100) = %q", got)
	}

	// "Grüße" is G r ü(2) ß(2) e; byte 3 is inside ü.
	utf := &Response{Body: "Grüße"}
	tests := []struct {
		n    int
		want string
	}{
		{2, "Gr"},
		{3, "Gr"},
		{4, "Grü"},
		{5, "Grü"},
		{6, "Grüß"},
	}
	for _, tt := range tests {
		got := utf.Snippet(tt.n)
		if got != tt.want || !utf8.ValidString(got) {
			t.Errorf("Snippet(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}

	bad := &Response{Body: "<html>"}
	if err := bad.JSON(&health); err == nil {
		t.Error("expected error decoding non-JSON body")
	}
}
