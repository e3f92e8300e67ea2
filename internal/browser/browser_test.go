package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewPlaywright_Defaults(t *testing.T) {
	p := NewPlaywright()
	if !p.cfg.Headless {
		t.Error("Headless should default to true")
	}
	if p.cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.cfg.Timeout)
	}
	if p.logger == nil {
		t.Error("logger should not be nil")
	}

	p = NewPlaywright(WithHeadless(false), WithTimeout(5*time.Second))
	if p.cfg.Headless {
		t.Error("WithHeadless(false) not applied")
	}
	if p.cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", p.cfg.Timeout)
	}
}

func TestPlaywright_ClosedBeforeLaunch(t *testing.T) {
	p := NewPlaywright()
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := p.NewPage(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestPlaywright_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPlaywright().NewPage(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUnavailable(t *testing.T) {
	if _, err := (Unavailable{}).NewPage(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	cause := errors.New("chromium missing")
	if _, err := (Unavailable{Err: cause}).NewPage(context.Background()); !errors.Is(err, cause) {
		t.Errorf("expected cause, got %v", err)
	}
}

func TestFake_FormFlow(t *testing.T) {
	fake := &Fake{
		Pages: map[string]func() (string, error){
			"http://app/form": func() (string, error) {
				return `<input title="Amount"><button>Submit</button>`, nil
			},
		},
		OnClick: func(pageURL, button string, fields map[string]string) (string, error) {
			return pageURL + " " + button + ":" + fields["Amount"], nil
		},
	}

	page, err := fake.NewPage(context.Background())
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}

	if err := page.Goto("http://app/missing"); err == nil {
		t.Error("expected error for unknown page")
	}
	if err := page.Goto("http://app/form"); err != nil {
		t.Fatalf("Goto failed: %v", err)
	}
	if err := page.FillByTitle("Nope", "1"); err == nil {
		t.Error("expected error filling unknown field")
	}
	if err := page.FillByTitle("Amount", "5"); err != nil {
		t.Fatalf("FillByTitle failed: %v", err)
	}
	if err := page.ClickButton("Submit"); err != nil {
		t.Fatalf("ClickButton failed: %v", err)
	}

	html, _ := page.Content()
	if !strings.Contains(html, "http://app/form Submit:5") {
		t.Errorf("Content() = %q", html)
	}

	page.Close()
	if fake.Opened() != 1 || fake.Closed() != 1 {
		t.Errorf("opened=%d closed=%d, want 1 and 1", fake.Opened(), fake.Closed())
	}
}

func TestFake_LabelsLinksAndHistory(t *testing.T) {
	fake := &Fake{
		Pages: map[string]func() (string, error){
			"http://app/home": func() (string, error) {
				return `<label for="n">Number:</label><input id="n">` +
					`<nav><a href="#about">About us</a> <a href="next">Next page</a></nav>`, nil
			},
			"http://app/next": func() (string, error) { return "<p>second</p>", nil },
		},
		OnClick: func(pageURL, button string, fields map[string]string) (string, error) {
			return `<label for="n">Number:</label><p>guessed ` + fields["Number:"] + `</p>`, nil
		},
	}

	page, err := fake.NewPage(context.Background())
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	defer page.Close()

	if err := page.Goto("http://app/home"); err != nil {
		t.Fatalf("Goto failed: %v", err)
	}
	if err := page.GoBack(); err == nil {
		t.Error("expected error going back from the first page")
	}
	if err := page.FillByLabel("Name:", "x"); err == nil {
		t.Error("expected error filling unknown label")
	}
	if err := page.FillByLabel("Number:", "7"); err != nil {
		t.Fatalf("FillByLabel failed: %v", err)
	}
	if err := page.ClickButton("Guess"); err != nil {
		t.Fatalf("ClickButton failed: %v", err)
	}
	if v, err := page.InputValue("Number:"); err != nil || v != "7" {
		t.Errorf("InputValue = %q, %v; want 7", v, err)
	}

	if err := page.GoBack(); err != nil {
		t.Fatalf("GoBack failed: %v", err)
	}
	if err := page.ClickLink("about"); err != nil {
		t.Fatalf("fragment link failed: %v", err)
	}
	if err := page.ClickLink("Next"); err != nil {
		t.Fatalf("ClickLink failed: %v", err)
	}
	if html, _ := page.Content(); html != "<p>second</p>" {
		t.Errorf("Content() = %q after link", html)
	}
	if err := page.ClickLink("Missing"); err == nil {
		t.Error("expected error for unknown link")
	}

	if err := page.GoBack(); err != nil {
		t.Fatalf("GoBack failed: %v", err)
	}
	if html, _ := page.Content(); !strings.Contains(html, "About us") {
		t.Errorf("Content() = %q after GoBack", html)
	}
}
