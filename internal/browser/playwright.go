package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Playwright launches Chromium lazily on the first NewPage call and shares
// the browser between pages.
type Playwright struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	closed  bool
}

// NewPlaywright creates a launcher. No browser process is started until a
// page is requested.
func NewPlaywright(opts ...Option) *Playwright {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Playwright{cfg: cfg, logger: logger}
}

// NewPage implements Launcher.
func (p *Playwright) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := p.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	timeoutMS := float64(p.cfg.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMS)
	page.SetDefaultNavigationTimeout(timeoutMS)

	return &playwrightPage{page: page, logger: p.logger}, nil
}

func (p *Playwright) ensureBrowser() (playwright.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.browser != nil {
		return p.browser, nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	p.logger.Debug("chromium launched", "headless", p.cfg.Headless)
	p.pw = pw
	p.browser = b
	return b, nil
}

// Close shuts down the browser and the playwright driver.
func (p *Playwright) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			firstErr = fmt.Errorf("close browser: %w", err)
		}
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop playwright: %w", err)
		}
	}
	return firstErr
}

type playwrightPage struct {
	page   playwright.Page
	logger *slog.Logger
}

func (p *playwrightPage) Goto(url string) error {
	p.logger.Debug("browser goto", "url", url)
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) Content() (string, error) {
	html, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("page content: %w", err)
	}
	return html, nil
}

func (p *playwrightPage) FillByTitle(title, value string) error {
	if err := p.page.GetByTitle(title).Fill(value); err != nil {
		return fmt.Errorf("fill %q: %w", title, err)
	}
	return nil
}

func (p *playwrightPage) FillByLabel(label, value string) error {
	if err := p.page.GetByLabel(label).Fill(value); err != nil {
		return fmt.Errorf("fill %q: %w", label, err)
	}
	return nil
}

func (p *playwrightPage) InputValue(label string) (string, error) {
	v, err := p.page.GetByLabel(label).InputValue()
	if err != nil {
		return "", fmt.Errorf("value of %q: %w", label, err)
	}
	return v, nil
}

func (p *playwrightPage) ClickButton(name string) error {
	button := p.page.GetByRole("button", playwright.PageGetByRoleOptions{Name: name})
	if err := button.Click(); err != nil {
		return fmt.Errorf("click %q: %w", name, err)
	}
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateLoad,
	}); err != nil {
		return fmt.Errorf("wait for navigation after %q: %w", name, err)
	}
	return nil
}

func (p *playwrightPage) ClickLink(name string) error {
	link := p.page.GetByRole("link", playwright.PageGetByRoleOptions{Name: name}).First()
	if err := link.Click(); err != nil {
		return fmt.Errorf("click link %q: %w", name, err)
	}
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateLoad,
	}); err != nil {
		return fmt.Errorf("wait for load after link %q: %w", name, err)
	}
	return nil
}

func (p *playwrightPage) GoBack() error {
	if _, err := p.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("go back: %w", err)
	}
	return nil
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
