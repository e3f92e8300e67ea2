package browser

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// Fake is an in-memory Launcher for tests. Pages maps a URL to a function
// rendering its HTML; OnClick renders the page shown after a button click
// on the page at pageURL. Fields holds the values filled so far, keyed by
// title or label, and survive navigation the way a server-side form bean
// would.
type Fake struct {
	Pages   map[string]func() (string, error)
	OnClick func(pageURL, button string, fields map[string]string) (string, error)

	mu     sync.Mutex
	opened int
	closed int
}

// NewPage implements Launcher.
func (f *Fake) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return &fakePage{fake: f, fields: make(map[string]string)}, nil
}

// Opened returns how many pages were opened.
func (f *Fake) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Closed returns how many pages were closed.
func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeEntry struct {
	url     string
	content string
}

type fakePage struct {
	fake    *Fake
	url     string
	content string
	fields  map[string]string
	history []fakeEntry
}

func (p *fakePage) Goto(url string) error {
	render, ok := p.fake.Pages[url]
	if !ok {
		return fmt.Errorf("goto %s: no such page", url)
	}
	html, err := render()
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	p.show(url, html)
	return nil
}

// show pushes the current page onto the history and displays html.
func (p *fakePage) show(url, html string) {
	if p.url != "" {
		p.history = append(p.history, fakeEntry{url: p.url, content: p.content})
	}
	p.url = url
	p.content = html
}

func (p *fakePage) Content() (string, error) {
	return p.content, nil
}

func (p *fakePage) FillByTitle(title, value string) error {
	if !strings.Contains(p.content, `title="`+title+`"`) {
		return fmt.Errorf("fill %q: no element with that title", title)
	}
	p.fields[title] = value
	return nil
}

func (p *fakePage) FillByLabel(label, value string) error {
	if !p.hasLabel(label) {
		return fmt.Errorf("fill %q: no element with that label", label)
	}
	p.fields[label] = value
	return nil
}

func (p *fakePage) InputValue(label string) (string, error) {
	if !p.hasLabel(label) {
		return "", fmt.Errorf("value of %q: no element with that label", label)
	}
	return p.fields[label], nil
}

func (p *fakePage) hasLabel(label string) bool {
	return strings.Contains(p.content, "<label") && strings.Contains(p.content, label)
}

func (p *fakePage) ClickButton(name string) error {
	if p.fake.OnClick == nil {
		return fmt.Errorf("click %q: no button", name)
	}
	html, err := p.fake.OnClick(p.url, name, p.fields)
	if err != nil {
		return fmt.Errorf("click %q: %w", name, err)
	}
	p.show(p.url, html)
	return nil
}

var anchorRe = regexp.MustCompile(`(?is)<a\b[^>]*\bhref="([^"]*)"[^>]*>(.*?)</a>`)

// ClickLink follows the first anchor whose text contains name. Fragment
// links keep the current page.
func (p *fakePage) ClickLink(name string) error {
	for _, m := range anchorRe.FindAllStringSubmatch(p.content, -1) {
		if !strings.Contains(strings.ToLower(m[2]), strings.ToLower(name)) {
			continue
		}
		if strings.HasPrefix(m[1], "#") {
			return nil
		}
		base, err := url.Parse(p.url)
		if err != nil {
			return fmt.Errorf("click link %q: %w", name, err)
		}
		ref, err := url.Parse(m[1])
		if err != nil {
			return fmt.Errorf("click link %q: %w", name, err)
		}
		return p.Goto(base.ResolveReference(ref).String())
	}
	return fmt.Errorf("click link %q: no such link", name)
}

func (p *fakePage) GoBack() error {
	n := len(p.history)
	if n == 0 {
		return fmt.Errorf("go back: no history")
	}
	prev := p.history[n-1]
	p.history = p.history[:n-1]
	p.url = prev.url
	p.content = prev.content
	return nil
}

func (p *fakePage) Close() error {
	p.fake.mu.Lock()
	p.fake.closed++
	p.fake.mu.Unlock()
	return nil
}
