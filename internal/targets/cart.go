package targets

import (
	"context"
	"net/http"
	"strings"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// Cart exit codes, one per step.
const (
	cartExitNoBase     = 2
	cartExitHealth     = 3
	cartExitInitialize = 4
	cartExitAdd        = 5
	cartExitList       = 6
	cartExitRemove     = 7
	cartExitClear      = 8
)

// Cart drives the stateful shopping-cart REST API through one HTTP session.
type Cart struct {
	info

	// Fallbacks are tried after the configured base when discovering a
	// reachable API.
	Fallbacks []string
}

// NewCart creates the cart suite.
func NewCart() *Cart {
	return &Cart{
		info: info{
			name:        "cart",
			description: "Stateful cart API: initialize, add, list, remove, clear",
			envVar:      "CART_BASE_URL",
			defaultBase: "http://localhost:9080/cart/api/cart",
		},
		Fallbacks: []string{
			"http://localhost:9080/cart/api/cart",
			"http://localhost:8080/cart/api/cart",
		},
	}
}

type cartHealth struct {
	Status string `json:"status"`
}

type cartBook struct {
	Title string `json:"title"`
}

type cartContents struct {
	Books []string `json:"books"`
	Count int      `json:"count"`
}

// cartRun holds the session state of one run.
type cartRun struct {
	env  *suite.Env
	http *probe.Client
	base string
}

// Run implements suite.Suite.
func (s *Cart) Run(ctx context.Context, env *suite.Env) error {
	r := &cartRun{env: env, http: env.HTTP.Session()}

	base, err := r.discover(ctx, s.candidates(env.Base))
	if err != nil {
		return err
	}
	r.base = strings.TrimRight(base, "/")

	steps := []func(context.Context) error{
		r.assertHealth,
		func(ctx context.Context) error { return r.initialize(ctx, "Duke DeUrl", "123") },
		func(ctx context.Context) error { return r.addBook(ctx, "Infinite Jest") },
		func(ctx context.Context) error { return r.addBook(ctx, "Bel Canto") },
		func(ctx context.Context) error { return r.addBook(ctx, "Kafka on the Shore") },
		func(ctx context.Context) error { return r.listBooks(ctx, 3) },
		func(ctx context.Context) error { return r.removeBook(ctx, "Bel Canto") },
		func(ctx context.Context) error { return r.listBooks(ctx, 2) },
		func(ctx context.Context) error { return r.removeMissingBook(ctx, "Gravity's Rainbow") },
		r.clear,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}

	env.Report.Passf("Smoke sequence complete")
	return nil
}

func (s *Cart) candidates(base string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range append([]string{base}, s.Fallbacks...) {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (r *cartRun) discover(ctx context.Context, candidates []string) (string, error) {
	for _, c := range candidates {
		if r.healthy(ctx, c) {
			r.env.Report.Infof("Base discovered: %s", c)
			return c, nil
		}
	}
	if len(candidates) == 0 {
		return "", check.Failf(cartExitNoBase, "No base URL candidates available")
	}
	r.env.Report.Warnf("No base validated, using fallback %s", candidates[0])
	return candidates[0], nil
}

func (r *cartRun) healthy(ctx context.Context, base string) bool {
	target := strings.TrimRight(base, "/") + "/health"
	r.env.Report.Verbosef("Attempt GET %s", target)

	resp, err := r.http.Get(ctx, target)
	if err != nil {
		r.env.Report.Verbosef("Fail: %v", err)
		return false
	}
	if resp.Status != http.StatusOK {
		r.env.Report.Verbosef("Unexpected status %d", resp.Status)
		return false
	}
	var health cartHealth
	if err := resp.JSON(&health); err != nil {
		r.env.Report.Verbosef("Health check response not valid JSON: %s", resp.Body)
		return false
	}
	return health.Status == "UP"
}

func (r *cartRun) assertHealth(ctx context.Context) error {
	resp, err := r.http.Get(ctx, r.base+"/health")
	if err != nil {
		return check.Wrap(cartExitHealth, err, "Health check error")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(cartExitHealth, "Health check status: %d", resp.Status)
	}
	var health cartHealth
	if err := resp.JSON(&health); err != nil {
		return check.Failf(cartExitHealth, "Health check invalid JSON: %s", resp.Body)
	}
	if health.Status != "UP" {
		return check.Failf(cartExitHealth, "Health status not UP: %s", resp.Body)
	}
	r.env.Report.Passf("GET health -> status=UP")
	return nil
}

func (r *cartRun) initialize(ctx context.Context, customerName, customerID string) error {
	resp, err := r.http.PostJSON(ctx, r.base+"/initialize", map[string]string{
		"customerName": customerName,
		"customerId":   customerID,
	})
	if err != nil {
		return check.Wrap(cartExitInitialize, err, "Initialize cart error")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(cartExitInitialize, "Initialize cart status: %d :: %s", resp.Status, resp.Body)
	}
	if err := requireKey(resp, "message"); err != nil {
		return check.Failf(cartExitInitialize, "Initialize response %v: %s", err, resp.Body)
	}
	r.env.Report.Passf("POST initialize cart for '%s' -> %d", customerName, resp.Status)
	return nil
}

func (r *cartRun) bookURL(title string) string {
	return r.base + "/books/" + strings.ReplaceAll(title, " ", "%20")
}

func (r *cartRun) addBook(ctx context.Context, title string) error {
	resp, err := r.http.Post(ctx, r.bookURL(title), "application/json", []byte{})
	if err != nil {
		return check.Wrap(cartExitAdd, err, "Add book '"+title+"' error")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(cartExitAdd, "Add book '%s' status: %d :: %s", title, resp.Status, resp.Body)
	}
	var book cartBook
	if err := resp.JSON(&book); err != nil {
		return check.Failf(cartExitAdd, "Add book response invalid JSON: %s", resp.Body)
	}
	if book.Title != title {
		return check.Failf(cartExitAdd, "Add book title mismatch: %s", resp.Body)
	}
	r.env.Report.Passf("POST add book '%s' -> %d", title, resp.Status)
	return nil
}

func (r *cartRun) listBooks(ctx context.Context, want int) error {
	resp, err := r.http.Get(ctx, r.base+"/books")
	if err != nil {
		return check.Wrap(cartExitList, err, "Get books error")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(cartExitList, "Get books status: %d :: %s", resp.Status, resp.Body)
	}
	var contents cartContents
	if err := resp.JSON(&contents); err != nil {
		return check.Failf(cartExitList, "Get books response invalid JSON: %s", resp.Body)
	}
	if contents.Count != want {
		return check.Failf(cartExitList, "Expected %d books, got %d: %v", want, contents.Count, contents.Books)
	}
	r.env.Report.Passf("GET books -> count=%d, books=%v", contents.Count, contents.Books)
	return nil
}

func (r *cartRun) removeBook(ctx context.Context, title string) error {
	resp, err := r.http.Delete(ctx, r.bookURL(title))
	if err != nil {
		return check.Wrap(cartExitRemove, err, "Remove book '"+title+"' error")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(cartExitRemove, "Remove book '%s' status: %d :: %s", title, resp.Status, resp.Body)
	}
	var book cartBook
	if err := resp.JSON(&book); err != nil {
		return check.Failf(cartExitRemove, "Remove book response invalid JSON: %s", resp.Body)
	}
	if book.Title != title {
		return check.Failf(cartExitRemove, "Remove book title mismatch: %s", resp.Body)
	}
	r.env.Report.Passf("DELETE book '%s' -> %d", title, resp.Status)
	return nil
}

// removeMissingBook expects a 404 carrying an "error" field.
func (r *cartRun) removeMissingBook(ctx context.Context, title string) error {
	resp, err := r.http.Delete(ctx, r.bookURL(title))
	if err != nil {
		return check.Wrap(cartExitRemove, err, "Remove book '"+title+"' error")
	}
	if resp.Status == http.StatusNotFound && requireKey(resp, "error") == nil {
		r.env.Report.Passf("DELETE book '%s' (expected failure) -> %d", title, resp.Status)
		return nil
	}
	return check.Failf(cartExitRemove, "Expected 404 for '%s', got %d: %s", title, resp.Status, resp.Body)
}

func (r *cartRun) clear(ctx context.Context) error {
	resp, err := r.http.Delete(ctx, r.base)
	if err != nil {
		return check.Wrap(cartExitClear, err, "Clear cart error")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(cartExitClear, "Clear cart status: %d :: %s", resp.Status, resp.Body)
	}
	if err := requireKey(resp, "message"); err != nil {
		return check.Failf(cartExitClear, "Clear cart response %v: %s", err, resp.Body)
	}
	r.env.Report.Passf("DELETE clear cart -> %d", resp.Status)
	return nil
}

// requireKey checks that the body is a JSON object containing key.
func requireKey(resp *probe.Response, key string) error {
	var obj map[string]any
	if err := resp.JSON(&obj); err != nil {
		return errInvalidJSON
	}
	if _, ok := obj[key]; !ok {
		return &missingKeyError{key: key}
	}
	return nil
}
