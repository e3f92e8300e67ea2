package targets

import (
	"context"
	"regexp"
	"strings"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// Order exit codes.
const (
	orderExitList    = 2
	orderExitBrowser = 5
)

var orderIDRe = regexp.MustCompile(`<td[^>]*>(?:<a[^>]*>)?(\d+)(?:</a>)?</td>`)

// orderFormElements are the ids of the controls of the create-order form.
var orderFormElements = []string{
	"orderIdInputText",
	"shipmentInfoInputText",
	"statusMenu",
	"discountMenu",
	"submit",
}

// Order checks the order list page over HTTP, then creates an order and
// opens its line items in a browser.
type Order struct {
	info

	NewOrderID   string
	ShipmentInfo string
}

// NewOrder creates the order suite.
func NewOrder() *Order {
	return &Order{
		info: info{
			name:        "order",
			description: "Order persistence app: order list over HTTP, create order and line items (browser)",
			envVar:      "ORDER_BASE",
			defaultBase: "http://localhost:8082",
		},
		NewOrderID:   "99999",
		ShipmentInfo: "Express Shipping Test",
	}
}

// Run implements suite.Suite. Exit codes: 2 GET /orders failed, 5 a
// browser check failed, 9 network error.
func (s *Order) Run(ctx context.Context, env *suite.Env) error {
	resp, err := mustGetOK(ctx, env, "/orders", orderExitList, check.ExitUnexpected)
	if err != nil {
		return err
	}
	body := resp.Body

	env.Report.Soft(strings.Contains(body, "Order") && strings.Contains(body, "Java Persistence"),
		"HTML content valid",
		"HTML content may be incomplete")
	softGetOK(ctx, env, "/css/default.css")
	checkOrdersTable(env, body)
	checkOrderForm(env, body)

	env.Report.Infof("Running browser checks...")
	if env.Browser == nil {
		return check.Wrap(orderExitBrowser, browser.ErrNotConfigured, "open browser")
	}
	page, err := env.Browser.NewPage(ctx)
	if err != nil {
		return check.Wrap(orderExitBrowser, err, "open browser")
	}
	defer page.Close()

	t := &tally{report: env.Report}
	orders := probe.Join(env.Base, "/orders")

	html, err := pageContent(page, orders)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", orders, err)
	}
	t.record(err == nil && strings.Contains(strings.ToLower(html), "<table") && strings.Contains(html, "1111"),
		"Orders table loaded",
		"Orders table did not load")

	html, ok := submitForm(env, page, "Submit",
		field{"Order ID:", s.NewOrderID},
		field{"Shipment Info:", s.ShipmentInfo})
	t.record(ok && strings.Contains(html, ">"+s.NewOrderID+"<"),
		"New order "+s.NewOrderID+" appears in table",
		"New order "+s.NewOrderID+" not found in table")

	items := probe.Join(env.Base, "/lineItems?orderId=1111")
	html, err = pageContent(page, items)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", items, err)
	}
	t.record(err == nil && strings.Contains(html, "Item ID") && strings.Contains(html, "Back to Orders"),
		"Line item page loaded",
		"Line item page did not load")

	if err := t.resultCode(orderExitBrowser); err != nil {
		return err
	}
	env.Report.Passf("Enhanced smoke sequence complete")
	return nil
}

func checkOrdersTable(env *suite.Env, body string) {
	lower := strings.ToLower(body)
	if !strings.Contains(lower, "<table") || !strings.Contains(lower, "order") {
		env.Report.Warnf("Orders table not found or malformed")
		return
	}
	env.Report.Passf("Orders table found")

	var ids []string
	for _, m := range orderIDRe.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	if len(ids) == 0 {
		env.Report.Warnf("Orders table found but no order IDs detected")
		return
	}
	env.Report.Passf("Found %d existing orders: %v", len(ids), ids[:min(5, len(ids))])
}

// checkOrderForm warns unless most of the create-order controls are present.
func checkOrderForm(env *suite.Env, body string) {
	lower := strings.ToLower(body)
	var missing []string
	for _, id := range orderFormElements {
		if !strings.Contains(lower, strings.ToLower(id)) {
			missing = append(missing, id)
		}
	}
	if len(orderFormElements)-len(missing) >= 4 {
		env.Report.Passf("Form elements for order creation found")
		return
	}
	env.Report.Warnf("Some form elements missing: %v", missing)
}
