package fixture

import (
	"fmt"
	"html"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

type order struct {
	ID           int
	Status       string
	LastUpdate   string
	Discount     int
	ShipmentInfo string
}

type lineItem struct {
	ItemID   int
	Quantity int
	Part     string
}

type orderStore struct {
	mu     sync.Mutex
	orders []order
	items  map[int][]lineItem
}

func newOrderStore() *orderStore {
	return &orderStore{
		orders: []order{
			{ID: 1111, Status: "N", LastUpdate: "2024-01-15", Discount: 0, ShipmentInfo: "Ground"},
			{ID: 4312, Status: "Y", LastUpdate: "2024-02-02", Discount: 10, ShipmentInfo: "Overnight"},
		},
		items: map[int][]lineItem{
			1111: {{ItemID: 1, Quantity: 5, Part: "1234-5678-01"}, {ItemID: 2, Quantity: 3, Part: "9876-4321-02"}},
			4312: {{ItemID: 1, Quantity: 12, Part: "ABC-PQR-XYZ"}},
		},
	}
}

// save adds o unless an order with its id exists.
func (st *orderStore) save(o order) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if slices.ContainsFunc(st.orders, func(x order) bool { return x.ID == o.ID }) {
		return
	}
	st.orders = append(st.orders, o)
}

func (st *orderStore) remove(id int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.orders = slices.DeleteFunc(st.orders, func(x order) bool { return x.ID == id })
}

func (st *orderStore) render(msg string) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head><title>Order - Java Persistence Example</title>
<link rel="stylesheet" href="css/default.css"></head>
<body>
<h1>Java Persistence Example: Order</h1>
<table>
<tr><th>Order ID</th><th>Shipment Info</th><th>Status</th><th>Last Updated</th><th>Discount</th><th></th></tr>
`)
	for _, o := range st.orders {
		fmt.Fprintf(&b, `<tr><td><a href="lineItems?orderId=%d">%d</a></td><td>%s</td><td>%s</td><td>%s</td><td>%d</td>`+
			`<td><form method="post" action="orders"><input type="hidden" name="deleteId" value="%d">`+
			`<input type="submit" name="action" value="Delete"></form></td></tr>`+"\n",
			o.ID, o.ID, html.EscapeString(o.ShipmentInfo), o.Status, o.LastUpdate, o.Discount, o.ID)
	}
	b.WriteString(`</table>
<h2>Create Order</h2>
<form method="post" action="orders">
<label for="orderIdInputText">Order ID:</label>
<input type="text" id="orderIdInputText" name="newOrderId">
<label for="shipmentInfoInputText">Shipment Info:</label>
<input type="text" id="shipmentInfoInputText" name="newOrderShippingInfo">
<label for="statusMenu">Status:</label>
<select id="statusMenu" name="newOrderStatus"><option value="N">N</option><option value="Y">Y</option></select>
<label for="discountMenu">Discount:</label>
<select id="discountMenu" name="newOrderDiscount"><option value="0">0</option><option value="10">10</option></select>
<input type="submit" id="submit" name="action" value="Submit">
</form>
<h2>Find Vendor</h2>
<form method="get" action="orders">
<input type="text" name="vendorName">
<input type="submit" value="Find">
</form>
`)
	if msg != "" {
		fmt.Fprintf(&b, "<p class=\"message\">%s</p>\n", html.EscapeString(msg))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func (s *Server) ordersPage(c *gin.Context) {
	htmlPage(c, s.orders.render(""))
}

// ordersSubmit creates or deletes an order, then renders the list again.
func (s *Server) ordersSubmit(c *gin.Context) {
	if c.PostForm("action") == "Delete" {
		if id, err := strconv.Atoi(c.PostForm("deleteId")); err == nil {
			s.orders.remove(id)
		}
		htmlPage(c, s.orders.render(""))
		return
	}

	id, err := strconv.Atoi(strings.TrimSpace(c.PostForm("newOrderId")))
	if err != nil {
		htmlPage(c, s.orders.render("Order ID must be a number"))
		return
	}
	discount, _ := strconv.Atoi(c.DefaultPostForm("newOrderDiscount", "0"))
	s.orders.save(order{
		ID:           id,
		Status:       c.DefaultPostForm("newOrderStatus", "N"),
		LastUpdate:   "today",
		Discount:     discount,
		ShipmentInfo: c.PostForm("newOrderShippingInfo"),
	})
	htmlPage(c, s.orders.render(""))
}

func (s *Server) lineItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("orderId"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	s.orders.mu.Lock()
	items := s.orders.items[id]
	s.orders.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head><title>Line Items</title></head>\n<body>\n<h1>Line Items for Order %d</h1>\n", id)
	b.WriteString("<table>\n<tr><th>Item ID</th><th>Quantity</th><th>Part Number</th></tr>\n")
	for _, it := range items {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%d</td><td>%s</td></tr>\n", it.ItemID, it.Quantity, html.EscapeString(it.Part))
	}
	b.WriteString("</table>\n<a href=\"orders\">Back to Orders</a>\n</body>\n</html>\n")
	htmlPage(c, b.String())
}
