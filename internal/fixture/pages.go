package fixture

import (
	"fmt"
	"html"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<title>DukeETF and WebsocketBot</title>
<link rel="stylesheet" href="resources/css/default.css">
</head>
<body>
<h1>WebsocketBot</h1>
<p>Chat with Duke over a WebSocket connection.</p>
<p>Duke's ETF: <span id="price">--</span> / <span id="volume">--</span></p>
</body>
</html>
`

const mainPageHTML = `<!DOCTYPE html>
<html>
<head>
<title>Duke's Exchange Traded Fund</title>
<link rel="stylesheet" href="resources/css/default.css">
</head>
<body>
<h1>Duke's ETF</h1>
<p>Price and volume are refreshed by long polling /dukeetf.</p>
</body>
</html>
`

const stylesheetCSS = `body { font-family: sans-serif; }
h1 { color: #336; }
`

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(indexHTML))
}

func (s *Server) mainPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(mainPageHTML))
}

func (s *Server) stylesheet(c *gin.Context) {
	c.Data(http.StatusOK, "text/css", []byte(stylesheetCSS))
}

// greeting answers /greeting?name=N; a missing name is a 400.
func (s *Server) greeting(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.Data(http.StatusBadRequest, "text/plain; charset=UTF-8",
			[]byte("Missing required parameter 'name'"))
		return
	}
	body := fmt.Sprintf("<html><body><h2>Hello, %s!</h2></body></html>", html.EscapeString(name))
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(body))
}

func (s *Server) helloWorld(c *gin.Context) {
	c.Data(http.StatusOK, "text/html", []byte("<html lang=\"en\"><body><h1>Hello, World!!</h1></body></html>"))
}

// moodAt returns Duke's mood for the hour of day.
func moodAt(hour int) string {
	switch {
	case hour < 7:
		return "sleepy"
	case hour < 12:
		return "alert"
	case hour < 14:
		return "hungry"
	case hour < 18:
		return "thoughtful"
	default:
		return "in need of coffee"
	}
}

func (s *Server) report(c *gin.Context) {
	mood := moodAt(time.Now().Hour())
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<title>Servlet MoodServlet</title>\n</head>\n<body>\n")
	b.WriteString("<h1>Servlet MoodServlet at /report</h1>\n")
	fmt.Fprintf(&b, "<p>Duke's mood is: %s</p>\n", mood)
	b.WriteString(`<img src="resources/images/duke.waving.gif" alt="Duke waving" />` + "\n")
	b.WriteString("</body>\n</html>\n")
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(b.String()))
}

// counter increments the hit count on every visit.
func (s *Server) counter(c *gin.Context) {
	n := s.hits.Add(1)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Counter</title></head>
<body>
<h1>Hit Counter</h1>
<p>This page has been accessed %d time(s).</p>
</body>
</html>
`, n)
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(body))
}

const converterHTML = `<!DOCTYPE html>
<html>
<head><title>Currency Converter</title></head>
<body>
<h1>Currency Converter</h1>
<form method="post" action="converter">
<p>Enter a dollar amount to convert:</p>
<input type="text" name="amount" title="Amount" size="25">
<input type="submit" value="Submit">
<input type="reset" value="Reset">
</form>
%s
</body>
</html>
`

var (
	yenRate  = big.NewRat(10434, 100) // 104.34 yen per dollar
	euroRate = big.NewRat(7, 1000)    // 0.007 euro per yen
)

func (s *Server) converterForm(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(fmt.Sprintf(converterHTML, "")))
}

// convert renders the form followed by the dollar, yen and euro amounts.
func (s *Server) convert(c *gin.Context) {
	amount := strings.TrimSpace(c.PostForm("amount"))
	dollars, ok := new(big.Rat).SetString(amount)
	if !ok || amount == "" {
		result := "<p>Please enter a number.</p>"
		c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(fmt.Sprintf(converterHTML, result)))
		return
	}

	yen := roundUp(new(big.Rat).Mul(dollars, yenRate), 2)
	euro := roundUp(new(big.Rat).Mul(yen, euroRate), 2)

	result := fmt.Sprintf("<p>%s dollars are %s yen.</p>\n<p>%s yen are %s Euro.</p>",
		html.EscapeString(amount), yen.FloatString(2), yen.FloatString(2), euro.FloatString(2))
	c.Data(http.StatusOK, "text/html; charset=UTF-8", []byte(fmt.Sprintf(converterHTML, result)))
}

// roundUp rounds r away from zero to the given number of decimal places.
func roundUp(r *big.Rat, places int) *big.Rat {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(scale))

	q, m := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	if m.Sign() != 0 {
		if scaled.Sign() > 0 {
			q.Add(q, big.NewInt(1))
		} else {
			q.Sub(q, big.NewInt(1))
		}
	}
	return new(big.Rat).SetFrac(q, scale)
}
