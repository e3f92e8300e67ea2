package fixture

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const soapFault = `<?xml version="1.0" encoding="UTF-8"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
<S:Body><S:Fault><faultcode>S:Client</faultcode><faultstring>%s</faultstring></S:Fault></S:Body>
</S:Envelope>
`

const sayHelloResponse = `<?xml version="1.0" encoding="UTF-8"?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
<S:Body><ns2:sayHelloResponse xmlns:ns2="http://ejb.helloservice.tutorial.jakarta/"><return>%s</return></ns2:sayHelloResponse></S:Body>
</S:Envelope>
`

// sayHelloEnvelope matches any envelope carrying a sayHello operation,
// whatever prefix the client binds the namespaces to.
type sayHelloEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		SayHello *struct {
			Arg0 string `xml:"arg0"`
		} `xml:"sayHello"`
	} `xml:"Body"`
}

// sayHello implements the HelloServiceBean sayHello operation.
func (s *Server) sayHello(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.soapFault(c, "unreadable request")
		return
	}

	var env sayHelloEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		s.soapFault(c, "malformed envelope")
		return
	}
	if env.Body.SayHello == nil {
		s.soapFault(c, "unknown operation")
		return
	}

	greeting := "Hello, " + env.Body.SayHello.Arg0 + "."
	var escaped strings.Builder
	xml.EscapeText(&escaped, []byte(greeting))
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(fmt.Sprintf(sayHelloResponse, escaped.String())))
}

func (s *Server) soapFault(c *gin.Context, reason string) {
	s.logger.Debug("soap fault", "reason", reason)
	c.Data(http.StatusInternalServerError, "text/xml; charset=utf-8", []byte(fmt.Sprintf(soapFault, reason)))
}
