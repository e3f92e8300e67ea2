package targets

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rickgao/smokebench/internal/check"
	"github.com/rickgao/smokebench/internal/probe"
	"github.com/rickgao/smokebench/internal/suite"
)

// HelloServlet checks the greeting servlet: a named greeting succeeds and a
// missing name is rejected with a 4xx.
type HelloServlet struct {
	info
}

// NewHelloServlet creates the hello-servlet suite.
func NewHelloServlet() *HelloServlet {
	return &HelloServlet{info{
		name:        "hello-servlet",
		description: "Greeting servlet: /greeting?name=N echoes N, missing name is a 4xx",
		envVar:      "HELLO_BASE",
		defaultBase: "http://localhost:8080/",
	}}
}

// Run implements suite.Suite. Exit codes: 2 named greeting failed,
// 3 missing name accepted, 4 network error.
func (s *HelloServlet) Run(ctx context.Context, env *suite.Env) error {
	name := env.EnvOr("SMOKE_NAME", "SmokeUser")
	base := strings.TrimRight(env.Base, "/")

	target := base + "/greeting?" + url.Values{"name": {name}}.Encode()
	env.Report.Verbosef("GET %s", target)
	resp, err := env.HTTP.Get(ctx, target)
	if err != nil {
		return check.Wrap(4, err, target)
	}
	if resp.Status != http.StatusOK || !strings.Contains(resp.Body, name) {
		return check.Failf(2, "GET %s expected 200 and body containing %q, got %d, body=%q",
			target, name, resp.Status, resp.Snippet(200))
	}
	env.Report.Passf("GET /greeting?name=... -> 200, contains %q", name)

	target = base + "/greeting"
	env.Report.Verbosef("GET %s (missing 'name')", target)
	resp, err = env.HTTP.Get(ctx, target)
	if err != nil {
		return check.Wrap(4, err, target)
	}
	if resp.Status < 400 || resp.Status >= 500 {
		return check.Failf(3, "GET %s expected 4xx, got %d", target, resp.Status)
	}
	if !strings.Contains(strings.ToLower(resp.Body), "name") {
		env.Report.Warnf("Missing 'name' hint in error body (status %d)", resp.Status)
	}
	env.Report.Passf("GET /greeting (no name) -> %d", resp.Status)

	env.Report.Passf("Smoke sequence complete")
	return nil
}

// JaxrsHello checks the JAX-RS hello resource.
type JaxrsHello struct {
	info
}

// NewJaxrsHello creates the jaxrs-hello suite.
func NewJaxrsHello() *JaxrsHello {
	return &JaxrsHello{info{
		name:        "jaxrs-hello",
		description: "JAX-RS hello resource: /helloworld returns 200 text/html",
		envVar:      "HELLO_BASE",
		defaultBase: "http://localhost:9080/jaxrs-hello-10-SNAPSHOT",
	}}
}

// Run implements suite.Suite. Exit codes: 2 bad status or content type,
// 9 network error.
func (s *JaxrsHello) Run(ctx context.Context, env *suite.Env) error {
	base := strings.TrimRight(env.Base, "/")
	env.Report.Infof("BASE = %s", base)

	target := probe.Join(base, "/helloworld")
	env.Report.Verbosef("GET %s", target)
	resp, err := env.HTTP.Get(ctx, target)
	if err != nil {
		return check.Wrap(9, err, "GET /helloworld")
	}
	if resp.Status != http.StatusOK {
		return check.Failf(2, "GET /helloworld -> HTTP %d", resp.Status)
	}
	if resp.MediaType() != "text/html" {
		return check.Failf(2, "GET /helloworld -> unexpected Content-Type %q", resp.ContentType)
	}
	env.Report.Passf("GET /helloworld -> 200 text/html")

	env.Report.Passf("Smoke sequence complete")
	return nil
}

const sayHelloEnvelope = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"
                  xmlns:hel="http://ejb.helloservice.tutorial.jakarta/">
   <soapenv:Header/>
   <soapenv:Body>
      <hel:sayHello>
         <arg0>John</arg0>
      </hel:sayHello>
   </soapenv:Body>
</soapenv:Envelope>
`

// HelloService calls the sayHello SOAP operation. The base URL is the
// service endpoint itself.
type HelloService struct {
	info
}

// NewHelloService creates the helloservice suite.
func NewHelloService() *HelloService {
	return &HelloService{info{
		name:        "helloservice",
		description: "SOAP web service: sayHello(John) answers \"Hello, John.\"",
		envVar:      "HELLO_SERVICE_URL",
		defaultBase: "http://localhost:8080/helloservice/HelloServiceBean",
	}}
}

// Run implements suite.Suite. Every failure exits with 1.
func (s *HelloService) Run(ctx context.Context, env *suite.Env) error {
	env.Report.Verbosef("POST %s", env.Base)
	resp, err := env.HTTP.PostXML(ctx, env.Base, sayHelloEnvelope)
	if err != nil {
		return check.Wrap(1, err, "Connection error")
	}
	if resp.Status >= 400 {
		return check.Failf(1, "HTTP error %d: %s", resp.Status, http.StatusText(resp.Status))
	}
	if !strings.Contains(resp.Body, "Hello, John.") {
		return check.Failf(1, "Validation failed: 'Hello, John.' not found in response.")
	}
	env.Report.Passf("Validation passed: 'Hello, John.' found in response.")
	return nil
}
