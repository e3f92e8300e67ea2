package targets

import (
	"context"
	"strconv"
	"strings"

	"github.com/rickgao/smokebench/internal/browser"
	"github.com/rickgao/smokebench/internal/suite"
)

// Converter checks the currency converter form in a browser.
type Converter struct {
	info

	Amount int
	Expect []string // Result lines for Amount
}

// NewConverter creates the converter suite.
func NewConverter() *Converter {
	return &Converter{
		info: info{
			name:        "converter",
			description: "Currency converter (browser): form prompt, dollars to yen to euro",
			envVar:      "CONVERTER_BASE_URL",
			defaultBase: "http://localhost:9080",
		},
		Amount: 5,
		Expect: []string{"5 dollars are 521.70 yen.", "521.70 yen are 3.66 Euro."},
	}
}

// Run implements suite.Suite. Exit code 1 when any check failed.
func (s *Converter) Run(ctx context.Context, env *suite.Env) error {
	page, home, err := openHome(ctx, env, "CONVERTER_HOME_URI", "/converter")
	if err != nil {
		return err
	}
	defer page.Close()

	t := &tally{report: env.Report}

	html, err := pageContent(page, home)
	if err != nil {
		env.Report.Verbosef("visit %s: %v", home, err)
	}
	t.record(err == nil && strings.Contains(html, "Enter a dollar amount to convert:"),
		"Page loaded successfully and contains expected text.",
		"Page did not contain expected text.")

	t.record(s.convert(env, page),
		"Conversion displayed correctly.",
		"Conversion not displayed as expected.")

	return t.result()
}

// convert submits the form for Amount and checks the result page.
func (s *Converter) convert(env *suite.Env, page browser.Page) bool {
	if err := page.FillByTitle("Amount", strconv.Itoa(s.Amount)); err != nil {
		env.Report.Verbosef("fill amount: %v", err)
		return false
	}
	if err := page.ClickButton("Submit"); err != nil {
		env.Report.Verbosef("submit: %v", err)
		return false
	}
	html, err := page.Content()
	if err != nil {
		env.Report.Verbosef("read result: %v", err)
		return false
	}
	for _, want := range s.Expect {
		if !strings.Contains(html, want) {
			env.Report.Verbosef("result page missing %q", want)
			return false
		}
	}
	return true
}
