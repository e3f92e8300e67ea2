package check

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func newTestReporter(opts ...Option) (*Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	opts = append([]Option{WithColor(false)}, opts...)
	return NewReporter(&out, &errOut, opts...), &out, &errOut
}

func TestReporter_Streams(t *testing.T) {
	r, out, errOut := newTestReporter()

	r.Passf("GET %s -> %d", "/index.html", 200)
	r.Infof("BASE = %s", "http://localhost:8080")
	r.Warnf("GET %s -> %d", "/resources/css/default.css", 404)
	r.Failf("WS connect -> %s", "refused")

	wantOut := "[PASS] GET /index.html -> 200\n[INFO] BASE = http://localhost:8080\n"
	if out.String() != wantOut {
		t.Errorf("stdout = %q, want %q", out.String(), wantOut)
	}
	wantErr := "[WARN] GET /resources/css/default.css -> 404\n[FAIL] WS connect -> refused\n"
	if errOut.String() != wantErr {
		t.Errorf("stderr = %q, want %q", errOut.String(), wantErr)
	}
	if r.Warnings() != 1 {
		t.Errorf("Warnings() = %d, want 1", r.Warnings())
	}
	if r.Passes() != 1 {
		t.Errorf("Passes() = %d, want 1", r.Passes())
	}
}

func TestReporter_Verbosef(t *testing.T) {
	t.Run("quiet", func(t *testing.T) {
		r, out, _ := newTestReporter()
		r.Verbosef("GET %s", "http://x")
		if out.Len() != 0 {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("verbose", func(t *testing.T) {
		r, out, _ := newTestReporter(WithVerbose(true))
		r.Verbosef("GET %s", "http://x")
		if out.String() != "GET http://x\n" {
			t.Errorf("output = %q", out.String())
		}
		if !r.Verbose() {
			t.Error("Verbose() = false")
		}
	})
}

func TestReporter_Soft(t *testing.T) {
	r, out, errOut := newTestReporter()

	if !r.Soft(true, "Valid HTML structure", "Invalid HTML structure") {
		t.Error("Soft(true) returned false")
	}
	if r.Soft(false, "Servlet title found", "Servlet title not found") {
		t.Error("Soft(false) returned true")
	}

	if !strings.Contains(out.String(), "[PASS] Valid HTML structure") {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[WARN] Servlet title not found") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if r.Warnings() != 1 {
		t.Errorf("Warnings() = %d, want 1", r.Warnings())
	}
}

func TestReporter_Named(t *testing.T) {
	r, out, errOut := newTestReporter(WithVerbose(true))
	child := r.Named("dukeetf2")

	child.Passf("GET /index.html -> 200")
	child.Warnf("css missing")
	child.Verbosef("WS recv#1")

	wantOut := "[PASS] dukeetf2: GET /index.html -> 200\ndukeetf2: WS recv#1\n"
	if out.String() != wantOut {
		t.Errorf("stdout = %q, want %q", out.String(), wantOut)
	}
	if errOut.String() != "[WARN] dukeetf2: css missing\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
	if child.Warnings() != 1 || r.Warnings() != 0 {
		t.Errorf("warnings: child=%d parent=%d, want 1 and 0", child.Warnings(), r.Warnings())
	}
}

func TestReporter_ConcurrentLines(t *testing.T) {
	r, out, _ := newTestReporter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child := r.Named(fmt.Sprintf("suite-%d", i))
			for j := 0; j < 50; j++ {
				child.Passf("line %d", j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[PASS] suite-") {
			t.Fatalf("interleaved line %q", line)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"failure", Failf(5, "WS values unchanged"), 5},
		{"wrapped failure", fmt.Errorf("suite dukeetf: %w", Failf(2, "index")), 2},
		{"wrap helper", Wrap(3, errors.New("refused"), "WS connect"), 3},
		{"plain error", errors.New("boom"), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	f := Wrap(5, cause, "WS connect")

	if f.Error() != "WS connect -> connection refused" {
		t.Errorf("Error() = %q", f.Error())
	}
	if !errors.Is(f, cause) {
		t.Error("Wrap should keep the cause")
	}
}

func TestReport(t *testing.T) {
	r, _, errOut := newTestReporter()

	r.Report(nil)
	if errOut.Len() != 0 {
		t.Errorf("Report(nil) wrote %q", errOut.String())
	}

	r.Report(Failf(6, "DukeETF values unchanged after %ds: %s", 5, "101.00/2000"))
	if errOut.String() != "[FAIL] DukeETF values unchanged after 5s: 101.00/2000\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}
