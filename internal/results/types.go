package results

import (
	"time"

	"github.com/google/uuid"
)

// Outcomes stored in smoke_runs.outcome.
const (
	OutcomePass = "pass"
	OutcomeFail = "fail"
)

// Run is one suite execution.
type Run struct {
	RunID     uuid.UUID
	Suite     string
	BaseURL   string
	ExitCode  int
	Warnings  int
	Message   string // Failure message, empty on pass
	StartedAt time.Time
	Duration  time.Duration
}

// Outcome derives the stored outcome from the exit code.
func (r Run) Outcome() string {
	if r.ExitCode == 0 {
		return OutcomePass
	}
	return OutcomeFail
}
