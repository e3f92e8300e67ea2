package targets

import (
	"context"
	"regexp"
	"strings"

	"github.com/rickgao/smokebench/internal/suite"
)

var (
	moodRe    = regexp.MustCompile(`Duke's mood is: ([^<]+)`)
	dukeImgRe = regexp.MustCompile(`<img src="([^"]+)" alt="([^"]+)"`)
)

// Mood checks the servlet + filter demo whose page shows Duke's mood for the
// time of day.
type Mood struct {
	info
}

// NewMood creates the mood suite.
func NewMood() *Mood {
	return &Mood{info{
		name:        "mood",
		description: "Servlet + filter: /report shows Duke's mood and image",
		envVar:      "MOOD_BASE",
		defaultBase: "http://localhost:9080/mood-10-SNAPSHOT",
	}}
}

// Run implements suite.Suite. Exit codes: 2 /report failed, 9 network
// error. Content checks only warn.
func (s *Mood) Run(ctx context.Context, env *suite.Env) error {
	resp, err := mustGetOK(ctx, env, "/report", 2, 9)
	if err != nil {
		return err
	}
	body := resp.Body

	if m := moodRe.FindStringSubmatch(body); m != nil {
		env.Report.Passf("Mood displayed: %s", strings.TrimSpace(m[1]))
	} else {
		env.Report.Warnf("Mood not found in response")
	}

	if m := dukeImgRe.FindStringSubmatch(body); m != nil {
		env.Report.Verbosef("image src=%s", m[1])
		env.Report.Passf("Duke image displayed: %s", m[2])
	} else {
		env.Report.Warnf("Duke image not found in response")
	}

	env.Report.Soft(
		strings.Contains(body, "<html") && strings.Contains(body, "<head>") && strings.Contains(body, "<body>"),
		"Valid HTML structure",
		"Invalid HTML structure",
	)
	env.Report.Soft(strings.Contains(body, "Servlet MoodServlet"), "Servlet title found", "Servlet title not found")

	env.Report.Passf("Smoke sequence complete")
	return nil
}
