package runner

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rickgao/smokebench/internal/probe"
)

// Readiness backoff bounds.
const (
	readyInitialInterval = 250 * time.Millisecond
	readyMaxInterval     = 5 * time.Second
)

// WaitReady polls base until it answers any HTTP response or wait elapses.
// WebSocket bases are probed over their HTTP equivalent.
func WaitReady(ctx context.Context, client *probe.Client, base string, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	target := readinessURL(base)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = readyInitialInterval
	b.MaxInterval = readyMaxInterval

	_, err := backoff.Retry(ctx, func() (int, error) {
		resp, err := client.Get(ctx, target)
		if err != nil {
			return 0, err
		}
		return resp.Status, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(wait),
	)
	return err
}

func readinessURL(base string) string {
	switch {
	case strings.HasPrefix(base, "wss://"):
		return "https://" + strings.TrimPrefix(base, "wss://")
	case strings.HasPrefix(base, "ws://"):
		return "http://" + strings.TrimPrefix(base, "ws://")
	default:
		return base
	}
}
