// Package suite defines the Suite interface implemented by each target's
// smoke checks, the per-run Env handed to it, and the Registry the runner
// selects suites from.
package suite
