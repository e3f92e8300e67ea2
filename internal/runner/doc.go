// Package runner executes selected smoke suites.
//
// For each suite the runner resolves the base URL (explicit override, then
// the suite's environment variable, then the config file target entry, then
// the suite default), optionally waits for the target to answer HTTP, runs
// the suite with its own probe client and reporter, and collects a Result.
// Suites run with bounded parallelism; when more than one suite runs, each
// output line is prefixed with the suite name.
//
// Results are printed as a summary table and, when a Recorder is
// configured, persisted to the run-history database.
package runner
