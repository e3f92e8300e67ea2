// Package targets holds one smoke suite per demo application.
//
// Every suite keeps the base-URL environment variable, default base and
// exit codes of the check it replaces, so CI jobs keyed on those codes keep
// working. Register adds them all to a suite.Registry.
package targets
