// Package browser drives a headless Chromium through playwright-go for the
// suites that assert on rendered pages (counter, converter).
//
// Suites depend on the Page and Launcher interfaces only, so they can be
// exercised with a fake in tests without installing browsers.
package browser
