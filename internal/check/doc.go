// Package check prints smoke-check outcomes and maps failures to exit codes.
//
// Output follows a fixed line format so that logs from every suite look the
// same:
//
//	[PASS] GET /index.html -> 200      (stdout)
//	[INFO] Base discovered: ...        (stdout)
//	[WARN] GET /resources/... -> 404   (stderr)
//	[FAIL] WS connect -> ...           (stderr)
package check
