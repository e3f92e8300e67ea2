// Package results records smoke runs in PostgreSQL.
//
// Each suite execution becomes one row of smoke_runs, grouped by the run id
// shared by every suite of one `smoke run` invocation. The store is
// optional: when no database is configured the runner skips it.
package results
