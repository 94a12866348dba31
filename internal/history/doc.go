// Package history keeps a SQLite journal of scan runs.
//
// Each finished run (successful, failed or cancelled) becomes one row with its
// counters, status classification and timing. The journal backs the
// `subsweep history` command and is pruned to a fixed number of rows by the
// scheduler. The schema is managed by embedded, ordered SQL migrations
// recorded in schema_migrations.
package history
