// Package schedule runs library scans one at a time, on demand or on a cron
// schedule.
//
// Runner guards every run twice: an in-process singleflight group folds
// overlapping triggers into the run already in flight, and a gofrs/flock file
// lock keeps a CLI scan and the daemon (or two daemons) from scanning the same
// library concurrently. Each finished run is recorded in the history journal
// when one is configured.
package schedule
