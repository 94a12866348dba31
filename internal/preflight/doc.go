// Package preflight provides readiness checks for the filesystem paths,
// external binaries and Jellyfin server that subsweep depends on.
//
// These checks run in two contexts:
//   - "subsweep config validate" renders every result and fails when a
//     required check does not pass.
//   - The daemon runs them once at startup and logs failures as warnings, so
//     a misconfigured host is visible before the first scheduled scan.
//
// The Jellyfin check only runs when a ServerChecker is supplied.
package preflight
