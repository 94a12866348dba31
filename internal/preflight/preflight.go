package preflight

import (
	"context"

	"subsweep/internal/config"
	"subsweep/internal/services/jellyfin"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed reports whether a required check did not pass.
func (r Result) Failed() bool {
	return !r.Passed && !r.Optional
}

// ServerChecker is the slice of the Jellyfin client the connectivity check uses.
type ServerChecker interface {
	ServerInfo(ctx context.Context) (jellyfin.ServerInfo, error)
}

// RunAll executes every applicable check for cfg. server may be nil to skip
// the Jellyfin check.
func RunAll(ctx context.Context, cfg *config.Config, server ServerChecker) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Subtitle directory", cfg.Paths.SubtitleDir))
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Path
		}
		results = append(results, result)
	}

	if server != nil {
		results = append(results, CheckJellyfin(ctx, server))
	}
	return results
}

// AnyFailed reports whether any required check failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}
