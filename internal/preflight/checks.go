package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"subsweep/internal/config"
	"subsweep/internal/deps"
	"subsweep/internal/services"
)

const jellyfinCheckTimeout = 10 * time.Second

// CheckJellyfin verifies Jellyfin connectivity and authentication.
func CheckJellyfin(ctx context.Context, server ServerChecker) Result {
	const name = "Jellyfin"

	checkCtx, cancel := context.WithTimeout(ctx, jellyfinCheckTimeout)
	defer cancel()

	info, err := server.ServerInfo(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeJellyfinError(err)}
	}
	detail := "Reachable"
	if info.ServerName != "" {
		detail = fmt.Sprintf("%s (version %s)", info.ServerName, info.Version)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the binaries the extraction pipeline invokes.
// ffprobe is only required when probe_missing_streams is enabled.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Extraction.FFmpegBinary,
			Description: "Required for subtitle extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Extraction.FFprobeBinary,
			Description: "Inspects files Jellyfin reports without stream data",
			Optional:    !cfg.Extraction.ProbeMissingStreams,
		},
	}
	return deps.CheckBinaries(requirements)
}

func summarizeJellyfinError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out waiting for server"
	case errors.Is(err, services.ErrConfiguration):
		return "auth failed (check jellyfin.api_key)"
	case errors.Is(err, services.ErrTransient):
		return fmt.Sprintf("unreachable (%v)", err)
	default:
		return err.Error()
	}
}
