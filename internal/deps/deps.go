// Package deps reports whether the external binaries subsweep shells out to
// are installed.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement describes an external binary subsweep invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement. Path holds the resolved
// executable when Available is true.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Missing reports whether a required (non-optional) binary is unavailable.
func (s Status) Missing() bool {
	return !s.Available && !s.Optional
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Commands containing a path separator are checked in place; bare names are
// searched on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		path, err := resolve(cmd)
		if err != nil {
			status.Detail = err.Error()
		} else {
			status.Available = true
			status.Path = path
		}
		results = append(results, status)
	}
	return results
}

func resolve(cmd string) (string, error) {
	if cmd == "" {
		return "", fmt.Errorf("command not configured")
	}
	if !strings.ContainsRune(cmd, filepath.Separator) {
		path, err := exec.LookPath(cmd)
		if err != nil {
			return "", fmt.Errorf("binary %q not found in PATH", cmd)
		}
		return path, nil
	}
	info, err := os.Stat(cmd)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("binary %s does not exist", cmd)
		}
		return "", fmt.Errorf("stat %s: %v", cmd, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", cmd)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s is not executable", cmd)
	}
	return cmd, nil
}
