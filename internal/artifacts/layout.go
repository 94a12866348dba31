package artifacts

import (
	"path/filepath"
	"strings"

	"subsweep/internal/library"
)

const stagingDirName = ".staging"

// Layout derives artifact paths below a subtitle root.
type Layout struct {
	Root string
}

// NewLayout returns a Layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// Dir returns the artifact directory for an episode.
func (l Layout) Dir(id library.EpisodeID) string {
	return filepath.Join(l.Root, id.Shard(), id.String())
}

// StagingDir returns the scratch directory used while extracting an episode.
// It sits outside every shard so partial output never counts as present.
func (l Layout) StagingDir(id library.EpisodeID) string {
	return filepath.Join(l.Root, stagingDirName, id.String())
}

// File returns the path of name inside the episode directory.
func (l Layout) File(id library.EpisodeID, name string) string {
	return filepath.Join(l.Dir(id), filepath.Base(name))
}

// Contains reports whether path lies strictly below the root.
func (l Layout) Contains(path string) bool {
	rel, err := filepath.Rel(l.Root, filepath.Clean(path))
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
