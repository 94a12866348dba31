package artifacts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"subsweep/internal/library"
	"subsweep/internal/logging"
	"subsweep/internal/services"
)

// Store performs filesystem operations on the artifact tree.
type Store struct {
	fs     afero.Fs
	layout Layout
	logger *slog.Logger
}

// NewStore constructs a Store. A nil fs selects the OS filesystem.
func NewStore(fs afero.Fs, layout Layout, logger *slog.Logger) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{
		fs:     fs,
		layout: layout,
		logger: logging.NewComponentLogger(logger, "artifacts"),
	}
}

// Layout returns the path derivation used by the store.
func (s *Store) Layout() Layout {
	return s.layout
}

// HasExtractedSubtitles reports whether the episode directory holds at least
// one non-empty regular file. Only direct children are considered and contents
// are never parsed. Filesystem errors are logged and reported as absent so the
// episode is retried on the next pass.
func (s *Store) HasExtractedSubtitles(id library.EpisodeID) bool {
	dir := s.layout.Dir(id)
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false
		}
		logging.WarnWithContext(s.logger, "subtitle directory unreadable", "artifact_check_failed",
			logging.String(logging.FieldEpisodeID, id.String()),
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "episode treated as not yet extracted"),
		)
		return false
	}
	for _, entry := range entries {
		if entry.Mode().IsRegular() && entry.Size() > 0 {
			return true
		}
	}
	return false
}

// FileInfo describes one artifact for reporting.
type FileInfo struct {
	Name        string
	Size        int64
	Placeholder bool
}

// List returns the regular files in the episode directory sorted by name. A
// missing directory yields an empty list.
func (s *Store) List(id library.EpisodeID) ([]FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, s.layout.Dir(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransient, "artifacts", "list", id.String(), err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: entry.Size(), Placeholder: entry.Size() == 0})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Purge removes the episode directory and any staging leftovers.
func (s *Store) Purge(id library.EpisodeID) error {
	var errs []error
	for _, dir := range []string{s.layout.Dir(id), s.layout.StagingDir(id)} {
		if err := s.fs.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return services.Wrap(services.ErrTransient, "artifacts", "purge", id.String(), err)
	}
	return nil
}

// ReplaceWithPlaceholder deletes path if present and writes a zero-length file
// in its place. Paths outside the subtitle root are refused.
func (s *Store) ReplaceWithPlaceholder(path string) error {
	return ReplaceWithPlaceholder(s.fs, s.layout, path)
}

// ReplaceWithPlaceholder is the Store-independent form used by the cleaner.
func ReplaceWithPlaceholder(fs afero.Fs, layout Layout, path string) error {
	if !layout.Contains(path) {
		return services.Wrap(services.ErrValidation, "artifacts", "placeholder", fmt.Sprintf("%s is outside %s", path, layout.Root), nil)
	}
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrTransient, "artifacts", "placeholder", "remove "+path, err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "artifacts", "placeholder", "create parent of "+path, err)
	}
	if err := afero.WriteFile(fs, path, nil, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "artifacts", "placeholder", "write "+path, err)
	}
	return nil
}
