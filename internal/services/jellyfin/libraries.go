package jellyfin

import (
	"context"
	"strings"

	"subsweep/internal/library"
	"subsweep/internal/logging"
)

type virtualFolderDTO struct {
	Name           string   `json:"Name"`
	ItemID         string   `json:"ItemId"`
	CollectionType string   `json:"CollectionType"`
	Locations      []string `json:"Locations"`
}

// Library is a configured library (virtual folder) on the server.
type Library struct {
	Name           string
	Root           library.RootID
	CollectionType string
	Locations      []string
}

// Libraries lists the server's libraries.
func (c *Client) Libraries(ctx context.Context) ([]Library, error) {
	var folders []virtualFolderDTO
	if err := c.getJSON(ctx, "/Library/VirtualFolders", nil, &folders); err != nil {
		return nil, err
	}
	out := make([]Library, 0, len(folders))
	for _, f := range folders {
		if strings.TrimSpace(f.ItemID) == "" {
			continue
		}
		out = append(out, Library{
			Name:           strings.TrimSpace(f.Name),
			Root:           library.RootID(f.ItemID),
			CollectionType: f.CollectionType,
			Locations:      f.Locations,
		})
	}
	return out, nil
}

// ResolveRoots maps library names to root ids, matching case-insensitively.
// Names that match nothing are logged and dropped; the result keeps the order
// of names and contains no duplicates.
func (c *Client) ResolveRoots(ctx context.Context, names []string) ([]library.RootID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	libs, err := c.Libraries(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]library.RootID, len(libs))
	for _, lib := range libs {
		key := strings.ToLower(lib.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = lib.Root
		}
	}

	seen := make(map[library.RootID]struct{}, len(names))
	roots := make([]library.RootID, 0, len(names))
	for _, name := range names {
		root, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			logging.WarnWithContext(c.logger, "library name not found", "jellyfin_library_missing",
				logging.String("library", name),
				logging.String(logging.FieldImpact, "library is not scanned"),
				logging.String(logging.FieldErrorHint, "check extraction.library_names against the server's library names"),
			)
			continue
		}
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots, nil
}
