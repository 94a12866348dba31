package jellyfin

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"subsweep/internal/library"
	"subsweep/internal/logging"
	"subsweep/internal/services"
)

type itemsResponse struct {
	Items            []itemDTO `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
	StartIndex       int       `json:"StartIndex"`
}

type itemDTO struct {
	ID           string           `json:"Id"`
	Name         string           `json:"Name"`
	SeriesName   string           `json:"SeriesName"`
	Type         string           `json:"Type"`
	Path         string           `json:"Path"`
	Container    string           `json:"Container"`
	LocationType string           `json:"LocationType"`
	MediaSources []mediaSourceDTO `json:"MediaSources"`
}

type mediaSourceDTO struct {
	ID           string           `json:"Id"`
	Path         string           `json:"Path"`
	Container    string           `json:"Container"`
	Protocol     string           `json:"Protocol"`
	MediaStreams []mediaStreamDTO `json:"MediaStreams"`
}

type mediaStreamDTO struct {
	Index      int    `json:"Index"`
	Type       string `json:"Type"`
	Language   string `json:"Language"`
	Codec      string `json:"Codec"`
	Title      string `json:"Title"`
	IsExternal bool   `json:"IsExternal"`
	Path       string `json:"Path"`
}

// episodeQuery returns the filter shared by counts and pages: video episodes
// that exist on disk, optionally below one root.
func episodeQuery(root library.RootID) url.Values {
	q := url.Values{}
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Episode")
	q.Set("MediaTypes", "Video")
	q.Set("ExcludeLocationTypes", "Virtual")
	q.Set("IsMissing", "false")
	if root != library.AllRoots {
		q.Set("ParentId", string(root))
	}
	return q
}

// CountEpisodes returns the number of episodes below root.
func (c *Client) CountEpisodes(ctx context.Context, root library.RootID) (int, error) {
	q := episodeQuery(root)
	q.Set("Limit", "0")
	q.Set("EnableTotalRecordCount", "true")

	var resp itemsResponse
	if err := c.getJSON(ctx, "/Items", q, &resp); err != nil {
		return 0, err
	}
	return resp.TotalRecordCount, nil
}

// ListEpisodes returns one page of episodes below root in a stable order.
func (c *Client) ListEpisodes(ctx context.Context, root library.RootID, start, limit int) ([]library.Episode, error) {
	q := episodeQuery(root)
	q.Set("StartIndex", strconv.Itoa(start))
	q.Set("Limit", strconv.Itoa(limit))
	q.Set("Fields", "MediaSources,Path")
	q.Set("SortBy", "SeriesSortName,ParentIndexNumber,IndexNumber,SortName")
	q.Set("SortOrder", "Ascending")
	q.Set("EnableTotalRecordCount", "false")
	q.Set("EnableImages", "false")

	var resp itemsResponse
	if err := c.getJSON(ctx, "/Items", q, &resp); err != nil {
		return nil, err
	}
	return c.convertItems(resp.Items), nil
}

// Episode fetches a single episode with its media sources.
func (c *Client) Episode(ctx context.Context, id library.EpisodeID) (library.Episode, error) {
	q := url.Values{}
	q.Set("Ids", strings.ReplaceAll(id.String(), "-", ""))
	q.Set("Fields", "MediaSources,Path")

	var resp itemsResponse
	if err := c.getJSON(ctx, "/Items", q, &resp); err != nil {
		return library.Episode{}, err
	}
	episodes := c.convertItems(resp.Items)
	if len(episodes) == 0 {
		return library.Episode{}, services.Wrap(services.ErrNotFound, "jellyfin", "episode", id.String(), nil)
	}
	return episodes[0], nil
}

func (c *Client) convertItems(items []itemDTO) []library.Episode {
	episodes := make([]library.Episode, 0, len(items))
	for _, item := range items {
		id, err := library.ParseEpisodeID(item.ID)
		if err != nil {
			logging.WarnWithContext(c.logger, "skipping item with malformed id", "jellyfin_bad_item_id",
				logging.String("item_id", item.ID),
				logging.String("name", item.Name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "item is not scanned"),
			)
			continue
		}
		episodes = append(episodes, convertEpisode(id, item))
	}
	return episodes
}

func convertEpisode(id library.EpisodeID, item itemDTO) library.Episode {
	episode := library.Episode{
		ID:         id,
		Name:       strings.TrimSpace(item.Name),
		SeriesName: strings.TrimSpace(item.SeriesName),
	}
	for _, src := range item.MediaSources {
		source := library.MediaSource{
			ID:        src.ID,
			EpisodeID: id,
			Path:      src.Path,
			Container: src.Container,
		}
		if source.ID == "" {
			source.ID = item.ID
		}
		if source.Path == "" {
			source.Path = item.Path
		}
		for _, s := range src.MediaStreams {
			source.Streams = append(source.Streams, library.MediaStream{
				Index:      s.Index,
				Type:       library.ParseStreamType(s.Type),
				Language:   strings.TrimSpace(s.Language),
				Codec:      strings.ToLower(strings.TrimSpace(s.Codec)),
				Title:      s.Title,
				IsExternal: s.IsExternal,
				Path:       s.Path,
			})
		}
		episode.Sources = append(episode.Sources, source)
	}
	if len(episode.Sources) == 0 && strings.TrimSpace(item.Path) != "" {
		episode.Sources = []library.MediaSource{{
			ID:        item.ID,
			EpisodeID: id,
			Path:      item.Path,
			Container: item.Container,
		}}
	}
	return episode
}
