package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"subsweep/internal/artifacts"
	"subsweep/internal/language"
	"subsweep/internal/library"
	"subsweep/internal/subtitles"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var showStreams bool

	cmd := &cobra.Command{
		Use:   "check <episode-id>",
		Short: "Show the extraction state of one episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := library.ParseEpisodeID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger("stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			p, err := buildPipeline(cfg, logger, pipelineOverrides{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode:    %s\n", id)
			fmt.Fprintf(out, "Directory:  %s\n", p.store.Layout().Dir(id))
			fmt.Fprintf(out, "Extracted:  %s\n", yesNo(p.store.HasExtractedSubtitles(id)))
			fmt.Fprintf(out, "Languages:  %s\n", cfg.LanguageFilter())

			if err := printArtifacts(out, p.store, id); err != nil {
				return err
			}
			if !showStreams {
				return nil
			}

			episode, err := p.index.Episode(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("look up episode: %w", err)
			}
			fmt.Fprintf(out, "\n%s\n", episode.Label())
			printStreamDecisions(out, p, episode, cfg.LanguageFilter())
			return nil
		},
	}

	cmd.Flags().BoolVar(&showStreams, "streams", false, "Query Jellyfin and show the keep/discard decision per subtitle stream")
	return cmd
}

func printArtifacts(out io.Writer, store *artifacts.Store, id library.EpisodeID) error {
	files, err := store.List(id)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No subtitle files")
		return nil
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		kind := "subtitle"
		if f.Placeholder {
			kind = "placeholder"
		}
		rows = append(rows, []string{f.Name, kind, formatBytes(f.Size)})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Kind", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	return nil
}

func printStreamDecisions(out io.Writer, p *pipeline, episode library.Episode, filter language.Filter) {
	rows := [][]string{}
	for _, source := range episode.Sources {
		if source.EpisodeID.IsZero() {
			source.EpisodeID = episode.ID
		}
		for _, stream := range source.SubtitleStreams() {
			decision := "keep"
			if !language.ShouldExtract(stream.Language, filter) {
				decision = "discard"
			}
			file := ""
			switch {
			case stream.IsExternal:
				file = "(external file)"
			case !subtitles.IsTextCodec(stream.Codec):
				file = "(not extractable)"
			default:
				if path, err := p.extractor.ResolveSubtitleFilePath(stream, source); err == nil {
					file = filepath.Base(path)
				}
			}
			rows = append(rows, []string{
				strconv.Itoa(stream.Index),
				language.DisplayName(stream.Language),
				stream.Codec,
				decision,
				file,
			})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No subtitle streams")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stream", "Language", "Codec", "Decision", "File"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}
