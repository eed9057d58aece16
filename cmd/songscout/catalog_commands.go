package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"songscout/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the known-song catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCatalogListCommand(ctx))
	cmd.AddCommand(newCatalogImportCommand(ctx))
	cmd.AddCommand(newCatalogSetLyricsCommand(ctx))
	return cmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			songs, err := store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, songs)
			}
			rows := make([][]string, 0, len(songs))
			for _, song := range songs {
				embedding := "-"
				if len(song.Embedding) > 0 {
					embedding = fmt.Sprintf("%d dims", len(song.Embedding))
				}
				rows = append(rows, []string{
					song.SongID,
					song.Title,
					song.OriginalArtist,
					fmt.Sprintf("%d", len(song.Aliases)),
					embedding,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Artist", "Aliases", "Embedding"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

// catalogImportEntry is the JSON shape `catalog import` accepts.
type catalogImportEntry struct {
	SongID         string    `json:"song_id"`
	Title          string    `json:"title"`
	OriginalArtist string    `json:"original_artist"`
	Aliases        []string  `json:"aliases"`
	Embedding      []float64 `json:"embedding"`
	Lyrics         string    `json:"lyrics"`
	LyricsSource   string    `json:"lyrics_source"`
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <songs.json>",
		Short: "Import or update catalog songs from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var entries []catalogImportEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, entry := range entries {
				if entry.SongID == "" || entry.Title == "" {
					return fmt.Errorf("entry missing song_id or title: %+v", entry)
				}
				song := catalog.Song{
					SongID:         entry.SongID,
					Title:          entry.Title,
					OriginalArtist: entry.OriginalArtist,
					Aliases:        entry.Aliases,
					Embedding:      entry.Embedding,
				}
				if err := store.UpsertSong(cmd.Context(), song); err != nil {
					return err
				}
				if entry.Lyrics != "" {
					source := entry.LyricsSource
					if source == "" {
						source = "import"
					}
					if err := store.UpsertLyrics(cmd.Context(), entry.SongID, entry.Lyrics, source); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d songs\n", len(entries))
			return nil
		},
	}
}

func newCatalogSetLyricsCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "set-lyrics <song-id> <lyrics.txt>",
		Short: "Attach lyric text to a catalog song",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read lyrics file: %w", err)
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.UpsertLyrics(cmd.Context(), args[0], string(text), source)
		},
	}

	cmd.Flags().StringVar(&source, "source", "manual", "Where the lyric text came from")
	return cmd
}
