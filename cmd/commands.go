package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
	"github.com/MimeLyc/transcript-panel/internal/hotspot"
	"github.com/MimeLyc/transcript-panel/internal/library"
	"github.com/MimeLyc/transcript-panel/internal/subtitle"
	"github.com/MimeLyc/transcript-panel/internal/transcript"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <subtitle-file> <query>",
		Short: "List the matches of a query in a subtitle file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := subtitle.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctrl, err := transcript.NewController([]*subtitle.Track{track})
			if err != nil {
				return err
			}

			idx := ctrl.Search(args[1])
			matches := make([]transcript.Match, 0, idx.Total)
			for range idx.Total {
				m, ok := ctrl.CurrentMatch()
				if !ok {
					break
				}
				matches = append(matches, m)
				ctrl.NextMatch()
			}

			if asJSON {
				return writeJSON(cmd, matches)
			}
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No matches for %q\n", args[1])
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				text := ""
				if c, ok := track.Caption(m.CaptionID); ok {
					text = markMatch(c.Text, m.Offset, m.Length)
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d/%d", m.Ordinal, m.Total),
					m.CaptionID,
					formatTimestamp(m.StartTime),
					text,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Match", "Caption", "Start", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// markMatch brackets the runes [offset, offset+length) of the lower-cased
// text. Offsets line up with the original text since lower-casing maps
// rune by rune.
func markMatch(text string, offset, length int) string {
	runes := []rune(text)
	if offset < 0 || offset+length > len(runes) {
		return text
	}
	return string(runes[:offset]) + "[" + string(runes[offset:offset+length]) + "]" + string(runes[offset+length:])
}

func newActiveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "active <subtitle-file> <time>",
		Short: "Show the captions visible at a playback time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			t, err := parseTimestamp(args[1])
			if err != nil {
				return err
			}
			track, err := subtitle.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctrl, err := transcript.NewController(
				[]*subtitle.Track{track},
				transcript.WithSeekThreshold(cfg.Engine.ReasonableSeekThreshold),
			)
			if err != nil {
				return err
			}

			ctrl.Seek(t)
			active := ctrl.Active()
			if asJSON {
				return writeJSON(cmd, active)
			}
			if len(active) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No captions at %s\n", formatTimestamp(t))
				return nil
			}

			rows := make([][]string, 0, len(active))
			for _, c := range active {
				end := "-"
				if v, ok := c.CueEnd(); ok {
					end = formatTimestamp(v)
				}
				rows = append(rows, []string{c.ID, formatTimestamp(c.StartTime), end, c.Text})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Caption", "Start", "End", "Text"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTracksCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tracks [media-dir]",
		Short: "List media items and their subtitle tracks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Library.MediaDir
			if len(args) == 1 {
				root = args[0]
			}

			scanner := library.NewScanner(root, library.WithConcurrency(cfg.Library.Concurrency))
			media, err := scanner.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, media)
			}
			if len(media) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No media found in %s\n", root)
				return nil
			}

			var rows [][]string
			for _, m := range media {
				if len(m.Tracks) == 0 {
					rows = append(rows, []string{m.ID, "-", "-", "-", ""})
					continue
				}
				for _, tf := range m.Tracks {
					lang := tf.Language
					if lang == "" {
						lang = "?"
					}
					rows = append(rows, []string{m.ID, lang, tf.Label, tf.Format, tf.Path})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Media", "Language", "Label", "Format", "Path"},
				rows,
				nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newHotspotsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "hotspots <hotspot-file> <time>",
		Short: "Show the hotspots visible at a playback time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			t, err := parseTimestamp(args[1])
			if err != nil {
				return err
			}
			spots, err := hotspot.Load(args[0])
			if err != nil {
				return err
			}

			overlay := hotspot.NewOverlay(spots, cuepoint.WithReasonableSeekThreshold(cfg.Engine.ReasonableSeekThreshold))
			visible := overlay.At(t)
			if asJSON {
				if visible == nil {
					visible = []*hotspot.Hotspot{}
				}
				return writeJSON(cmd, visible)
			}
			if len(visible) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No hotspots at %s\n", formatTimestamp(t))
				return nil
			}

			rows := make([][]string, 0, len(visible))
			for _, h := range visible {
				rows = append(rows, []string{h.ID, h.Label, formatRect(h.Rect), h.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Label", "Rect", "URL"},
				rows,
				nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func formatRect(r hotspot.Rect) string {
	parts := []string{
		strconv.FormatFloat(r.X, 'f', -1, 64),
		strconv.FormatFloat(r.Y, 'f', -1, 64),
		strconv.FormatFloat(r.Width, 'f', -1, 64),
		strconv.FormatFloat(r.Height, 'f', -1, 64),
	}
	return strings.Join(parts, " ")
}
