package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
	"rallycut/internal/download"
	"rallycut/internal/timeline"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "videos",
		Short: "List videos with detection results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *annotations.Store) error {
				summaries, err := store.Videos(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					fmt.Fprintln(out, "No videos recorded; run `rallycut detect` first")
					return nil
				}

				rows := make([][]string, 0, len(summaries))
				for _, summary := range summaries {
					rows = append(rows, []string{
						summary.VideoID,
						download.DisplayTitle(summary.VideoID),
						formatSeconds(summary.DurationSeconds),
						strconv.Itoa(summary.AutoSegments),
						yesNo(summary.Corrected),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Duration", "Rallies", "Corrected"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newRalliesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rallies <video-id>",
		Short: "Show the rally timeline for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *annotations.Store) error {
				videoID := args[0]
				record, err := store.Resolved(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(record.Segments) == 0 {
					fmt.Fprintf(out, "No rallies recorded for %s\n", videoID)
					return nil
				}
				fmt.Fprintln(out, renderSegmentsTable(record.Segments))
				return nil
			})
		},
	}
}

func renderSegmentsTable(segments []timeline.RallySegment) string {
	rows := make([][]string, 0, len(segments))
	for i, segment := range segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatSeconds(segment.Start),
			formatSeconds(segment.End),
			formatSeconds(segment.Duration()),
			string(segment.Status),
			yesNo(segment.Keep),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Length", "Status", "Keep"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	)
}
