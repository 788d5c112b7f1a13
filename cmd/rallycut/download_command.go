package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rallycut/internal/download"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var quality string
	var audioOnly bool
	var formatID string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a source video with yt-dlp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			downloader := download.NewDownloader(cfg, logger)
			result, err := downloader.Download(cmd.Context(), args[0], download.Options{
				Quality:   quality,
				AudioOnly: audioOnly,
				FormatID:  formatID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloaded %s\n", result.Path)
			fmt.Fprintf(out, "Video id: %s\n", result.VideoID)
			return nil
		},
	}

	cmd.Flags().StringVar(&quality, "quality", "", "Video quality cap (best, 1080, 720, 480, 360)")
	cmd.Flags().BoolVar(&audioOnly, "audio-only", false, "Download audio only as mp3")
	cmd.Flags().StringVar(&formatID, "format", "", "Explicit yt-dlp format id")
	return cmd
}
