package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
	"rallycut/internal/cutter"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var streamCopy bool

	cmd := &cobra.Command{
		Use:   "export <video-id>",
		Short: "Export kept rallies as standalone clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *annotations.Store) error {
				if cmd.Flags().Changed("stream-copy") {
					cfg.Export.StreamCopy = streamCopy
				}

				result, err := cutter.NewCutter(cfg, store, logger).Export(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, path := range result.Succeeded {
					fmt.Fprintf(out, "Exported %s\n", path)
				}
				if result.Skipped > 0 {
					fmt.Fprintf(out, "Skipped %d discarded segment(s)\n", result.Skipped)
				}
				if len(result.Failed) > 0 {
					for _, path := range result.Failed {
						fmt.Fprintf(out, "Failed %s\n", path)
					}
					return fmt.Errorf("%d of %d exports failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&streamCopy, "stream-copy", false, "Stream copy instead of re-encoding (fast, cuts land on keyframes)")
	return cmd
}
