package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
	"rallycut/internal/detect"
	"rallycut/internal/services/vlm"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var (
		clipDuration  float64
		slideInterval float64
		gapTolerance  float64
		minRally      float64
		concurrency   int
		strict        bool
	)

	cmd := &cobra.Command{
		Use:   "detect <video-path>",
		Short: "Detect rallies in a video and store the result",
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

			applyDetectOverrides(cfg, cmd, clipDuration, slideInterval, gapTolerance, minRally, concurrency, strict)
			if err := cfg.Validate(); err != nil {
				return err
			}

			// One detection run per data directory at a time; parallel runs
			// would interleave writes to the same database.
			lock := flock.New(filepath.Join(cfg.Paths.DataDir, "detect.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire detect lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another detect run is already using %s", cfg.Paths.DataDir)
			}
			defer lock.Unlock()

			store, err := annotations.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			classifier := vlm.NewClient(vlm.Config{
				APIKey:         cfg.VLM.APIKey,
				BaseURL:        cfg.VLM.BaseURL,
				Model:          cfg.VLM.Model,
				TimeoutSeconds: cfg.VLM.TimeoutSeconds,
			})

			detector := detect.NewDetector(cfg, store, classifier, logger)
			result, err := detector.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Video %s: %d windows classified across %.1fs\n", result.VideoID, result.Windows, result.Duration)
			if len(result.Segments) == 0 {
				fmt.Fprintln(out, "No rallies detected")
				return nil
			}
			fmt.Fprintln(out, renderSegmentsTable(result.Segments))
			fmt.Fprintf(out, "Window journal: %s\n", result.JournalPath)
			return nil
		},
	}

	cmd.Flags().Float64Var(&clipDuration, "clip-duration", 0, "Window length in seconds")
	cmd.Flags().Float64Var(&slideInterval, "slide-interval", 0, "Window slide interval in seconds")
	cmd.Flags().Float64Var(&gapTolerance, "gap", 0, "Merge rallies separated by gaps up to this many seconds")
	cmd.Flags().Float64Var(&minRally, "min-rally", 0, "Drop rallies shorter than this many seconds")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent clip classifications")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on malformed model output instead of assuming no play")
	return cmd
}

func applyDetectOverrides(cfg *config.Config, cmd *cobra.Command, clipDuration, slideInterval, gapTolerance, minRally float64, concurrency int, strict bool) {
	if cmd.Flags().Changed("clip-duration") {
		cfg.Detection.ClipDuration = clipDuration
	}
	if cmd.Flags().Changed("slide-interval") {
		cfg.Detection.SlideInterval = slideInterval
	}
	if cmd.Flags().Changed("gap") {
		cfg.Merge.GapTolerance = gapTolerance
	}
	if cmd.Flags().Changed("min-rally") {
		cfg.Merge.MinRallySeconds = minRally
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Detection.Concurrency = concurrency
	}
	if cmd.Flags().Changed("strict") {
		cfg.VLM.Strict = strict
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "s"
}
