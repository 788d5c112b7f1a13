package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rallycut/internal/annotations"
	"rallycut/internal/annotator"
	"rallycut/internal/config"
)

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Serve the rally correction API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *annotations.Store) error {
				addr := cfg.Annotator.Bind
				if cmd.Flags().Changed("bind") {
					addr = bind
				}

				server := annotator.NewServer(addr, annotator.Deps{Store: store, Logger: logger})

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				errCh := make(chan error, 1)
				go func() { errCh <- server.Start() }()

				select {
				case err := <-errCh:
					return err
				case <-runCtx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return <-errCh
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (host:port)")
	return cmd
}
