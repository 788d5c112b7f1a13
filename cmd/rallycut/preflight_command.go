package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rallycut/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, disk space, binaries, and the VLM server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, 8)
			failed := 0
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				rows = append(rows, []string{result.Name, passFail(result.Passed), result.Detail})
				if !result.Passed {
					failed++
				}
			}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				detail := status.Detail
				if detail == "" {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, passFail(status.Available || status.Optional), detail})
				if !status.Available && !status.Optional {
					failed++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			return nil
		},
	}
}

func passFail(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
