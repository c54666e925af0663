package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"entropycopy/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var debug bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the current server log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "entropycopy.log")
			if debug {
				path = filepath.Join(cfg.Paths.LogDir, "debug", "entropycopy.log")
			}

			out := cmd.OutOrStdout()
			chunk, err := logs.Last(logs.DefaultFs, path, lines)
			if err != nil {
				return err
			}
			for _, line := range chunk.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(chunk.Lines) == 0 && chunk.Offset == 0 {
					fmt.Fprintf(out, "No log output at %s\n", path)
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, chunk.Offset, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&debug, "debug", false, "Read the diagnostic-mode debug log instead")
	return cmd
}
