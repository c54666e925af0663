// Command entropycopyd runs the copy server as a standalone process, suitable
// for registration with the Windows service control manager or a Unix init
// system. The legacy `-pipe <name>` and `/pipe <name>` arguments select the
// channel name.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"entropycopy/internal/config"
	"entropycopy/internal/daemonrun"
)

func main() {
	cmd := newRootCommand()
	cmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath, pipe, logLevel string
	var diagnostic bool

	cmd := &cobra.Command{
		Use:           "entropycopyd",
		Short:         "Entropy copy server",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = cfg.WithChannelName(pipe)
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:   logLevel,
				Diagnostic: diagnostic,
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&pipe, "pipe", "", "Channel name (overrides channel.name)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Enable diagnostic mode with separate DEBUG logs")
	return cmd
}

// normalizeArgs rewrites case-insensitive `-pipe <name>` and `/pipe <name>`
// pairs into a single trailing `--pipe <name>`. The last pair wins; a
// trailing switch without a value is dropped. Other arguments pass through
// in order.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args)+2)
	var pipe string
	var found bool
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !isPipeSwitch(arg) {
			out = append(out, arg)
			continue
		}
		if i+1 >= len(args) {
			break
		}
		pipe = args[i+1]
		found = true
		i++
	}
	if found {
		out = append(out, "--pipe", pipe)
	}
	return out
}

func isPipeSwitch(arg string) bool {
	switch strings.ToLower(arg) {
	case "-pipe", "/pipe", "--pipe":
		return true
	}
	return false
}
