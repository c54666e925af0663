package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"entropycopy/internal/daemonctl"
	"entropycopy/internal/history"
	"entropycopy/internal/logging"
	"entropycopy/internal/preflight"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{newStatusCommand(ctx), newStopCommand(ctx)}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server, destination, and last session status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			server := statusSection{title: "Server"}
			running, pid, procErr := daemonctl.ProcessInfo(cfg)
			switch {
			case procErr != nil:
				server.add("Process", statusError, "%v", procErr)
			case running && pid > 0:
				server.add("Process", statusOK, "running (pid %d)", pid)
			case running:
				server.add("Process", statusWarn, "running (pid unknown)")
			default:
				server.add("Process", statusWarn, "not running")
			}
			server.add("Channel", statusInfo, "%s", ctx.endpoint())
			server.add("Lock file", statusInfo, "%s", cfg.LockPath())
			if ctx.configSeen {
				server.add("Config", statusInfo, "%s", ctx.configPath)
			} else {
				server.add("Config", statusInfo, "defaults (no file at %s)", ctx.configPath)
			}

			checks := statusSection{title: "Preflight"}
			for _, r := range preflight.RunAll(cfg) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				checks.add(r.Name, kind, "%s", r.Detail)
			}

			last := statusSection{title: "Last session"}
			describeLastSession(cmd.Context(), &last, ctx)

			server.render(out, colorize)
			fmt.Fprintln(out)
			checks.render(out, colorize)
			fmt.Fprintln(out)
			last.render(out, colorize)
			return nil
		},
	}
}

func describeLastSession(parent context.Context, section *statusSection, ctx *commandContext) {
	cfg := ctx.configValue()
	if !cfg.History.Enabled {
		section.add("Journal", statusInfo, "disabled")
		return
	}
	if _, err := os.Stat(cfg.History.Path); errors.Is(err, os.ErrNotExist) {
		section.add("Journal", statusInfo, "no sessions recorded")
		return
	}
	if parent == nil {
		parent = context.Background()
	}
	readCtx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	store, err := history.Open(readCtx, cfg.History.Path, logging.NewNop())
	if err != nil {
		section.add("Journal", statusError, "%v", err)
		return
	}
	defer store.Close()

	entries, err := store.Recent(readCtx, 1)
	if err != nil {
		section.add("Journal", statusError, "%v", err)
		return
	}
	if len(entries) == 0 {
		section.add("Journal", statusInfo, "no sessions recorded")
		return
	}
	e := entries[0]
	kind := statusOK
	if !e.Succeeded {
		kind = statusError
	}
	section.add("When", statusInfo, "%s (%s)", e.StartedAt.Local().Format(time.DateTime), e.Duration.Round(time.Millisecond))
	section.add("Source", statusInfo, "%s", e.SourceDir)
	section.add("Result", kind, "%s", e.Message)
	if e.SysErr != "" {
		section.add("System error", statusWarn, "%s", e.SysErr)
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := daemonctl.Stop(cfg, grace)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Server is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Server did not stop within %s; killed pid %d\n", grace, result.PID)
				return nil
			}
			fmt.Fprintf(out, "Server stopped (pid %d)\n", result.PID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 10*time.Second, "Time to wait for a graceful stop before killing the process")
	return cmd
}
