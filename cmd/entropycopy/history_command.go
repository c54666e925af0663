package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"entropycopy/internal/history"
	"entropycopy/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent copy sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Session history is disabled (history.enabled = false)")
				return nil
			}
			if _, err := os.Stat(cfg.History.Path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}

			store, err := history.Open(cmd.Context(), cfg.History.Path, logging.NewNop())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyColumns, historyRows(entries)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to show")
	return cmd
}

var historyColumns = []tableColumn{
	{Header: "ID", Align: alignRight},
	{Header: "Started"},
	{Header: "Source", MaxWidth: 48},
	{Header: "Files", Align: alignRight},
	{Header: "Result"},
	{Header: "Message", MaxWidth: 60},
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := "ok"
		message := e.Message
		if !e.Succeeded {
			result = "error"
			if e.SysErr != "" {
				message = fmt.Sprintf("%s [%s]", e.Message, e.SysErr)
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.StartedAt.Local().Format(time.DateTime),
			e.SourceDir,
			strconv.Itoa(e.FilesCopied),
			result,
			message,
		})
	}
	return rows
}
