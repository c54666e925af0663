package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"entropycopy/internal/ipc"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var wide bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <directory>",
		Short: "Ask the server to copy every file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := args[0]
			if abs, absErr := filepath.Abs(source); absErr == nil {
				source = abs
			}

			client := ipc.Client{
				Endpoint:       ctx.endpoint(),
				ConnectTimeout: cfg.ConnectTimeout(),
			}
			if wide {
				client.Encoding = ipc.UTF16LE
			}

			sendCtx := cmd.Context()
			if sendCtx == nil {
				sendCtx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(sendCtx, timeout)
				defer cancel()
			}

			resp, err := client.Send(sendCtx, source)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("server did not answer within %s", timeout)
				}
				var opErr *net.OpError
				if (errors.As(err, &opErr) && opErr.Op == "dial") || os.IsNotExist(errors.Unwrap(err)) {
					return wrapDialError(err, client.Endpoint)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			if strings.HasPrefix(resp, "[ERROR]") {
				return errTransferFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wide, "utf16", false, "Encode the request as UTF-16LE like wide-character clients")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum time to wait for the response")
	return cmd
}

// errTransferFailed gives a failed transfer a non-zero exit without printing
// the response twice.
var errTransferFailed = errors.New("transfer failed")
