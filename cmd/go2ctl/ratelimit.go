package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go2gg/edge/ratelimit"
	"github.com/go2gg/edge/ratelimit/remote"
	"github.com/spf13/cobra"
)

func ratelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Query a rate limit counter service",
	}
	cmd.PersistentFlags().String("url", "http://localhost:8080", "counter service base URL")
	cmd.PersistentFlags().Duration("timeout", 2*time.Second, "request timeout")

	check := &cobra.Command{
		Use:   "check [key]",
		Short: "Count one request against key and print the decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := remoteClient(cmd)
			limit, _ := cmd.Flags().GetInt("limit")
			window, _ := cmd.Flags().GetDuration("window")

			result, err := client.Check(cmd.Context(), args[0], ratelimit.Policy{Limit: limit, Window: window})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	check.Flags().IntP("limit", "l", 100, "requests allowed per window")
	check.Flags().DurationP("window", "w", time.Minute, "window length, whole seconds")

	reset := &cobra.Command{
		Use:   "reset [key]",
		Short: "Clear the window for key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := remoteClient(cmd).Reset(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(check, reset)
	return cmd
}

func remoteClient(cmd *cobra.Command) *remote.Client {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return remote.NewClient(url, &http.Client{Timeout: timeout})
}
