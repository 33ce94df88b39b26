package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/five82/salecheck/internal/app"
	"github.com/five82/salecheck/internal/badge"
	"github.com/five82/salecheck/internal/logtail"
	"github.com/five82/salecheck/internal/product"
	"github.com/five82/salecheck/internal/refresh"
	"github.com/spf13/cobra"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Refresh prices in the background until interrupted",
		Long: `Run the refresh scheduler. The first run against an empty state directory
counts as an install, later runs as a startup; after that a timer wakes the
refresh cycle every wake_period. Set metrics_addr in the config to expose
/metrics and /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunDaemon(cmd.Context(), opts.appOptions(cmd.ErrOrStderr()))
		},
	}
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle now, subject to the throttle window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				out := a.Refresher.Run(cmd.Context(), refresh.TriggerManual)
				w := cmd.OutOrStdout()
				switch out.Phase {
				case refresh.PhaseEmpty:
					fmt.Fprintln(w, "No products tracked.")
				case refresh.PhaseThrottled:
					snap, err := a.Store.Load(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "Already refreshed recently; next refresh after %s.\n",
						nextRefresh(snap.LastUpdate, a.Config.ThrottleInterval))
				case refresh.PhaseFailed:
					return out.Err
				default:
					fmt.Fprintf(w, "Refreshed %d product%s, %d price drop%s.\n",
						out.Tracked, plural(out.Tracked), out.DropCount, plural(out.DropCount))
				}
				return nil
			})
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracked count, unread drops and refresh timing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				snap, err := a.Store.Load(cmd.Context())
				if err != nil {
					return err
				}
				b, err := badge.Load(a.Indicator.Path())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "State:        %s\n", a.Store.Path())
				fmt.Fprintf(w, "Tracked:      %d/%d\n", len(snap.Products), product.MaxTracked)
				fmt.Fprintf(w, "Unread drops: %d\n", product.UnreadDrops(snap.Products))
				if b.Visible() {
					fmt.Fprintf(w, "Indicator:    %s\n", badge.Render(b))
				} else {
					fmt.Fprintln(w, "Indicator:    clear")
				}
				if snap.LastUpdate == nil {
					fmt.Fprintln(w, "Last refresh: never")
				} else {
					fmt.Fprintf(w, "Last refresh: %s\n", snap.LastUpdate.Local().Format(time.DateTime))
				}
				fmt.Fprintf(w, "Next refresh: %s\n", nextRefresh(snap.LastUpdate, a.Config.ThrottleInterval))
				return nil
			})
		},
	}
}

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if lines < 0 {
				return errors.New("lines must not be negative")
			}
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				tail, err := logtail.Read(a.Config.LogPath(), lines)
				if err != nil {
					return err
				}
				highlight := logtail.NewHighlighter(lipgloss.NewRenderer(cmd.OutOrStdout()))
				for _, line := range highlight.Lines(tail) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	return cmd
}

func nextRefresh(last *time.Time, interval time.Duration) string {
	if last == nil || refresh.ShouldRefresh(time.Now(), last, interval) {
		return "next wake"
	}
	return last.Add(interval).Local().Format(time.DateTime)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
