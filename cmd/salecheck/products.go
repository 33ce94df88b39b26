package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/five82/salecheck/internal/app"
	"github.com/five82/salecheck/internal/money"
	"github.com/five82/salecheck/internal/product"
	"github.com/spf13/cobra"
)

func newTrackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track <url>",
		Short: "Start tracking the product at an Amazon product page URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				added, err := a.Watchlist.Track(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				records, err := a.Watchlist.List(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s at %s (%d/%d)\n",
					added.DisplayName(), added.CurrentPriceText, len(records), product.MaxTracked)
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the tracked products in list order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				records, err := a.Watchlist.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if records == nil {
						records = []product.Record{}
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}
				return printRecords(cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func printRecords(w io.Writer, records []product.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No products tracked.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tWAS\tNOW\tOFF\tDROP")
	for i, r := range records {
		off := ""
		if pct := r.DiscountPercent(); pct > 0 {
			off = strconv.Itoa(pct) + "%"
		}
		drop := ""
		if r.IsUnreadDrop {
			drop = "new"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, r.ID, r.DisplayName(), money.Format(r.OriginalPriceText), money.Format(r.CurrentPriceText), off, drop)
	}
	return tw.Flush()
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking a product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				if err := a.Watchlist.Remove(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("remove %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Show a product under a custom title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				if err := a.Watchlist.Rename(cmd.Context(), args[0], args[1]); err != nil {
					return fmt.Errorf("rename %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s\n", args[0])
				return nil
			})
		},
	}
}

func newResetTitleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-title <id>",
		Short: "Drop a custom title and show the fetched one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				if err := a.Watchlist.ResetTitle(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("reset title %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset title of %s\n", args[0])
				return nil
			})
		},
	}
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a product to a 1-based position in the list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 1 {
				return fmt.Errorf("invalid position %q: want a number from 1 to %d", args[1], product.MaxTracked)
			}
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				if err := a.Watchlist.Move(cmd.Context(), args[0], position-1); err != nil {
					return fmt.Errorf("move %s: %w", args[0], err)
				}
				records, err := a.Watchlist.List(cmd.Context())
				if err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), records)
			})
		},
	}
}

func newAckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ack [id]",
		Short: "Mark price drops as seen",
		Long: `Mark the drop on one product as seen. Without an id every drop is
acknowledged and the drop indicator is cleared.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.ErrOrStderr(), func(a *app.App) error {
				ctx := cmd.Context()
				if len(args) == 1 {
					if err := a.Watchlist.Acknowledge(ctx, args[0]); err != nil {
						return fmt.Errorf("acknowledge %s: %w", args[0], err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", args[0])
					return nil
				}
				if err := a.Watchlist.AcknowledgeAll(ctx); err != nil {
					return fmt.Errorf("acknowledge drops: %w", err)
				}
				if err := a.Indicator.Clear(ctx); err != nil {
					return fmt.Errorf("clear indicator: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Acknowledged all drops")
				return nil
			})
		},
	}
}
