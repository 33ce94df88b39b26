package main

import (
	"io"

	"github.com/five82/salecheck/internal/app"
	"github.com/five82/salecheck/internal/prefs"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	prefsPath  string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "salecheck",
		Short: "Track prices for a handful of products and flag drops",
		Long: `salecheck keeps a short list of products (at most five), refreshes their
prices about once a day and flags every price that fell since the last check.

Run without a subcommand to open the list view.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The list view owns the terminal, so records only go to the log file.
			return opts.withApp(io.Discard, func(a *app.App) error {
				return a.RunUI(cmd.Context())
			})
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/salecheck/config.toml)")
	flags.StringVar(&opts.prefsPath, "prefs", "", "preferences file (default "+prefs.DefaultPath()+")")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newDaemonCmd(opts),
		newRefreshCmd(opts),
		newStatusCmd(opts),
		newTrackCmd(opts),
		newListCmd(opts),
		newRemoveCmd(opts),
		newRenameCmd(opts),
		newResetTitleCmd(opts),
		newMoveCmd(opts),
		newAckCmd(opts),
		newLogsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) appOptions(stderr io.Writer) app.Options {
	return app.Options{
		ConfigPath: o.configPath,
		PrefsPath:  o.prefsPath,
		Debug:      o.debug,
		Stderr:     stderr,
		LogToFile:  true,
	}
}

// withApp opens the application for the duration of fn.
func (o *rootOptions) withApp(stderr io.Writer, fn func(*app.App) error) error {
	a, err := app.Open(o.appOptions(stderr))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
