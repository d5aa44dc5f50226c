package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/buildinfo"
)

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "flipledger",
		Short:   "Bank reconciliation and posting for flips and contracting",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to flipledger.yaml (default ./flipledger.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReconcileCommand(opts))
	rootCmd.AddCommand(newPostCommand(opts))
	rootCmd.AddCommand(newSplitCommand(opts))
	rootCmd.AddCommand(newDealCommand(opts))
	rootCmd.AddCommand(newJournalCommand(opts))
	rootCmd.AddCommand(newReferenceCommands(opts)...)

	return rootCmd
}
