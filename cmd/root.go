package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/board"
	"github.com/thenoetrevino/leadboard/internal/cli/lead"
	"github.com/thenoetrevino/leadboard/internal/cli/serve"
	"github.com/thenoetrevino/leadboard/internal/cli/status"
	"github.com/thenoetrevino/leadboard/internal/config"
	"github.com/thenoetrevino/leadboard/internal/logging"
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "leadboard",
	Short: "Leadboard - a kanban board for sales leads",
	Long: `Leadboard keeps sales leads on kanban boards. Statuses are the columns
of a board and leads are the cards; both keep a stable, user-defined order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(board.BoardCmd())
	rootCmd.AddCommand(status.StatusCmd())
	rootCmd.AddCommand(lead.LeadCmd())
	rootCmd.AddCommand(lead.RebalanceCmd())
	rootCmd.AddCommand(serve.ServeCmd())
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logCloser, err = logging.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// Execute runs the root command and exits with the code of the failure, if any.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) {
		// errors raised by cobra itself (unknown flag, bad args) were not reported yet
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
