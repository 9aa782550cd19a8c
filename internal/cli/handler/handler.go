// Package handler provides command execution abstraction to reduce boilerplate
package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
)

// RunFunc does the work of one command and returns what to print.
type RunFunc func(ctx context.Context, c *cli.CLI, p *FlagParser) (any, error)

// Command wraps common command execution logic: it resolves the CLI, runs fn
// and reports the result or error in the selected output mode.
// Returns a cobra RunE compatible function
func Command(fn RunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Get formatter from flags
		jsonOutput, _ := cmd.Flags().GetBool("json")
		quietMode, _ := cmd.Flags().GetBool("quiet")
		formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

		cliInstance, err := cli.GetCLIFromContext(ctx)
		if err != nil {
			report(formatter, "INITIALIZATION_ERROR", err)
			return &cli.CommandError{Code: cli.ExitError, ErrCode: "INITIALIZATION_ERROR", Err: err}
		}
		defer func() {
			if err := cliInstance.Close(); err != nil {
				slog.Error("Error closing CLI", "error", err)
			}
		}()

		result, err := fn(ctx, cliInstance, NewFlagParser(cmd, formatter))
		if err != nil {
			code, exit := cli.Classify(err)
			report(formatter, code, err)
			var exitErr *cli.CommandError
			if errors.As(err, &exitErr) {
				return err
			}
			return &cli.CommandError{Code: exit, ErrCode: code, Err: err}
		}

		// Common output formatting
		return formatter.Success(result)
	}
}

// AddOutputFlags registers the agent-friendly --json and --quiet flags
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

func report(formatter *cli.OutputFormatter, code string, err error) {
	if fmtErr := formatter.Error(code, err.Error()); fmtErr != nil {
		slog.Error("Error formatting error message", "error", fmtErr)
	}
}

// AddBoardFlag registers --board, which falls back to LEADBOARD_BOARD
func AddBoardFlag(cmd *cobra.Command) {
	cmd.Flags().String("board", "", "Board ID (defaults to $"+cli.BoardEnv+")")
}
