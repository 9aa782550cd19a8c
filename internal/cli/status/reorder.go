package status

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// ReorderCmd returns the status reorder subcommand
func ReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Move a status to another place on its board",
		Long: `Move a status to a zero-based index among the board's statuses, or
write an explicit position value.

Examples:
  # Make "won" the first column
  leadboard status reorder --board=acme --status=won --index=0

  # Place a status between positions 1000 and 2000
  leadboard status reorder --board=acme --status=won --position=1500
`,
		RunE: handler.Command(runReorder),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().Int("index", 0, "Target index, 0 is the first column")
	cmd.Flags().Int64("position", 0, "Explicit position value")
	cmd.MarkFlagsMutuallyExclusive("index", "position")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runReorder(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	id, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}
	index, err := p.ParseIndexOptional("index")
	if err != nil {
		return nil, err
	}
	position, err := p.ParseInt64Optional("position")
	if err != nil {
		return nil, err
	}

	switch {
	case index != nil:
		err = c.App.StatusService.ReorderStatus(ctx, boardID, id, *index)
	case position != nil:
		err = c.App.StatusService.SetStatusPosition(ctx, boardID, id, *position)
	default:
		err = cli.UsageError("one of --index or --position is required")
	}
	if err != nil {
		return nil, err
	}

	statuses, err := c.App.StatusService.ListStatuses(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return statusList(boardID, statuses), nil
}
