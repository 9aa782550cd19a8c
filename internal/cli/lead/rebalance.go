package lead

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// RebalanceCmd returns the top-level rebalance command. It re-spaces the
// positions of a status' leads without changing their order.
func RebalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Re-space the positions of a status' leads",
		Long: `Rewrite the positions of every lead in a status to evenly spaced
values, keeping their order. Useful after many inserts between the same
neighbours.

Examples:
  leadboard rebalance --board=acme --status=new
`,
		RunE: handler.Command(runRebalance),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runRebalance(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	statusID, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}

	if err := c.App.LeadService.RebalanceLeads(ctx, boardID, statusID); err != nil {
		return nil, err
	}
	leads, err := c.App.LeadService.ListLeads(ctx, boardID, statusID)
	if err != nil {
		return nil, err
	}
	return leadList(boardID, statusID, leads), nil
}
