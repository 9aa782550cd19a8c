package lead

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// ReorderCmd returns the lead reorder subcommand
func ReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Move a lead to another index within its status",
		Long: `Move a lead to a zero-based index within its status. The other leads
keep their relative order.

Examples:
  # Put a lead on top of its column
  leadboard lead reorder --board=acme --status=new --lead=ana-1a2b3c4d --index=0
`,
		RunE: handler.Command(runReorder),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("lead", "", "Lead ID (required)")
	cmd.Flags().Int("index", 0, "Target index, 0 is the top (required)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runReorder(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	statusID, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}
	id, err := p.ParseString("lead")
	if err != nil {
		return nil, err
	}
	index, err := p.ParseIndex("index")
	if err != nil {
		return nil, err
	}

	if err := c.App.LeadService.ReorderLead(ctx, boardID, statusID, id, index); err != nil {
		return nil, err
	}

	leads, err := c.App.LeadService.ListLeads(ctx, boardID, statusID)
	if err != nil {
		return nil, err
	}
	return leadList(boardID, statusID, leads), nil
}
