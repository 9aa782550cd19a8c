package lead

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
)

// MoveCmd returns the lead move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a lead to another status",
		Long: `Move a lead from one status to another of the same board. Without
--index the lead goes to the end of the destination.

Examples:
  leadboard lead move --board=acme --lead=ana-1a2b3c4d --from=new --to=won
  leadboard lead move --board=acme --lead=ana-1a2b3c4d --from=new --to=won --index=0
`,
		RunE: handler.Command(runMove),
	}
	cmd.Flags().String("lead", "", "Lead ID (required)")
	cmd.Flags().String("from", "", "Current status ID (required)")
	cmd.Flags().String("to", "", "Destination status ID (required)")
	cmd.Flags().Int("index", 0, "Index in the destination (default: end)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runMove(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	req := leadservice.MoveLeadRequest{BoardID: boardID}
	if req.ID, err = p.ParseString("lead"); err != nil {
		return nil, err
	}
	if req.From, err = p.ParseString("from"); err != nil {
		return nil, err
	}
	if req.To, err = p.ParseString("to"); err != nil {
		return nil, err
	}
	if req.Index, err = p.ParseIndexOptional("index"); err != nil {
		return nil, err
	}

	lead, err := c.App.LeadService.MoveLead(ctx, req)
	if err != nil {
		return nil, err
	}
	return leadResult(lead, fmt.Sprintf("✓ Lead %s moved %s → %s (position: %d)", lead.ID, req.From, req.To, lead.Position)), nil
}
