package lead

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// ListCmd returns the lead list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the leads of a status in order",
		Long: `List the leads of a status in position order.

Examples:
  leadboard lead list --board=acme --status=new
  leadboard lead list --board=acme --status=new --quiet
`,
		RunE: handler.Command(runList),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	statusID, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}

	leads, err := c.App.LeadService.ListLeads(ctx, boardID, statusID)
	if err != nil {
		return nil, err
	}
	return leadList(boardID, statusID, leads), nil
}
