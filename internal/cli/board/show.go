package board

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	"github.com/thenoetrevino/leadboard/internal/cli/styles"
)

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a board with its statuses and leads",
		Long: `Render a board as columns of leads, in position order.

Examples:
  leadboard board show --board=acme
  LEADBOARD_BOARD=acme leadboard board show --json
`,
		RunE: handler.Command(runShow),
	}
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runShow(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}

	board, err := c.App.StatusService.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	columns, err := c.App.LeadService.ListBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, column := range columns {
		for _, lead := range column.Leads {
			ids = append(ids, lead.ID)
		}
	}

	if c.Config != nil {
		styles.Init(c.Config.Theme)
	}

	return cli.Result{
		Data:    map[string]any{"board": board, "statuses": columns},
		IDs:     ids,
		Message: styles.RenderBoard(board, columns),
	}, nil
}
