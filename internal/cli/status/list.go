package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	"github.com/thenoetrevino/leadboard/internal/models"
)

// ListCmd returns the status list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the statuses of a board in order",
		Long: `List the statuses of a board in position order.

Examples:
  leadboard status list --board=acme
  leadboard status list --board=acme --quiet
`,
		RunE: handler.Command(runList),
	}
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}

	statuses, err := c.App.StatusService.ListStatuses(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return statusList(boardID, statuses), nil
}

// statusList renders statuses for every output mode
func statusList(boardID string, statuses []*models.Status) cli.Result {
	ids := make([]string, len(statuses))
	var b strings.Builder
	if len(statuses) == 0 {
		fmt.Fprintf(&b, "No statuses found in board '%s'", boardID)
	} else {
		fmt.Fprintf(&b, "Statuses in board '%s':", boardID)
	}
	for i, s := range statuses {
		ids[i] = s.ID
		fmt.Fprintf(&b, "\n  %d. %s (ID: %s, position: %d)", i+1, s.Title, s.ID, s.Position)
	}
	return cli.Result{Data: statuses, IDs: ids, Message: b.String()}
}
