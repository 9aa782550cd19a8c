package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// ListCmd returns the board list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List boards",
		Long: `List every board.

Examples:
  leadboard board list
  leadboard board list --json
`,
		RunE: handler.Command(runList),
	}
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boards, err := c.App.StatusService.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(boards))
	var b strings.Builder
	if len(boards) == 0 {
		b.WriteString("No boards found")
	} else {
		b.WriteString("Boards:")
	}
	for i, board := range boards {
		ids[i] = board.ID
		fmt.Fprintf(&b, "\n  %d. %s (ID: %s)", i+1, board.Name, board.ID)
	}

	return cli.Result{Data: boards, IDs: ids, Message: b.String()}, nil
}
