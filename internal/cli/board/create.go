package board

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
)

// CreateCmd returns the board create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a board",
		Long: `Create a board. Creating a board that already exists is a no-op.

Examples:
  # Create a board with a chosen id
  leadboard board create --id=acme --name="Acme Sales"

  # Let leadboard generate the id and capture it
  BOARD_ID=$(leadboard board create --name="Inbound" --quiet)
`,
		RunE: handler.Command(runCreate),
	}

	cmd.Flags().String("id", "", "Board ID (generated when empty)")
	cmd.Flags().String("name", "", "Board name")
	handler.AddOutputFlags(cmd)

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	id, err := p.ParseStringOptional("id")
	if err != nil {
		return nil, err
	}
	name, err := p.ParseStringOptional("name")
	if err != nil {
		return nil, err
	}

	board, err := c.App.StatusService.CreateBoard(ctx, statusservice.CreateBoardRequest{ID: id, Name: name})
	if err != nil {
		return nil, err
	}

	return cli.Result{
		Data:    board,
		IDs:     []string{board.ID},
		Message: fmt.Sprintf("✓ Board '%s' ready (ID: %s)", board.Name, board.ID),
	}, nil
}
