package status

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
)

// CreateCmd returns the status create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a status to a board",
		Long: `Append a status to the end of a board. The status id is derived from
the title, so two statuses of a board cannot share a title.

Examples:
  leadboard status create --board=acme --title="Em Negociação" --color="#FFAA00"

  # Capture the generated id
  STATUS_ID=$(leadboard status create --board=acme --title="Won" --quiet)
`,
		RunE: handler.Command(runCreate),
	}

	cmd.Flags().String("title", "", "Status title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("color", "", "Column color in hex format (#RRGGBB)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	title, err := p.ParseString("title")
	if err != nil {
		return nil, err
	}
	color, err := p.ParseColor("color")
	if err != nil {
		return nil, err
	}

	status, err := c.App.StatusService.CreateStatus(ctx, statusservice.CreateStatusRequest{
		BoardID: boardID,
		Title:   title,
		Color:   color,
	})
	if err != nil {
		return nil, err
	}

	return cli.Result{
		Data:    status,
		IDs:     []string{status.ID},
		Message: fmt.Sprintf("✓ Status '%s' created (ID: %s, position: %d)", status.Title, status.ID, status.Position),
	}, nil
}
