package status

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
)

// UpdateCmd returns the status update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change a status' title or color",
		Long: `Change a status' title or color. The status keeps its id and position.

Examples:
  leadboard status update --board=acme --status=won --title="Closed Won"
  leadboard status update --board=acme --status=won --color="#00AA00"
`,
		RunE: handler.Command(runUpdate),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("color", "", "New color in hex format (#RRGGBB)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpdate(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	id, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}
	title, err := p.ParseStringChanged("title")
	if err != nil {
		return nil, err
	}

	req := statusservice.UpdateStatusRequest{BoardID: boardID, ID: id, Title: title}
	if color, err := p.ParseStringChanged("color"); err != nil {
		return nil, err
	} else if color != nil {
		parsed, err := p.ParseColor("color")
		if err != nil {
			return nil, err
		}
		req.Color = &parsed
	}
	if req.Title == nil && req.Color == nil {
		return nil, cli.UsageError("at least one of --title or --color is required")
	}

	status, err := c.App.StatusService.UpdateStatus(ctx, req)
	if err != nil {
		return nil, err
	}
	return cli.Result{
		Data:    status,
		IDs:     []string{status.ID},
		Message: fmt.Sprintf("✓ Status %s updated ('%s')", status.ID, status.Title),
	}, nil
}
