package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// DeleteCmd returns the status delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a status and its leads",
		Long: `Delete a status together with every lead in it (requires confirmation
unless --force or --quiet).

Examples:
  leadboard status delete --board=acme --status=lost --force
`,
		RunE: handler.Command(runDelete),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().Bool("force", false, "Skip confirmation")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	id, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}
	force, err := p.ParseBool("force")
	if err != nil {
		return nil, err
	}

	status, err := c.App.StatusService.GetStatus(ctx, boardID, id)
	if err != nil {
		return nil, err
	}

	f := p.Formatter()
	if !force && !f.Quiet && !f.JSON {
		fmt.Printf("⚠ Warning: every lead in '%s' will be deleted\n", status.Title)
		fmt.Printf("Delete status %s? (y/N): ", status.ID)
		var response string
		_, _ = fmt.Scanln(&response)
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			return cli.Result{Message: "Cancelled"}, nil
		}
	}

	if err := c.App.StatusService.DeleteStatus(ctx, boardID, id); err != nil {
		return nil, err
	}
	return cli.Result{
		Data:    map[string]any{"status_id": id},
		Message: fmt.Sprintf("✓ Status %s deleted", id),
	}, nil
}
