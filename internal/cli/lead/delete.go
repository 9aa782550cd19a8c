package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// DeleteCmd returns the lead delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a lead, or every lead of a status",
		Long: `Delete one lead, or with --all every lead of a status (--all requires
confirmation unless --force or --quiet).

Examples:
  leadboard lead delete --board=acme --status=lost --lead=ana-1a2b3c4d
  leadboard lead delete --board=acme --status=lost --all --force
`,
		RunE: handler.Command(runDelete),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("lead", "", "Lead ID")
	cmd.Flags().Bool("all", false, "Delete every lead of the status")
	cmd.Flags().Bool("force", false, "Skip confirmation")
	cmd.MarkFlagsMutuallyExclusive("lead", "all")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	statusID, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}
	all, err := p.ParseBool("all")
	if err != nil {
		return nil, err
	}

	if !all {
		id, err := p.ParseString("lead")
		if err != nil {
			return nil, err
		}
		if err := c.App.LeadService.DeleteLead(ctx, boardID, statusID, id); err != nil {
			return nil, err
		}
		return cli.Result{
			Data:    map[string]any{"lead_id": id},
			Message: fmt.Sprintf("✓ Lead %s deleted", id),
		}, nil
	}

	force, err := p.ParseBool("force")
	if err != nil {
		return nil, err
	}
	f := p.Formatter()
	if !force && !f.Quiet && !f.JSON {
		fmt.Printf("Delete every lead in %s/%s? (y/N): ", boardID, statusID)
		var response string
		_, _ = fmt.Scanln(&response)
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			return cli.Result{Message: "Cancelled"}, nil
		}
	}

	n, err := c.App.LeadService.DeleteAllLeads(ctx, boardID, statusID)
	if err != nil {
		return nil, err
	}
	return cli.Result{
		Data:    map[string]any{"deleted": n},
		Message: fmt.Sprintf("✓ %d leads deleted from %s", n, statusID),
	}, nil
}
