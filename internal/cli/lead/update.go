package lead

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
)

// UpdateCmd returns the lead update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change a lead's contact data",
		Long: `Change a lead's contact data. Only the flags given are updated; the
lead keeps its place in the status.

Examples:
  leadboard lead update --board=acme --status=new --lead=ana-1a2b3c4d --phone=555-0199
`,
		RunE: handler.Command(runUpdate),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("lead", "", "Lead ID (required)")
	cmd.Flags().String("name", "", "New contact name")
	cmd.Flags().String("email", "", "New email")
	cmd.Flags().String("phone", "", "New phone")
	cmd.Flags().String("company", "", "New company")
	cmd.Flags().String("observations", "", "New observations")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpdate(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	req := leadservice.UpdateLeadRequest{BoardID: boardID}
	if req.StatusID, err = p.ParseString("status"); err != nil {
		return nil, err
	}
	if req.ID, err = p.ParseString("lead"); err != nil {
		return nil, err
	}

	changed := false
	for _, f := range []struct {
		flag string
		dst  **string
	}{
		{"name", &req.Name},
		{"email", &req.Email},
		{"phone", &req.Phone},
		{"company", &req.Company},
		{"observations", &req.Observations},
	} {
		if *f.dst, err = p.ParseStringChanged(f.flag); err != nil {
			return nil, err
		}
		changed = changed || *f.dst != nil
	}
	if !changed {
		return nil, cli.UsageError("nothing to update: pass at least one of --name, --email, --phone, --company or --observations")
	}

	lead, err := c.App.LeadService.UpdateLead(ctx, req)
	if err != nil {
		return nil, err
	}
	return leadResult(lead, fmt.Sprintf("✓ Lead %s updated", lead.ID)), nil
}
