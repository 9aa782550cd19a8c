package lead

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
)

// CreateCmd returns the lead create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a lead to a status",
		Long: `Add a lead to the end of a status, or at --index.

Examples:
  leadboard lead create --board=acme --status=new \
    --name="Ana Souza" --email=ana@example.com --phone="+55 11 5555-0100"

  # Put the lead first
  leadboard lead create --board=acme --status=new --index=0 \
    --name="Caio" --email=caio@example.com --phone=555

  # Capture the lead id
  LEAD_ID=$(leadboard lead create --board=acme --status=new --name=Bo \
    --email=bo@example.com --phone=555 --quiet)
`,
		RunE: handler.Command(runCreate),
	}

	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("name", "", "Contact name (required)")
	cmd.Flags().String("email", "", "Contact email (required)")
	cmd.Flags().String("phone", "", "Contact phone (required)")
	cmd.Flags().String("company", "", "Company")
	cmd.Flags().String("observations", "", "Free-form notes about the lead")
	cmd.Flags().Int("index", 0, "Position among the status' leads, 0-based (default: append)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	req := leadservice.CreateLeadRequest{BoardID: boardID}
	required := []struct {
		flag string
		dst  *string
	}{
		{"status", &req.StatusID},
		{"name", &req.Name},
		{"email", &req.Email},
		{"phone", &req.Phone},
	}
	for _, r := range required {
		if *r.dst, err = p.ParseString(r.flag); err != nil {
			return nil, err
		}
	}
	if req.Company, err = p.ParseStringOptional("company"); err != nil {
		return nil, err
	}
	if req.Observations, err = p.ParseStringOptional("observations"); err != nil {
		return nil, err
	}
	if req.Index, err = p.ParseIndexOptional("index"); err != nil {
		return nil, err
	}

	lead, err := c.App.LeadService.CreateLead(ctx, req)
	if err != nil {
		return nil, err
	}
	return leadResult(lead, fmt.Sprintf("✓ Lead '%s' created (ID: %s, position: %d)", lead.Name, lead.ID, lead.Position)), nil
}
