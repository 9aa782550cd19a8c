package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	"github.com/thenoetrevino/leadboard/internal/cli/styles"
	"github.com/thenoetrevino/leadboard/internal/models"
)

// ShowCmd returns the lead show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a lead with its interactions",
		Long: `Show the contact data and interaction history of a lead.

Examples:
  leadboard lead show --board=acme --status=new --lead=ana-souza-1a2b3c4d
`,
		RunE: handler.Command(runShow),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("lead", "", "Lead ID (required)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runShow(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	boardID, err := p.ParseBoardID()
	if err != nil {
		return nil, err
	}
	statusID, err := p.ParseString("status")
	if err != nil {
		return nil, err
	}
	id, err := p.ParseString("lead")
	if err != nil {
		return nil, err
	}

	lead, err := c.App.LeadService.GetLead(ctx, boardID, statusID, id)
	if err != nil {
		return nil, err
	}
	return leadResult(lead, renderLead(lead)), nil
}

// renderLead builds the human-readable lead card
func renderLead(lead *models.Lead) string {
	var content strings.Builder
	content.WriteString(styles.TitleStyle.Render(lead.Name))
	content.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		content.WriteString(styles.SubtitleStyle.Render(label+": ") + styles.ValueStyle.Render(value) + "\n")
	}
	field("ID", lead.ID)
	field("Status", lead.StatusID)
	field("Email", lead.Email)
	field("Phone", lead.Phone)
	field("Company", lead.Company)
	field("Position", fmt.Sprintf("%d", lead.Position))
	field("Observations", lead.Observations)

	if len(lead.Interactions) > 0 {
		content.WriteString("\n" + styles.SubtitleStyle.Render("Interactions:") + "\n")
		for _, in := range lead.Interactions {
			fmt.Fprintf(&content, "  %s  %s\n", in.Date.Format("2006-01-02 15:04"), in.Notes)
		}
	}

	return styles.CardStyle.Render(strings.TrimRight(content.String(), "\n"))
}
