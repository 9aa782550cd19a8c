package lead

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
	"github.com/thenoetrevino/leadboard/internal/models"
	"github.com/thenoetrevino/leadboard/internal/user"
)

// NoteCmd returns the lead note subcommand
func NoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Record an interaction with a lead",
		Long: `Append an interaction to a lead's history, dated now and signed by the
current user.

Examples:
  leadboard lead note --board=acme --status=new --lead=ana-1a2b3c4d --notes="Called, send proposal"
`,
		RunE: handler.Command(runNote),
	}
	cmd.Flags().String("status", "", "Status ID (required)")
	cmd.Flags().String("lead", "", "Lead ID (required)")
	cmd.Flags().String("notes", "", "What happened (required)")
	cmd.Flags().String("author", "", "Who recorded it (default: $LEADBOARD_AUTHOR or the system user)")
	handler.AddBoardFlag(cmd)
	handler.AddOutputFlags(cmd)
	return cmd
}

func runNote(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
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
	notes, err := p.ParseString("notes")
	if err != nil {
		return nil, err
	}

	author, err := p.ParseStringOptional("author")
	if err != nil {
		return nil, err
	}
	if author == "" {
		author = user.Author()
	}

	lead, err := c.App.LeadService.AddInteraction(ctx, boardID, statusID, id, models.Interaction{Author: author, Notes: notes})
	if err != nil {
		return nil, err
	}
	return leadResult(lead, fmt.Sprintf("✓ Interaction recorded on %s (%d total)", lead.ID, len(lead.Interactions))), nil
}
