package lead

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/models"
)

// LeadCmd returns the lead parent command
func LeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Manage the leads of a board",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(NoteCmd())
	cmd.AddCommand(ReorderCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func leadResult(lead *models.Lead, message string) cli.Result {
	return cli.Result{Data: lead, IDs: []string{lead.ID}, Message: message}
}

func leadList(boardID, statusID string, leads []*models.Lead) cli.Result {
	ids := make([]string, len(leads))
	var b strings.Builder
	if len(leads) == 0 {
		fmt.Fprintf(&b, "No leads in %s/%s", boardID, statusID)
	} else {
		fmt.Fprintf(&b, "Leads in %s/%s:", boardID, statusID)
	}
	for i, l := range leads {
		ids[i] = l.ID
		fmt.Fprintf(&b, "\n  %d. %s <%s> (ID: %s, position: %d)", i+1, l.Name, l.Email, l.ID, l.Position)
	}
	return cli.Result{Data: leads, IDs: ids, Message: b.String()}
}
