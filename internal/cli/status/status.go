package status

import (
	"github.com/spf13/cobra"
)

// StatusCmd returns the status parent command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Manage the statuses (columns) of a board",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(ReorderCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}
