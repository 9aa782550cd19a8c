package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// BoardEnv names the environment variable used when --board is not given
const BoardEnv = "LEADBOARD_BOARD"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateColorHex validates that a color string is in valid hex format #RRGGBB
func ValidateColorHex(color string) error {
	if !hexColor.MatchString(color) {
		return fmt.Errorf("color must be in hex format #RRGGBB (e.g., #FF0000), got: %s", color)
	}
	return nil
}

// GetBoardID returns the board from the --board flag, falling back to LEADBOARD_BOARD
func GetBoardID(cmd *cobra.Command) (string, error) {
	boardID, _ := cmd.Flags().GetString("board")
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		boardID = strings.TrimSpace(os.Getenv(BoardEnv))
	}
	if boardID == "" {
		return "", fmt.Errorf("no board specified: use --board or set %s", BoardEnv)
	}
	return boardID, nil
}
