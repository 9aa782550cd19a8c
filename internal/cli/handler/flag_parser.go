// Package handler provides flag parsing utilities
package handler

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/services/validate"
)

// FlagParser provides common flag extraction patterns
type FlagParser struct {
	cmd       *cobra.Command
	formatter *cli.OutputFormatter
}

// NewFlagParser creates a new flag parser
func NewFlagParser(cmd *cobra.Command, formatter *cli.OutputFormatter) *FlagParser {
	return &FlagParser{
		cmd:       cmd,
		formatter: formatter,
	}
}

// Formatter returns the output formatter of the command
func (p *FlagParser) Formatter() *cli.OutputFormatter {
	return p.formatter
}

// ParseBoardID extracts the board from --board or LEADBOARD_BOARD
func (p *FlagParser) ParseBoardID() (string, error) {
	boardID, err := cli.GetBoardID(p.cmd)
	if err != nil {
		return "", &cli.CommandError{Code: cli.ExitUsage, ErrCode: "NO_BOARD", Err: err}
	}
	return boardID, nil
}

// ParseString extracts a required string flag
func (p *FlagParser) ParseString(flagName string) (string, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return "", cli.UsageError("failed to parse %s flag: %v", flagName, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", cli.UsageError("%s is required", flagName)
	}
	return value, nil
}

// ParseStringOptional extracts an optional string flag
func (p *FlagParser) ParseStringOptional(flagName string) (string, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return "", cli.UsageError("failed to parse %s flag: %v", flagName, err)
	}
	return strings.TrimSpace(value), nil
}

// ParseStringChanged returns the flag value only when it was set on the command line
func (p *FlagParser) ParseStringChanged(flagName string) (*string, error) {
	if !p.cmd.Flags().Changed(flagName) {
		return nil, nil
	}
	value, err := p.ParseStringOptional(flagName)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// ParseIndex extracts a required zero-based index
func (p *FlagParser) ParseIndex(flagName string) (int, error) {
	if !p.cmd.Flags().Changed(flagName) {
		return 0, cli.UsageError("%s is required", flagName)
	}
	index, err := p.ParseIndexOptional(flagName)
	if err != nil {
		return 0, err
	}
	return *index, nil
}

// ParseIndexOptional extracts a zero-based index, nil when the flag is absent
func (p *FlagParser) ParseIndexOptional(flagName string) (*int, error) {
	if !p.cmd.Flags().Changed(flagName) {
		return nil, nil
	}
	index, err := p.cmd.Flags().GetInt(flagName)
	if err != nil {
		return nil, cli.UsageError("failed to parse %s flag: %v", flagName, err)
	}
	if index < 0 {
		return nil, cli.UsageError("%s cannot be negative", flagName)
	}
	return &index, nil
}

// ParseInt64Optional extracts an int64 flag, nil when the flag is absent
func (p *FlagParser) ParseInt64Optional(flagName string) (*int64, error) {
	if !p.cmd.Flags().Changed(flagName) {
		return nil, nil
	}
	value, err := p.cmd.Flags().GetInt64(flagName)
	if err != nil {
		return nil, cli.UsageError("failed to parse %s flag: %v", flagName, err)
	}
	return &value, nil
}

// ParseBool extracts a boolean flag
func (p *FlagParser) ParseBool(flagName string) (bool, error) {
	return p.cmd.Flags().GetBool(flagName)
}

// ParseColor extracts and validates an optional color flag
func (p *FlagParser) ParseColor(flagName string) (string, error) {
	color, err := p.ParseStringOptional(flagName)
	if err != nil || color == "" {
		return color, err
	}
	if err := cli.ValidateColorHex(color); err != nil {
		return "", fmt.Errorf("%w: %v", validate.ErrInvalid, err)
	}
	return color, nil
}

// OutputFormats extracts JSON and Quiet output flags
func (p *FlagParser) OutputFormats() (jsonOutput bool, quietMode bool, err error) {
	jsonOutput, err = p.cmd.Flags().GetBool("json")
	if err != nil {
		return false, false, fmt.Errorf("failed to parse json flag: %w", err)
	}

	quietMode, err = p.cmd.Flags().GetBool("quiet")
	if err != nil {
		return false, false, fmt.Errorf("failed to parse quiet flag: %w", err)
	}

	return jsonOutput, quietMode, nil
}
