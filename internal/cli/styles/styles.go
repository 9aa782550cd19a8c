package styles

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/leadboard/internal/config"
	"github.com/thenoetrevino/leadboard/internal/models"
)

var (
	// Column and card styles
	ColumnStyle lipgloss.Style
	ColumnWidth = 28
	LeadStyle   lipgloss.Style
	CardStyle   lipgloss.Style

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	ValueStyle    lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
)

func init() {
	Init(config.DefaultTheme())
}

// Init initializes all CLI styles with the given theme
func Init(theme config.Theme) {
	theme.ApplyDefaults()

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.ColumnBorder)).
		Padding(0, 1).
		Width(ColumnWidth)

	LeadStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(theme.LeadBorder)).
		Width(ColumnWidth - 4)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Subtle))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Normal))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Create))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Delete))
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// RenderLeadCard renders one lead as a bordered card
func RenderLeadCard(lead *models.Lead) string {
	lines := []string{ValueStyle.Render(lead.Name)}
	if lead.Company != "" {
		lines = append(lines, SubtitleStyle.Render(lead.Company))
	}
	lines = append(lines, SubtitleStyle.Render(lead.Email))
	return LeadStyle.Render(strings.Join(lines, "\n"))
}

// RenderColumn renders a status header followed by its lead cards
func RenderColumn(column *models.StatusWithLeads) string {
	header := TitleStyle.Render(column.Title)
	if column.Color != "" {
		header = ColoredText("● ", column.Color) + header
	}
	header += SubtitleStyle.Render(fmt.Sprintf(" (%d)", len(column.Leads)))

	parts := []string{header}
	if len(column.Leads) == 0 {
		parts = append(parts, SubtitleStyle.Render("no leads"))
	}
	for _, lead := range column.Leads {
		parts = append(parts, RenderLeadCard(lead))
	}

	style := ColumnStyle
	if column.Color != "" {
		style = style.BorderForeground(lipgloss.Color(column.Color))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// RenderBoard lays the columns of a board side by side under its name
func RenderBoard(board *models.Board, columns []*models.StatusWithLeads) string {
	name := board.Name
	if name == "" {
		name = board.ID
	}
	title := TitleStyle.Render(name)

	if len(columns) == 0 {
		return title + "\n" + SubtitleStyle.Render("no statuses yet")
	}

	rendered := make([]string, len(columns))
	for i, column := range columns {
		rendered[i] = RenderColumn(column)
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
