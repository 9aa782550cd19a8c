package config

// Theme defines the colors used when rendering boards in the terminal
type Theme struct {
	// Preset name ("default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (column headers, highlights)
	Accent string `yaml:"accent"`

	// UI element colors
	ColumnBorder string `yaml:"column_border"`
	LeadBorder   string `yaml:"lead_border"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // positions, ids, empty columns
	Normal string `yaml:"normal"`

	// Semantic
	Create string `yaml:"create"`
	Delete string `yaml:"delete"`
}

// DefaultTheme returns the default color scheme (purple theme)
func DefaultTheme() Theme {
	return Theme{
		Preset:       "default",
		Accent:       "#874BFD",
		ColumnBorder: "#5F87D7",
		LeadBorder:   "#585858",
		Title:        "#D75FD7",
		Subtle:       "#585858",
		Normal:       "#D0D0D0",
		Create:       "#5FD75F",
		Delete:       "#FF0000",
	}
}

// MonochromeTheme returns a black and white color scheme
func MonochromeTheme() Theme {
	return Theme{
		Preset:       "monochrome",
		Accent:       "#FFFFFF",
		ColumnBorder: "#FFFFFF",
		LeadBorder:   "#585858",
		Title:        "#FFFFFF",
		Subtle:       "#585858",
		Normal:       "#D0D0D0",
		Create:       "#FFFFFF",
		Delete:       "#FFFFFF",
	}
}

// PresetTheme returns a preset by name, falling back to the default.
func PresetTheme(name string) Theme {
	if name == "monochrome" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}

// ApplyDefaults fills empty colors from the selected preset.
func (t *Theme) ApplyDefaults() {
	preset := PresetTheme(t.Preset)

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&t.Preset, preset.Preset)
	fill(&t.Accent, preset.Accent)
	fill(&t.ColumnBorder, preset.ColumnBorder)
	fill(&t.LeadBorder, preset.LeadBorder)
	fill(&t.Title, preset.Title)
	fill(&t.Subtle, preset.Subtle)
	fill(&t.Normal, preset.Normal)
	fill(&t.Create, preset.Create)
	fill(&t.Delete, preset.Delete)
}
