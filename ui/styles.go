package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/grant/suneater/types"
)

// 16-color ANSI Dracula palette
var (
	DraculaForeground = lipgloss.AdaptiveColor{Light: "0", Dark: "255"}
	DraculaPurple     = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	DraculaPink       = lipgloss.AdaptiveColor{Light: "13", Dark: "13"}
	DraculaCyan       = lipgloss.AdaptiveColor{Light: "14", Dark: "14"}
	DraculaGreen      = lipgloss.AdaptiveColor{Light: "10", Dark: "10"}
	DraculaComment    = lipgloss.AdaptiveColor{Light: "7", Dark: "7"}
	DraculaOrange     = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	DraculaRed        = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}

	// Navbar
	BrandStyle = lipgloss.NewStyle().
			Foreground(DraculaOrange).
			Bold(true).
			Padding(0, 1)
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true).
			Underline(true).
			Padding(0, 1)
	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(DraculaComment).
				Padding(0, 1)

	// Page sections
	HeroTitleStyle = lipgloss.NewStyle().
			Foreground(DraculaOrange).
			Bold(true)
	HeroTaglineStyle = lipgloss.NewStyle().
				Foreground(DraculaCyan).
				Italic(true)
	RoleStyle = lipgloss.NewStyle().
			Foreground(DraculaPurple).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DraculaPurple).
			Padding(0, 1)
	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(DraculaPink).
				Bold(true)
	SectionSubtitleStyle = lipgloss.NewStyle().
				Foreground(DraculaComment)
	ViewAllStyle = lipgloss.NewStyle().
			Foreground(DraculaOrange).
			Bold(true)

	// Cards
	CardStyle = lipgloss.NewStyle().
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(DraculaComment).
			PaddingLeft(1)
	CardTitleStyle = lipgloss.NewStyle().
			Foreground(DraculaCyan).
			Bold(true)
	CardDescStyle = lipgloss.NewStyle().
			Foreground(DraculaForeground)
	TagStyle = lipgloss.NewStyle().
			Foreground(DraculaGreen)

	// Skills
	SkillFilledStyle = lipgloss.NewStyle().
				Foreground(DraculaOrange)
	SkillEmptyStyle = lipgloss.NewStyle().
			Foreground(DraculaComment)

	// Archive list
	TitleStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true).
			Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(DraculaComment)
	ErrorStyle = lipgloss.NewStyle().
			Foreground(DraculaRed)

	FooterStyle = lipgloss.NewStyle().
			Foreground(DraculaComment).
			Italic(true)
)

// iconGlyphs maps category icons to terminal glyphs.
var iconGlyphs = map[types.Icon]string{
	types.IconWorkflow: "⟳",
	types.IconPrompt:   "✦",
	types.IconTerminal: "❯",
	types.IconDatabase: "◫",
	types.IconCode:     "⌘",
}

func glyph(icon types.Icon) string {
	if g, ok := iconGlyphs[icon]; ok {
		return g
	}
	return "•"
}
