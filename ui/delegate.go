package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/grant/suneater/types"
)

const indent = "    "

// ItemDelegate renders content items in the archive list.
type ItemDelegate struct{}

// Height returns the height of a list item (3 lines)
func (d ItemDelegate) Height() int {
	return 3
}

// Spacing returns the spacing between list items
func (d ItemDelegate) Spacing() int {
	return 1
}

// Update handles updates for the delegate (no-op for items)
func (d ItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single item: icon and title, description, tags.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(types.ContentItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	title := ci.Title()
	if ci.HasLink() {
		title += " ↗"
	}
	line1 := glyph(ci.Icon()) + " " + truncate(title, m.Width()-2)
	line2 := indent + truncate(ci.Description(), m.Width()-len(indent))
	line3 := indent + truncate(strings.Join(ci.DisplayTags(), " • "), m.Width()-len(indent))

	titleStyle := CardTitleStyle
	marker := "  "
	if selected {
		titleStyle = lipgloss.NewStyle().Foreground(DraculaPink).Bold(true)
		marker = lipgloss.NewStyle().Foreground(DraculaPink).Render("▌ ")
	}

	fmt.Fprint(w,
		marker+titleStyle.Render(line1)+"\n"+
			"  "+CardDescStyle.Render(line2)+"\n"+
			"  "+TagStyle.Render(line3))
}

// truncate shortens s to at most width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
