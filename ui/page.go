package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/nav"
	"github.com/grant/suneater/types"
)

// layout records where each section landed in the last page render.
// Sections are only mounted while the page, not an archive, is shown.
type layout struct {
	bounds  map[string]nav.Bounds
	mounted bool
}

func newLayout() *layout {
	return &layout{bounds: make(map[string]nav.Bounds)}
}

func (l *layout) boundsFunc(id string) nav.BoundsFunc {
	return func() (nav.Bounds, bool) {
		if !l.mounted {
			return nav.Bounds{}, false
		}
		b, ok := l.bounds[id]
		return b, ok
	}
}

// registry builds the navigation registry over the catalog sections.
func (l *layout) registry(sections []types.Section) nav.Registry {
	reg := make(nav.Registry, 0, len(sections))
	for _, s := range sections {
		reg = append(reg, nav.Section{ID: s.ID, Bounds: l.boundsFunc(s.ID)})
	}
	return reg
}

// pageContent is everything the page renderer needs.
type pageContent struct {
	profile    catalog.Profile
	sections   []types.Section
	categories map[types.CategoryID]types.Category
	// items holds the current list of each category section.
	items map[types.CategoryID][]types.ContentItem
	// about is the pre-rendered about markdown.
	about string
	width int
	// minHeight is the height of the first and the last section at least.
	minHeight int
}

// renderPage renders the whole page and returns it with the bounds of
// every section.
func renderPage(c pageContent) (string, map[string]nav.Bounds) {
	width := max(c.width, 20)
	bounds := make(map[string]nav.Bounds, len(c.sections))

	var b strings.Builder
	line := 0
	for i, s := range c.sections {
		var block string
		switch {
		case s.ID == catalog.HeroSection:
			block = renderHero(c.profile, width)
		case s.ID == catalog.AboutSection:
			block = renderAbout(c.profile, c.about, width)
		default:
			block = renderCategory(c.categories[s.Category], catalog.Preview(c.items[s.Category]), width)
		}
		if i == len(c.sections)-1 {
			block += "\n\n" + FooterStyle.Render(c.profile.Footer)
		}
		// The hero fills the screen and the last section can reach the top.
		if i == 0 || i == len(c.sections)-1 {
			if h := lipgloss.Height(block); h < c.minHeight {
				block += strings.Repeat("\n", c.minHeight-h)
			}
		}

		h := lipgloss.Height(block)
		bounds[s.ID] = nav.Bounds{Top: line, Height: h}
		b.WriteString(block)
		line += h
		if i < len(c.sections)-1 {
			b.WriteString("\n\n")
			line++
		}
	}
	return b.String(), bounds
}

func renderHero(p catalog.Profile, width int) string {
	roles := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, RoleStyle.Render(r))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		HeroTitleStyle.Render(p.Brand),
		"",
		SectionTitleStyle.Width(width).Render(p.Headline),
		HeroTaglineStyle.Width(width).Render(p.Tagline),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, roles...),
	)
}

func renderAbout(p catalog.Profile, about string, width int) string {
	if about == "" {
		about = lipgloss.NewStyle().Width(width).Render(p.About)
	}
	var skills []string
	for _, s := range p.Skills {
		skills = append(skills, renderSkill(s, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.TrimRight(about, "\n"),
		"",
		strings.Join(skills, "\n"),
	)
}

// renderSkill draws "Name  ███████░░░ 70%".
func renderSkill(s catalog.Skill, width int) string {
	barWidth := min(30, max(width-40, 10))
	level := min(max(s.Level, 0), 100)
	filled := barWidth * level / 100
	return fmt.Sprintf("%-32s %s%s %3d%%",
		truncate(s.Name, 32),
		SkillFilledStyle.Render(strings.Repeat("█", filled)),
		SkillEmptyStyle.Render(strings.Repeat("░", barWidth-filled)),
		level)
}

func renderCategory(cat types.Category, preview []types.ContentItem, width int) string {
	parts := []string{
		SectionTitleStyle.Render(glyph(cat.Icon()) + " " + cat.Title()),
		SectionSubtitleStyle.Width(width).Render(cat.Subtitle()),
		"",
	}
	for _, item := range preview {
		parts = append(parts, renderCard(item, width-2))
	}
	parts = append(parts, ViewAllStyle.Render(fmt.Sprintf("View All %s →", cat.Title()))+
		SectionSubtitleStyle.Render("  (enter)"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCard(item types.ContentItem, width int) string {
	title := item.Title()
	if item.HasLink() {
		title += " ↗"
	}
	inner := max(width-2, 1)
	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		CardTitleStyle.Render(truncate(title, inner)),
		CardDescStyle.Render(truncate(item.Description(), inner)),
		TagStyle.Render(truncate(strings.Join(item.DisplayTags(), " • "), inner)),
	))
}

// renderMarkdown renders about text with glamour, falling back to the raw
// text if the renderer fails.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
