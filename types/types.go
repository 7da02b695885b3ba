package types

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
)

// CategoryID identifies one of the fixed content categories.
// The identifier doubles as the remote branch name.
type CategoryID string

const (
	Workflows CategoryID = "workflows"
	Prompts   CategoryID = "prompts"
	Scripts   CategoryID = "scripts"
	Data      CategoryID = "data"
	Code      CategoryID = "code"
)

// AllCategoryIDs lists the categories in page order.
var AllCategoryIDs = []CategoryID{Workflows, Prompts, Scripts, Data, Code}

// String returns the identifier string of the category
func (c CategoryID) String() string { return string(c) }

// Valid reports whether c is one of the fixed categories
func (c CategoryID) Valid() bool {
	for _, id := range AllCategoryIDs {
		if id == c {
			return true
		}
	}
	return false
}

// Icon is an opaque handle resolved to a glyph by the presentation layer.
type Icon string

const (
	IconWorkflow Icon = "workflow"
	IconPrompt   Icon = "prompt"
	IconTerminal Icon = "terminal"
	IconDatabase Icon = "database"
	IconCode     Icon = "code"
)

// MaxDisplayTags is the number of tags a card shows.
const MaxDisplayTags = 3

// ContentItem is a single card. It is immutable once constructed.
type ContentItem struct {
	title       string
	description string
	icon        Icon
	tags        []string
	link        string
}

// NewContentItem creates a ContentItem. The tag slice is copied.
func NewContentItem(title, description string, icon Icon, tags []string, link string) ContentItem {
	return ContentItem{
		title:       title,
		description: description,
		icon:        icon,
		tags:        append([]string(nil), tags...),
		link:        link,
	}
}

// Getters for ContentItem fields
func (c ContentItem) Icon() Icon     { return c.icon }
func (c ContentItem) Link() string   { return c.link }
func (c ContentItem) HasLink() bool  { return c.link != "" && c.link != "#" }
func (c ContentItem) Tags() []string { return append([]string(nil), c.tags...) }

// DisplayTags returns at most the first MaxDisplayTags tags.
func (c ContentItem) DisplayTags() []string {
	if len(c.tags) <= MaxDisplayTags {
		return c.Tags()
	}
	return append([]string(nil), c.tags[:MaxDisplayTags]...)
}

// list.Item interface implementation
func (c ContentItem) Title() string       { return c.title }
func (c ContentItem) Description() string { return c.description }
func (c ContentItem) FilterValue() string { return c.title }

// Compile-time check that ContentItem implements list.Item
var _ list.Item = ContentItem{}

// Category binds a CategoryID to its display text, icon and fallback items.
type Category struct {
	id              CategoryID
	title           string
	subtitle        string
	archiveTitle    string
	archiveSubtitle string
	icon            Icon
	fallback        []ContentItem
}

// NewCategory creates a new Category. The fallback slice is copied.
// An empty archiveTitle reuses the section title.
func NewCategory(id CategoryID, title, subtitle, archiveTitle, archiveSubtitle string, icon Icon, fallback []ContentItem) Category {
	if archiveTitle == "" {
		archiveTitle = title
	}
	return Category{
		id:              id,
		title:           title,
		subtitle:        subtitle,
		archiveTitle:    archiveTitle,
		archiveSubtitle: archiveSubtitle,
		icon:            icon,
		fallback:        append([]ContentItem(nil), fallback...),
	}
}

// Getters for Category fields
func (c Category) ID() CategoryID          { return c.id }
func (c Category) Title() string           { return c.title }
func (c Category) Subtitle() string        { return c.subtitle }
func (c Category) ArchiveTitle() string    { return c.archiveTitle }
func (c Category) ArchiveSubtitle() string { return c.archiveSubtitle }
func (c Category) Icon() Icon              { return c.icon }
func (c Category) Fallback() []ContentItem { return append([]ContentItem(nil), c.fallback...) }
func (c Category) FallbackLen() int        { return len(c.fallback) }

// Section is a named, scroll-anchored region of the main page.
type Section struct {
	ID    string
	Label string
	// Category is empty for sections that are not content categories.
	Category CategoryID
}

// ItemSource is the core abstraction for remote listing access.
// No bubbletea dependency; the TUI and the MCP server both call it.
type ItemSource interface {
	ListItems(ctx context.Context, category CategoryID, icon Icon) ([]ContentItem, error)
}
