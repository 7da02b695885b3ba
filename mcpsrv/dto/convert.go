package dto

import (
	"github.com/grant/suneater/types"
)

// FromContentItem drops placeholder links so clients only see real URLs.
func FromContentItem(c types.ContentItem) ContentItem {
	item := ContentItem{
		Title:       c.Title(),
		Description: c.Description(),
		Icon:        string(c.Icon()),
		Tags:        c.Tags(),
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if c.HasLink() {
		item.Link = c.Link()
	}
	return item
}

func FromContentItems(items []types.ContentItem) []ContentItem {
	out := make([]ContentItem, 0, len(items))
	for _, c := range items {
		out = append(out, FromContentItem(c))
	}
	return out
}

func FromCategory(c types.Category) Category {
	return Category{
		ID:              c.ID().String(),
		Title:           c.Title(),
		Subtitle:        c.Subtitle(),
		ArchiveTitle:    c.ArchiveTitle(),
		ArchiveSubtitle: c.ArchiveSubtitle(),
		Icon:            string(c.Icon()),
		FallbackCount:   c.FallbackLen(),
	}
}

func FromCategories(categories []types.Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, FromCategory(c))
	}
	return out
}

func FromSections(sections []types.Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, Section{ID: s.ID, Label: s.Label, Category: s.Category.String()})
	}
	return out
}
