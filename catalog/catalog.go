// Package catalog holds the static page content: profile text, the
// category bindings and the fallback items shown when no remote listing
// is available.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/grant/suneater/types"
)

//go:embed catalog.yaml
var embedded []byte

// Section identifiers that are not categories.
const (
	HeroSection  = "hero"
	AboutSection = "about"
)

// PreviewSize is the number of items a category section shows on the main page.
const PreviewSize = 5

// Skill is a labelled proficiency level in percent.
type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// Profile is the non-category page copy.
type Profile struct {
	Brand    string   `yaml:"brand"`
	Headline string   `yaml:"headline"`
	Tagline  string   `yaml:"tagline"`
	Roles    []string `yaml:"roles"`
	About    string   `yaml:"about"`
	Skills   []Skill  `yaml:"skills"`
	Footer   string   `yaml:"footer"`
}

type itemDoc struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Link        string   `yaml:"link"`
}

type categoryDoc struct {
	ID              string    `yaml:"id"`
	Title           string    `yaml:"title"`
	Subtitle        string    `yaml:"subtitle"`
	ArchiveTitle    string    `yaml:"archive_title"`
	ArchiveSubtitle string    `yaml:"archive_subtitle"`
	Icon            string    `yaml:"icon"`
	Items           []itemDoc `yaml:"items"`
}

type document struct {
	Profile    Profile       `yaml:"profile"`
	Categories []categoryDoc `yaml:"categories"`
}

// Catalog is the parsed page content.
type Catalog struct {
	profile    Profile
	categories []types.Category
	byID       map[types.CategoryID]types.Category
}

// Default parses the embedded catalog. The embedded file is validated by
// tests, so a parse failure here is a programming error.
func Default() *Catalog {
	c, err := Parse(strings.NewReader(string(embedded)))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse reads a catalog document. Every fixed category must be present
// exactly once; unknown categories are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		profile: doc.Profile,
		byID:    make(map[types.CategoryID]types.Category, len(doc.Categories)),
	}
	for _, cd := range doc.Categories {
		id := types.CategoryID(strings.TrimSpace(cd.ID))
		if !id.Valid() {
			return nil, fmt.Errorf("unknown category %q", cd.ID)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate category %q", cd.ID)
		}
		icon := types.Icon(cd.Icon)
		items := make([]types.ContentItem, 0, len(cd.Items))
		for _, it := range cd.Items {
			items = append(items, types.NewContentItem(it.Title, it.Description, icon, it.Tags, it.Link))
		}
		c.byID[id] = types.NewCategory(id, cd.Title, cd.Subtitle, cd.ArchiveTitle, cd.ArchiveSubtitle, icon, items)
	}

	for _, id := range types.AllCategoryIDs {
		cat, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("missing category %q", id)
		}
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// Profile returns the page copy.
func (c *Catalog) Profile() Profile { return c.profile }

// Categories returns the categories in page order.
func (c *Catalog) Categories() []types.Category {
	return append([]types.Category(nil), c.categories...)
}

// Category looks up a category by id.
func (c *Catalog) Category(id types.CategoryID) (types.Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// Sections returns the page sections in scroll order: hero, about, then
// one section per category.
func (c *Catalog) Sections() []types.Section {
	sections := []types.Section{
		{ID: HeroSection, Label: "Home"},
		{ID: AboutSection, Label: label(AboutSection)},
	}
	for _, cat := range c.categories {
		sections = append(sections, types.Section{
			ID:       cat.ID().String(),
			Label:    label(cat.ID().String()),
			Category: cat.ID(),
		})
	}
	return sections
}

var titleCaser = cases.Title(language.English)

func label(id string) string {
	return titleCaser.String(id)
}

// Preview returns at most PreviewSize leading items.
func Preview(items []types.ContentItem) []types.ContentItem {
	if len(items) <= PreviewSize {
		return items
	}
	return items[:PreviewSize]
}
