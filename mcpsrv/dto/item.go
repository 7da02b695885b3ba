package dto

type ContentItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link,omitempty"`
}

type Category struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	ArchiveTitle    string `json:"archive_title"`
	ArchiveSubtitle string `json:"archive_subtitle"`
	Icon            string `json:"icon"`
	FallbackCount   int    `json:"fallback_count"`
}

type Section struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
}
