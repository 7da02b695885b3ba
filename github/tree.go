package github

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/grant/suneater/types"
)

// Entry types reported by the git trees API.
const (
	TypeBlob = "blob"
	TypeTree = "tree"
)

// Entry is one node of a git tree listing.
type Entry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type treeResponse struct {
	SHA       string          `json:"sha"`
	Tree      json.RawMessage `json:"tree"`
	Truncated bool            `json:"truncated"`
}

// ParseTree decodes a git trees response body. A body without a "tree"
// array is reported as ErrMalformedPayload.
func ParseTree(r io.Reader) ([]Entry, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var resp treeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	raw := bytes.TrimSpace(resp.Tree)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: missing tree listing", ErrMalformedPayload)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return entries, nil
}

// Blobs keeps file entries only, preserving order.
func Blobs(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type == TypeBlob && e.Path != "" {
			out = append(out, e)
		}
	}
	return out
}

var (
	extRe       = regexp.MustCompile(`\.[^/.]+$`)
	separatorRe = regexp.MustCompile(`[-_]`)
)

// Title derives a display title from an entry path: the final segment
// with its extension removed and separators turned into spaces. The raw
// path is returned when nothing usable remains.
func Title(p string) string {
	base := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		base = p[i+1:]
	}
	title := separatorRe.ReplaceAllString(extRe.ReplaceAllString(base, ""), " ")
	if strings.TrimSpace(title) == "" {
		return p
	}
	return title
}

// ExtTag returns the uppercased extension of the final path segment, or
// "FILE" when it has none.
func ExtTag(p string) string {
	base := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		base = p[i+1:]
	}
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return "FILE"
	}
	return strings.ToUpper(base[i+1:])
}

// BlobURL builds the web link of a file on a branch.
func BlobURL(webBase, owner, repo, branch, p string) string {
	return fmt.Sprintf("%s/%s/%s/blob/%s/%s", strings.TrimRight(webBase, "/"), owner, repo, branch, p)
}

// Description is the synthesized description of an auto-indexed item.
func Description(branch string) string {
	return fmt.Sprintf("Auto-indexed from %s branch.", branch)
}

// ItemsFromEntries maps file entries of a branch to content items.
// Non-blob entries are skipped.
func ItemsFromEntries(webBase, owner, repo, branch string, icon types.Icon, entries []Entry) []types.ContentItem {
	items := make([]types.ContentItem, 0, len(entries))
	for _, e := range Blobs(entries) {
		items = append(items, types.NewContentItem(
			Title(e.Path),
			Description(branch),
			icon,
			[]string{branch, ExtTag(e.Path)},
			BlobURL(webBase, owner, repo, branch, e.Path),
		))
	}
	return items
}
