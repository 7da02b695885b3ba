package github

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/grant/suneater/types"
)

func TestParseTree_Fixture(t *testing.T) {
	f, err := os.Open("testdata/tree_workflows.json")
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()

	entries, err := ParseTree(f)
	if err != nil {
		t.Fatalf("ParseTree returned error: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(entries))
	}

	blobs := Blobs(entries)
	if len(blobs) != 4 {
		t.Fatalf("expected 4 blobs, got %d", len(blobs))
	}
	for _, b := range blobs {
		if b.Type != TypeBlob {
			t.Errorf("non-blob survived filter: %+v", b)
		}
	}
}

func TestParseTree_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>rate limited</html>"},
		{"no tree", `{"message": "Not Found"}`},
		{"tree null", `{"tree": null}`},
		{"tree object", `{"tree": {"path": "a"}}`},
		{"tree of strings", `{"tree": ["a", "b"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTree(strings.NewReader(tt.body))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestParseTree_EmptyListing(t *testing.T) {
	entries, err := ParseTree(strings.NewReader(`{"tree": []}`))
	if err != nil {
		t.Fatalf("empty tree should parse, got %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"deploy-scripts/daily_backup.yaml", "daily backup"},
		{"ssl-renewal.yml", "ssl renewal"},
		{"Makefile", "Makefile"},
		{"archive.tar.gz", "archive.tar"},
		{"a/b/c/report_2024-q1.csv", "report 2024 q1"},
		{".env", ".env"},
		{"dir/.gitignore", "dir/.gitignore"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Title(tt.path); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtTag(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"deploy-scripts/daily_backup.yaml", "YAML"},
		{"monitor.py", "PY"},
		{"Makefile", "FILE"},
		{"v1.2/LICENSE", "FILE"},
		{"trailing.", "FILE"},
		{"archive.tar.gz", "GZ"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ExtTag(tt.path); got != tt.want {
				t.Errorf("ExtTag(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestItemsFromEntries_Example(t *testing.T) {
	entries := []Entry{
		{Path: "deploy-scripts", Type: TypeTree},
		{Path: "deploy-scripts/daily_backup.yaml", Type: TypeBlob},
	}
	items := ItemsFromEntries(DefaultWebBase, "grant", "suneater-data", "workflows", types.IconWorkflow, entries)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Title() != "daily backup" {
		t.Errorf("title = %q", item.Title())
	}
	if !reflect.DeepEqual(item.Tags(), []string{"workflows", "YAML"}) {
		t.Errorf("tags = %v", item.Tags())
	}
	wantLink := "https://github.com/grant/suneater-data/blob/workflows/deploy-scripts/daily_backup.yaml"
	if item.Link() != wantLink {
		t.Errorf("link = %q, want %q", item.Link(), wantLink)
	}
	if item.Description() != "Auto-indexed from workflows branch." {
		t.Errorf("description = %q", item.Description())
	}
	if item.Icon() != types.IconWorkflow {
		t.Errorf("icon = %q", item.Icon())
	}
}

func TestItemsFromEntries_CountMatchesBlobs(t *testing.T) {
	f, err := os.Open("testdata/tree_workflows.json")
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()

	entries, err := ParseTree(f)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	items := ItemsFromEntries(DefaultWebBase, "o", "r", "scripts", types.IconTerminal, entries)
	if len(items) != len(Blobs(entries)) {
		t.Fatalf("items = %d, blobs = %d", len(items), len(Blobs(entries)))
	}
	for i, item := range items {
		tags := item.Tags()
		if len(tags) != 2 || tags[0] != "scripts" {
			t.Errorf("item[%d] tags = %v", i, tags)
		}
		if tags[1] != ExtTag(Blobs(entries)[i].Path) {
			t.Errorf("item[%d] ext tag = %q", i, tags[1])
		}
	}
}
