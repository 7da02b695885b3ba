package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/github"
	"github.com/grant/suneater/mcpsrv/dto"
	"github.com/grant/suneater/provider"
	"github.com/grant/suneater/types"
)

const (
	sourceRemote   = "remote"
	sourceFallback = "fallback"
)

type categoryListArgs struct {
	Query string `json:"query,omitempty" jsonschema:"Optional filter on category id or title"`
}

type categoryGetItemsArgs struct {
	Category string `json:"category" jsonschema:"Category id: workflows, prompts, scripts, data, code"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Optional maximum number of items"`
	Preview  bool   `json:"preview,omitempty" jsonschema:"Return only the page preview (first 5 items)"`
}

type categoryListOutput struct {
	Query string         `json:"query"`
	Total int            `json:"total"`
	Items []dto.Category `json:"items"`
}

type categoryGetItemsOutput struct {
	Category dto.Category `json:"category"`
	// Source is "remote" when the listing came from the repository branch.
	Source string            `json:"source"`
	Reason string            `json:"reason,omitempty"`
	Total  int               `json:"total"`
	Items  []dto.ContentItem `json:"items"`
}

type sectionListOutput struct {
	Total int           `json:"total"`
	Items []dto.Section `json:"items"`
}

type cacheClearOutput struct {
	Status string `json:"status"`
}

type ServerOptions struct {
	EnableAdmin bool
	APIKey      string
	Logger      *zap.Logger
}

type cacheClearSource interface {
	ClearCache()
}

// NewServer registers the catalog tools. A nil source serves fallback
// items only.
func NewServer(cat *catalog.Catalog, source types.ItemSource, version string, opts *ServerOptions) *mcp.Server {
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}
	if opts == nil {
		opts = &ServerOptions{}
	}
	if cat == nil {
		cat = catalog.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "suneater", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "category_list",
		Description: "List the content categories shown on the page.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args categoryListArgs) (*mcp.CallToolResult, categoryListOutput, error) {
		return categoryListHandler(ctx, req, args, cat)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "category_get_items",
		Description: "Get the items of a category, from its repository branch when reachable.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args categoryGetItemsArgs) (*mcp.CallToolResult, categoryGetItemsOutput, error) {
		return categoryGetItemsHandler(ctx, req, args, cat, source, logger)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "section_list",
		Description: "List the page sections in navigation order.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, sectionListOutput, error) {
		return sectionListHandler(ctx, req, cat)
	})

	if opts.EnableAdmin && strings.TrimSpace(opts.APIKey) != "" {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "cache_clear",
			Description: "Clear cached branch listings (admin).",
		}, func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, cacheClearOutput, error) {
			return cacheClearHandler(ctx, req, source, logger)
		})
	}

	return server
}

func categoryListHandler(_ context.Context, _ *mcp.CallToolRequest, args categoryListArgs, cat *catalog.Catalog) (*mcp.CallToolResult, categoryListOutput, error) {
	query := strings.TrimSpace(strings.ToLower(args.Query))
	all := cat.Categories()
	filtered := make([]types.Category, 0, len(all))
	for _, c := range all {
		if query == "" {
			filtered = append(filtered, c)
			continue
		}
		if strings.Contains(strings.ToLower(c.Title()), query) || strings.Contains(c.ID().String(), query) {
			filtered = append(filtered, c)
		}
	}

	return nil, categoryListOutput{
		Query: args.Query,
		Total: len(filtered),
		Items: dto.FromCategories(filtered),
	}, nil
}

func categoryGetItemsHandler(ctx context.Context, _ *mcp.CallToolRequest, args categoryGetItemsArgs, cat *catalog.Catalog, source types.ItemSource, logger *zap.Logger) (*mcp.CallToolResult, categoryGetItemsOutput, error) {
	id, err := parseCategory(args.Category)
	if err != nil {
		return errorToolResult(err.Error()), categoryGetItemsOutput{}, nil
	}
	category, ok := cat.Category(id)
	if !ok {
		return errorToolResult(fmt.Sprintf("category %q is not in the catalog", id)), categoryGetItemsOutput{}, nil
	}
	if args.Limit < 0 {
		return errorToolResult("limit must not be negative"), categoryGetItemsOutput{}, nil
	}

	p := provider.ForCategory(category, source, logger)
	defer p.Close()

	out := categoryGetItemsOutput{
		Category: dto.FromCategory(category),
		Source:   sourceFallback,
	}
	if err := p.Refresh(ctx); err != nil {
		out.Reason = fallbackReason(err)
	}
	if p.Remote() {
		out.Source = sourceRemote
	}

	items := p.Items()
	if args.Preview {
		items = catalog.Preview(items)
	}
	items = applyLimit(items, args.Limit)

	out.Total = len(items)
	out.Items = dto.FromContentItems(items)
	return nil, out, nil
}

func sectionListHandler(_ context.Context, _ *mcp.CallToolRequest, cat *catalog.Catalog) (*mcp.CallToolResult, sectionListOutput, error) {
	sections := cat.Sections()
	return nil, sectionListOutput{
		Total: len(sections),
		Items: dto.FromSections(sections),
	}, nil
}

func cacheClearHandler(_ context.Context, _ *mcp.CallToolRequest, source types.ItemSource, logger *zap.Logger) (*mcp.CallToolResult, cacheClearOutput, error) {
	clearable, ok := source.(cacheClearSource)
	if !ok {
		return errorToolResult("cache clear is not supported by this source"), cacheClearOutput{}, nil
	}
	clearable.ClearCache()
	logger.Info("cache cleared by admin tool")
	return nil, cacheClearOutput{Status: "ok"}, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, provider.ErrNoSource):
		return "not_configured"
	case errors.Is(err, provider.ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, provider.ErrFetchPanic):
		return "fetch_panic"
	default:
		return github.Reason(err)
	}
}

func errorToolResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

func applyLimit(items []types.ContentItem, limit int) []types.ContentItem {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func parseCategory(raw string) (types.CategoryID, error) {
	v := types.CategoryID(strings.TrimSpace(strings.ToLower(raw)))
	if v == "" {
		return "", errors.New("category is required")
	}
	if !v.Valid() {
		return "", fmt.Errorf("invalid category %q; expected workflows|prompts|scripts|data|code", raw)
	}
	return v, nil
}
