package provider

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/grant/suneater/types"
)

// ErrNoSource is returned by fetchers built without an ItemSource.
var ErrNoSource = errors.New("no item source")

// ItemFetcher adapts an ItemSource to a Fetcher. The provider's source
// name is used as the category branch. A nil source fails every refresh.
func ItemFetcher(source types.ItemSource, icon types.Icon) Fetcher[types.ContentItem] {
	return func(ctx context.Context, branch string) ([]types.ContentItem, error) {
		if source == nil {
			return nil, ErrNoSource
		}
		return source.ListItems(ctx, types.CategoryID(branch), icon)
	}
}

// ForCategory builds a provider that starts with the category's fallback.
func ForCategory(c types.Category, source types.ItemSource, logger *zap.Logger) *Provider[types.ContentItem] {
	return New(c.ID().String(), c.Fallback(), ItemFetcher(source, c.Icon()), logger)
}

// ForCategories builds one provider per category.
func ForCategories(categories []types.Category, source types.ItemSource, logger *zap.Logger) map[types.CategoryID]*Provider[types.ContentItem] {
	out := make(map[types.CategoryID]*Provider[types.ContentItem], len(categories))
	for _, c := range categories {
		out[c.ID()] = ForCategory(c, source, logger)
	}
	return out
}

// Members returns the providers as group members in category order.
func Members(categories []types.Category, providers map[types.CategoryID]*Provider[types.ContentItem]) []Refresher {
	out := make([]Refresher, 0, len(providers))
	for _, c := range categories {
		if p, ok := providers[c.ID()]; ok {
			out = append(out, p)
		}
	}
	return out
}
