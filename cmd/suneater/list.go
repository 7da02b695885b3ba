package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/github"
	"github.com/grant/suneater/mcpsrv/dto"
	"github.com/grant/suneater/provider"
	"github.com/grant/suneater/types"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list [category...]",
	Short: "List the items of every category once and exit",
	Long: `list refreshes the categories concurrently and prints their items.
Categories that cannot be listed print their built-in items.`,
	ValidArgs: categoryNames(),
	Args:      cobra.OnlyValidArgs,
	RunE:      runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of text")
}

func categoryNames() []string {
	names := make([]string, 0, len(types.AllCategoryIDs))
	for _, id := range types.AllCategoryIDs {
		names = append(names, id.String())
	}
	return names
}

type listedCategory struct {
	Category dto.Category      `json:"category"`
	Source   string            `json:"source"`
	Items    []dto.ContentItem `json:"items"`
}

func runList(cmd *cobra.Command, args []string) error {
	cat := catalog.Default()
	categories := make([]types.Category, 0, len(cat.Categories()))
	for _, c := range cat.Categories() {
		if len(args) == 0 || slices.Contains(args, c.ID().String()) {
			categories = append(categories, c)
		}
	}

	providers := provider.ForCategories(categories, newSource(appConfig, false), logger)
	group := provider.NewGroup(provider.Members(categories, providers)...)
	defer group.Close()

	outcomes := group.RefreshAll(cmd.Context())
	for source, err := range outcomes {
		if err != nil {
			logger.Debug("category listed from fallback",
				zap.String("category", source),
				zap.String("reason", github.Reason(err)),
				zap.Error(err))
		}
	}

	listed := make([]listedCategory, 0, len(categories))
	for _, c := range categories {
		p := providers[c.ID()]
		source := "fallback"
		if p.Remote() {
			source = "remote"
		}
		listed = append(listed, listedCategory{
			Category: dto.FromCategory(c),
			Source:   source,
			Items:    dto.FromContentItems(p.Items()),
		})
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	}
	return printListing(cmd.OutOrStdout(), listed)
}

func printListing(w io.Writer, listed []listedCategory) error {
	for i, l := range listed {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%s, %d items)\n", l.Category.Title, l.Source, len(l.Items)); err != nil {
			return err
		}
		for _, item := range l.Items {
			line := "  " + item.Title
			if item.Link != "" {
				line += "  " + item.Link
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
