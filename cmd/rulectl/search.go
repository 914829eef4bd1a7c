package main

import (
	"context"
	"flag"
	"fmt"

	"visaexpert/internal/search"
)

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file (optional)")
	query := fs.String("query", "", "condition key to fuzzy-match")
	limit := fs.Int("limit", 5, "maximum number of matches to return")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *query == "" {
		return fmt.Errorf("search: --query is required")
	}

	_, cat, err := loadConfigAndCatalogue(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	idx, err := search.NewIndex(ctx, cat, search.NewTrigramEmbedder(0))
	if err != nil {
		return fmt.Errorf("building search index: %w", err)
	}

	matches, err := idx.Query(ctx, *query, *limit)
	if err != nil {
		return fmt.Errorf("querying: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}
