package main

import (
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"
)

func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, cat, err := loadConfigAndCatalogue(*configPath)
	if err != nil {
		return err
	}

	fmt.Printf("catalogue backend: %s\n", cfg.Catalogue.Type)
	fmt.Printf("rules loaded: %s\n", humanize.Comma(int64(len(cat.Rules))))
	fmt.Printf("goal actions: %d\n", len(cat.GoalActions))
	for _, gr := range cat.GoalRules() {
		fmt.Printf("  - %s (%s): %d condition(s)\n", gr.Action, gr.VisaType, len(gr.Conditions))
	}
	return nil
}
