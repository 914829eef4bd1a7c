package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"visaexpert/internal/catalogue"
)

// exportDocument mirrors the on-disk shape catalogue.JSONFile reads,
// so `rulectl export` against a SQLite or Neo4j backend produces a file
// `rulectl load --config ...json...` can read back.
type exportDocument struct {
	Rules         []catalogue.RuleRecord `json:"rules"`
	GoalActions   []string               `json:"goal_actions"`
	VisaTypeOrder map[string]int         `json:"visa_type_order"`
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file (optional)")
	outPath := fs.String("out", "", "path to write the exported JSON catalogue")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		return fmt.Errorf("export: --out is required")
	}

	_, cat, err := loadConfigAndCatalogue(*configPath)
	if err != nil {
		return err
	}

	doc := exportDocument{
		Rules:         make([]catalogue.RuleRecord, len(cat.Rules)),
		GoalActions:   cat.GoalActions,
		VisaTypeOrder: cat.VisaTypeOrder,
	}
	for i, r := range cat.Rules {
		doc.Rules[i] = catalogue.RuleRecord{
			ID:           r.ID,
			Name:         r.Name,
			Conditions:   r.Conditions,
			Action:       r.Action,
			IsOrRule:     r.IsOrRule,
			VisaType:     r.VisaType,
			IsGoalAction: r.IsGoalAction,
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshaling: %w", err)
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		return fmt.Errorf("export: writing %s: %w", *outPath, err)
	}

	fmt.Printf("exported %d rule(s) to %s\n", len(doc.Rules), *outPath)
	return nil
}
