package main

import (
	"flag"
	"fmt"

	"visaexpert/internal/validator"
)

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, cat, err := loadConfigAndCatalogue(*configPath)
	if err != nil {
		return err
	}

	report, err := validator.Validate(cat)
	if err != nil {
		return fmt.Errorf("validating catalogue: %w", err)
	}

	if report.IsClean() {
		fmt.Println("catalogue is structurally clean: no cycles, unreachable conditions, or dead rules")
		return nil
	}

	for _, cycle := range report.Cycles {
		fmt.Printf("cycle: %v\n", cycle)
	}
	for _, cond := range report.UnreachableConditions {
		fmt.Printf("unreachable condition: %s\n", cond)
	}
	for _, ruleID := range report.DeadRules {
		fmt.Printf("dead rule: %s\n", ruleID)
	}
	return fmt.Errorf("catalogue has %d cycle(s), %d unreachable condition(s), %d dead rule(s)",
		len(report.Cycles), len(report.UnreachableConditions), len(report.DeadRules))
}
