package main

import (
	"fmt"

	"visaexpert/internal/catalogue"
	"visaexpert/internal/config"
	"visaexpert/internal/rule"
)

func loadConfigAndCatalogue(configPath string) (*config.Config, *rule.Catalogue, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	cat, err := catalogue.Load(cfg.CatalogueBackendConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalogue: %w", err)
	}
	return cfg, cat, nil
}
