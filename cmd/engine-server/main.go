// Command engine-server runs the visa-eligibility diagnosis engine as an
// MCP server communicating over stdio, modeled directly on the
// teacher's cmd/server/main.go: load configuration, build the
// collaborators, register tools, and run until stdin closes.
//
// It is spawned as a child process by an MCP client and should not be
// run interactively.
//
// Environment variables:
//   - VISAEXPERT_CONFIG: path to a YAML configuration file (optional;
//     defaults plus VX_* environment overrides are used otherwise)
package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"visaexpert/internal/catalogue"
	"visaexpert/internal/config"
	"visaexpert/internal/mcpadapter"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("engine-server: loading configuration: %v", err)
	}
	log.Printf("engine-server: loaded configuration (catalogue backend=%s)", cfg.Catalogue.Type)

	cat, err := catalogue.Load(cfg.CatalogueBackendConfig())
	if err != nil {
		log.Fatalf("engine-server: loading catalogue: %v", err)
	}
	log.Printf("engine-server: loaded catalogue with %d rule(s)", len(cat.Rules))

	adapter := mcpadapter.NewServer(cat)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)

	adapter.RegisterTools(mcpServer)
	log.Println("engine-server: registered tools: visa-start, visa-answer, visa-back, visa-restart, visa-state, visa-related-visa-types")

	transport := &mcp.StdioTransport{}
	ctx := context.Background()
	log.Println("engine-server: starting MCP server")
	if err := mcpServer.Run(ctx, transport); err != nil {
		log.Fatalf("engine-server: server error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("VISAEXPERT_CONFIG"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
