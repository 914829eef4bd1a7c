package catalogue

import (
	"fmt"
	"log"

	"visaexpert/internal/rule"
)

// BackendType names a catalogue backend, configured via internal/config.
type BackendType string

const (
	BackendJSON  BackendType = "json"
	BackendSQLite BackendType = "sqlite"
	BackendNeo4j BackendType = "neo4j"
)

// Config selects and configures a catalogue backend, mirroring the
// teacher's storage.Config.
type Config struct {
	Type       BackendType
	JSONPath   string
	SQLitePath string
	SQLiteTimeoutMs int
	Neo4j      Neo4jConfig
	// FallbackType, if set, is used when the primary backend fails to
	// load — the catalogue equivalent of storage.NewStorage's
	// SQLite-to-memory fallback. An empty fallback produces an empty
	// catalogue rather than blocking session-server startup.
	FallbackType BackendType
}

// Load resolves cfg.Type to a Loader, loads it, and builds a
// rule.Catalogue — falling back to cfg.FallbackType (or an empty
// catalogue) on failure, logged rather than fatal, following the
// teacher's factory.go fallback idiom.
func Load(cfg Config) (*rule.Catalogue, error) {
	loader, err := newLoader(cfg)
	if err != nil {
		return nil, err
	}

	doc, err := loader.Load()
	if err != nil {
		if cfg.FallbackType != "" && cfg.FallbackType != cfg.Type {
			log.Printf("catalogue: %s backend failed: %v. Falling back to %s", cfg.Type, err, cfg.FallbackType)
			fallback := cfg
			fallback.Type = cfg.FallbackType
			fallback.FallbackType = ""
			return Load(fallback)
		}
		log.Printf("warning: catalogue load failed, starting with an empty catalogue: %v", err)
		return rule.NewCatalogue(nil, nil, nil), nil
	}

	return Build(doc)
}

func newLoader(cfg Config) (Loader, error) {
	switch cfg.Type {
	case BackendJSON, "":
		return NewJSONFile(cfg.JSONPath), nil
	case BackendSQLite:
		return NewSQLite(cfg.SQLitePath, cfg.SQLiteTimeoutMs), nil
	case BackendNeo4j:
		return NewNeo4j(cfg.Neo4j), nil
	default:
		return nil, fmt.Errorf("catalogue: unknown backend type %q", cfg.Type)
	}
}
