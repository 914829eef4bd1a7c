package catalogue

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// Neo4jConfig holds connection parameters for the Neo4j-backed
// catalogue loader.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// Neo4j is a Loader for installations that model their rule graph
// natively in Neo4j: `(:Condition)`/`(:Action)` nodes linked by
// `(:Rule)-[:REQUIRES]->(:Condition)` and `(:Rule)-[:PRODUCES]->(:Action)`
// edges, the graph-native analogue of the JSON/SQLite row-oriented
// backends.
type Neo4j struct {
	cfg Neo4jConfig
}

// NewNeo4j returns a Loader reading the catalogue from a Neo4j database.
func NewNeo4j(cfg Neo4jConfig) *Neo4j {
	if cfg.Database == "" {
		cfg.Database = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Neo4j{cfg: cfg}
}

// Load opens a driver, reads the rules, the goal actions and the
// visa-type order in three separate read transactions, and closes the
// driver before returning.
func (n *Neo4j) Load() (*CatalogueDocument, error) {
	driver, err := neo4j.NewDriverWithContext(
		n.cfg.URI,
		neo4j.BasicAuth(n.cfg.Username, n.cfg.Password, ""),
		func(c *config.Config) {
			c.ConnectionAcquisitionTimeout = n.cfg.Timeout
			c.SocketConnectTimeout = n.cfg.Timeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("catalogue: creating neo4j driver: %w", err)
	}
	defer driver.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.Timeout)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("catalogue: verifying neo4j connectivity: %w", err)
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.cfg.Database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	rules, err := n.loadRules(ctx, session)
	if err != nil {
		return nil, err
	}
	goalActions, err := n.loadGoalActions(ctx, session)
	if err != nil {
		return nil, err
	}
	visaOrder, err := n.loadVisaTypeOrder(ctx, session)
	if err != nil {
		return nil, err
	}

	return &CatalogueDocument{
		Rules:         rules,
		GoalActions:   goalActions,
		VisaTypeOrder: visaOrder,
	}, nil
}

func (n *Neo4j) loadRules(ctx context.Context, session neo4j.SessionWithContext) ([]RuleRecord, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (r:Rule)
			OPTIONAL MATCH (r)-[:REQUIRES]->(c:Condition)
			WITH r, collect(c.key) AS conditions
			OPTIONAL MATCH (r)-[:PRODUCES]->(a:Action)
			RETURN r.id AS id, r.name AS name, conditions, a.key AS action,
			       r.is_or_rule AS is_or_rule, r.visa_type AS visa_type,
			       r.is_goal_action AS is_goal_action
			ORDER BY r.id
		`, nil)
		if err != nil {
			return nil, err
		}

		var records []RuleRecord
		for res.Next(ctx) {
			rec := res.Record()
			ruleID, _ := rec.Get("id")
			name, _ := rec.Get("name")
			conds, _ := rec.Get("conditions")
			action, _ := rec.Get("action")
			isOr, _ := rec.Get("is_or_rule")
			visaType, _ := rec.Get("visa_type")
			isGoal, _ := rec.Get("is_goal_action")

			rr := RuleRecord{
				ID:           asString(ruleID),
				Name:         asString(name),
				Action:       asString(action),
				VisaType:     asString(visaType),
				IsOrRule:     asBool(isOr),
				IsGoalAction: asBool(isGoal),
			}
			if raw, ok := conds.([]any); ok {
				for _, c := range raw {
					if s, ok := c.(string); ok && s != "" {
						rr.Conditions = append(rr.Conditions, s)
					}
				}
			}
			if err := rr.validate(); err != nil {
				return nil, fmt.Errorf("rule %s: %w", rr.ID, err)
			}
			records = append(records, rr)
		}
		return records, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("catalogue: reading rule graph: %w", err)
	}
	return result.([]RuleRecord), nil
}

func (n *Neo4j) loadGoalActions(ctx context.Context, session neo4j.SessionWithContext) ([]string, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (a:Action {is_goal: true}) RETURN a.key AS key ORDER BY a.key`, nil)
		if err != nil {
			return nil, err
		}
		var actions []string
		for res.Next(ctx) {
			key, _ := res.Record().Get("key")
			actions = append(actions, asString(key))
		}
		return actions, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("catalogue: reading goal actions: %w", err)
	}
	return result.([]string), nil
}

func (n *Neo4j) loadVisaTypeOrder(ctx context.Context, session neo4j.SessionWithContext) (map[string]int, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (v:VisaType) RETURN v.code AS code, v.order AS ord`, nil)
		if err != nil {
			return nil, err
		}
		order := make(map[string]int)
		for res.Next(ctx) {
			rec := res.Record()
			code, _ := rec.Get("code")
			ord, _ := rec.Get("ord")
			order[asString(code)] = int(asInt64(ord))
		}
		return order, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("catalogue: reading visa type order: %w", err)
	}
	return result.(map[string]int), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
