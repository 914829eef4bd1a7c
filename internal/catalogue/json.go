package catalogue

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
)

// ruleRecordSchema is the JSON Schema every rule record in a catalogue
// file is validated against before a rule.Rule is ever constructed from
// it.
var ruleRecordSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"conditions", "action"},
	Properties: map[string]*jsonschema.Schema{
		"id":             {Type: "string"},
		"name":           {Type: "string"},
		"conditions":     {Type: "array", Items: &jsonschema.Schema{Type: "string"}, MinItems: ptrTo(1)},
		"action":         {Type: "string", MinLength: ptrTo(1)},
		"is_or_rule":     {Type: "boolean"},
		"visa_type":      {Type: "string"},
		"is_goal_action": {Type: "boolean"},
	},
}

// JSONFile is a Loader backed by a single catalogue file: a JSON
// document of the shape `{"rules": [...], "goal_actions": [...],
// "visa_type_order": {...}}` — no persistence across process restarts
// beyond the file itself.
type JSONFile struct {
	Path string
}

// NewJSONFile returns a Loader reading the catalogue document at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func ptrTo[T any](v T) *T { return &v }

type jsonCatalogueDocument struct {
	Rules         []json.RawMessage `json:"rules"`
	GoalActions   []string          `json:"goal_actions"`
	VisaTypeOrder map[string]int    `json:"visa_type_order"`
}

// Load reads and validates the catalogue file, returning
// ErrSchemaValidation (wrapped with the offending rule's index) on the
// first record that fails schema validation.
func (f *JSONFile) Load() (*CatalogueDocument, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("catalogue: reading %s: %w", f.Path, err)
	}

	var doc jsonCatalogueDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalogue: parsing %s: %w", f.Path, err)
	}

	resolved, err := ruleRecordSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("catalogue: resolving rule schema: %w", err)
	}

	rules := make([]RuleRecord, 0, len(doc.Rules))
	for i, rawRule := range doc.Rules {
		var instance any
		if err := json.Unmarshal(rawRule, &instance); err != nil {
			return nil, fmt.Errorf("catalogue: %s rule[%d]: %w", f.Path, i, err)
		}
		if err := resolved.Validate(instance); err != nil {
			return nil, fmt.Errorf("catalogue: %s rule[%d]: %w: %v", f.Path, i, ErrSchemaValidation, err)
		}

		var rec RuleRecord
		if err := json.Unmarshal(rawRule, &rec); err != nil {
			return nil, fmt.Errorf("catalogue: %s rule[%d]: %w", f.Path, i, err)
		}
		rules = append(rules, rec)
	}

	return &CatalogueDocument{
		Rules:         rules,
		GoalActions:   doc.GoalActions,
		VisaTypeOrder: doc.VisaTypeOrder,
	}, nil
}
