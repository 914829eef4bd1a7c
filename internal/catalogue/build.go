package catalogue

import "visaexpert/internal/rule"

// Build converts a backend-produced CatalogueDocument into the
// immutable rule.Catalogue snapshot every session is constructed from,
// validating every record first so a malformed rule never reaches
// rule.NewCatalogue.
func Build(doc *CatalogueDocument) (*rule.Catalogue, error) {
	rules := make([]rule.Rule, 0, len(doc.Rules))
	for _, rec := range doc.Rules {
		if err := rec.validate(); err != nil {
			return nil, err
		}
		rules = append(rules, rule.Rule{
			ID:           rec.ID,
			Name:         rec.Name,
			Conditions:   rec.Conditions,
			Action:       rec.Action,
			IsOrRule:     rec.IsOrRule,
			VisaType:     rec.VisaType,
			IsGoalAction: rec.IsGoalAction,
		})
	}
	return rule.NewCatalogue(rules, doc.GoalActions, doc.VisaTypeOrder), nil
}
