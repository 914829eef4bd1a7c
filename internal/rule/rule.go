// Package rule holds the immutable value types describing a loaded rule
// catalogue: individual rules, the goal-action list, visa-type ordering,
// and the derived/base condition partition computed once at load time.
package rule

// Rule is a single inference rule: a combinator (AND by default, OR when
// IsOrRule) over Conditions that, once satisfied, concludes Action.
type Rule struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Conditions []string `json:"conditions"`
	Action     string   `json:"action"`
	IsOrRule   bool     `json:"is_or_rule"`
	VisaType   string   `json:"visa_type"`

	// IsGoalAction is advisory only — real goal membership is determined
	// by Catalogue.GoalActions, not by this flag. A rule can carry
	// IsGoalAction=true for display purposes without being in the goal
	// set, and vice versa.
	IsGoalAction bool `json:"is_goal_action"`
}

// VisaTypeConfig describes one entry of the externally configured
// visa-type ordering document.
type VisaTypeConfig struct {
	Code        string `json:"code" yaml:"code"`
	Order       int    `json:"order" yaml:"order"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalogue is the immutable snapshot of a loaded rule set: the rule
// list, the goal-action list (order-significant for display only), and
// the visa-type ordering used by the question planner's bucket order.
//
// A Catalogue is constructed once by a loader and then shared by pointer
// with every session — it is never mutated after construction, and the
// core never hides it behind a process-wide singleton.
type Catalogue struct {
	Rules         []Rule
	GoalActions   []string
	VisaTypeOrder map[string]int

	derivedConditions map[string]bool
	rulesByAction     map[string][]int // action -> indices into Rules
	rulesByCondition  map[string][]int // condition -> indices into Rules
}

// NewCatalogue builds a Catalogue from rules and config, pre-computing
// the derived-condition set and the action/condition indices the
// evaluator, propagator and planner all need repeatedly.
func NewCatalogue(rules []Rule, goalActions []string, visaTypeOrder map[string]int) *Catalogue {
	c := &Catalogue{
		Rules:             rules,
		GoalActions:       goalActions,
		VisaTypeOrder:     visaTypeOrder,
		derivedConditions: make(map[string]bool),
		rulesByAction:      make(map[string][]int),
		rulesByCondition:  make(map[string][]int),
	}
	for i, r := range rules {
		c.derivedConditions[r.Action] = true
		c.rulesByAction[r.Action] = append(c.rulesByAction[r.Action], i)
		for _, cond := range r.Conditions {
			c.rulesByCondition[cond] = append(c.rulesByCondition[cond], i)
		}
	}
	return c
}

// IsDerived reports whether condition appears as some rule's action.
func (c *Catalogue) IsDerived(condition string) bool {
	return c.derivedConditions[condition]
}

// RulesProducing returns every rule whose Action equals action.
func (c *Catalogue) RulesProducing(action string) []Rule {
	idx := c.rulesByAction[action]
	out := make([]Rule, len(idx))
	for i, ri := range idx {
		out[i] = c.Rules[ri]
	}
	return out
}

// RulesUsing returns every rule that mentions condition in its Conditions.
func (c *Catalogue) RulesUsing(condition string) []Rule {
	idx := c.rulesByCondition[condition]
	out := make([]Rule, len(idx))
	for i, ri := range idx {
		out[i] = c.Rules[ri]
	}
	return out
}

// GoalRules returns the rules whose Action is listed in GoalActions,
// ordered by VisaTypeOrder (lower order first), matching
// knowledge/store.py's get_goal_rules.
func (c *Catalogue) GoalRules() []Rule {
	goalSet := make(map[string]bool, len(c.GoalActions))
	for _, g := range c.GoalActions {
		goalSet[g] = true
	}
	var out []Rule
	for _, r := range c.Rules {
		if goalSet[r.Action] {
			out = append(out, r)
		}
	}
	sortByVisaOrder(out, c.VisaTypeOrder)
	return out
}

func sortByVisaOrder(rules []Rule, order map[string]int) {
	orderOf := func(vt string) int {
		if o, ok := order[vt]; ok {
			return o
		}
		return 99
	}
	// simple stable insertion sort: catalogues are small, and this keeps
	// rules sharing a visa type in their original relative order.
	for i := 1; i < len(rules); i++ {
		j := i
		for j > 0 && orderOf(rules[j-1].VisaType) > orderOf(rules[j].VisaType) {
			rules[j-1], rules[j] = rules[j], rules[j-1]
			j--
		}
	}
}

// RelatedVisaTypes returns the set of visa-type tags of rules that
// mention condition, in first-seen order.
func (c *Catalogue) RelatedVisaTypes(condition string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.RulesUsing(condition) {
		if !seen[r.VisaType] {
			seen[r.VisaType] = true
			out = append(out, r.VisaType)
		}
	}
	return out
}
