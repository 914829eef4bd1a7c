package planner

import (
	"sort"

	"visaexpert/internal/rule"
)

// maxCollectDepth bounds the two recursive sweeps BuildInitialQueue makes
// over the condition→rule graph, guarding against cycles in a
// pathological catalogue the way ancestor resolution and propagation are
// already bounded elsewhere in the core.
const maxCollectDepth = 64

// BuildInitialQueue constructs the ordered question queue from the
// catalogue's goal rules:
//
//  1. gather, depth-first from every goal rule's action, every condition
//     that transitively feeds a goal — both base and derived conditions
//     are askable;
//  2. compute each condition's minimum depth from any goal;
//  3. bucket conditions by visa type, breaking multi-visa ties toward
//     the visa type asked first (lowest configured order);
//  4. sort within each bucket by priority score, descending;
//  5. concatenate buckets in ascending configured visa-type order.
func BuildInitialQueue(cat *rule.Catalogue) []string {
	goalRules := cat.GoalRules()

	needed := make(map[string]bool)        // base conditions
	derivedNeeded := make(map[string]bool) // derived conditions also asked
	processed := make(map[string]bool)

	var collect func(action string, depth int)
	collect = func(action string, depth int) {
		if processed[action] || depth > maxCollectDepth {
			return
		}
		processed[action] = true
		for _, r := range cat.RulesProducing(action) {
			for _, cond := range r.Conditions {
				if cat.IsDerived(cond) {
					derivedNeeded[cond] = true
					collect(cond, depth+1)
				} else {
					needed[cond] = true
				}
			}
		}
	}
	for _, gr := range goalRules {
		collect(gr.Action, 0)
	}

	goalDirect := make(map[string]bool)
	for _, gr := range goalRules {
		for _, c := range gr.Conditions {
			goalDirect[c] = true
		}
	}

	depth := make(map[string]int)
	var calcDepth func(action string, d int)
	calcDepth = func(action string, d int) {
		if d > maxCollectDepth {
			return
		}
		for _, r := range cat.RulesProducing(action) {
			for _, cond := range r.Conditions {
				if cur, ok := depth[cond]; !ok || cur > d {
					depth[cond] = d
				}
				if cat.IsDerived(cond) {
					calcDepth(cond, d+1)
				}
			}
		}
	}
	for _, gr := range goalRules {
		calcDepth(gr.Action, 0)
	}

	all := make(map[string]bool, len(needed)+len(derivedNeeded))
	for c := range needed {
		all[c] = true
	}
	for c := range derivedNeeded {
		all[c] = true
	}
	allSorted := sortedKeys(all)

	visaTypesSeen := make(map[string]bool)
	for _, r := range cat.Rules {
		visaTypesSeen[r.VisaType] = true
	}
	visaList := sortedVisaTypes(visaTypesSeen, cat.VisaTypeOrder)

	visaConditions := make(map[string][]string)
	multiVisa := make(map[string]bool)

	for _, cond := range allSorted {
		related := make(map[string]bool)
		for _, r := range cat.RulesUsing(cond) {
			related[r.VisaType] = true
		}
		switch len(related) {
		case 0:
			// condition is never read by any rule — unreachable; drop it.
		case 1:
			for vt := range related {
				visaConditions[vt] = append(visaConditions[vt], cond)
			}
		default:
			multiVisa[cond] = true
			best := bestVisaType(related, cat.VisaTypeOrder)
			visaConditions[best] = append(visaConditions[best], cond)
		}
	}

	priority := func(cond, visaType string) int {
		p := 0
		if goalDirect[cond] {
			p += 10000
		}
		if !cat.IsDerived(cond) {
			p += 5000
		} else {
			p += depth[cond] * 100
		}
		if multiVisa[cond] {
			p += 50
		}
		for _, r := range cat.RulesUsing(cond) {
			if r.VisaType == visaType {
				p++
			}
		}
		return p
	}

	var queue []string
	for _, vt := range visaList {
		conds := append([]string(nil), visaConditions[vt]...)
		sort.SliceStable(conds, func(i, j int) bool {
			return priority(conds[i], vt) > priority(conds[j], vt)
		})
		queue = append(queue, conds...)
	}
	return queue
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortedVisaTypes returns the visa types present in seen, in ascending
// configured-order (lower order asked first), falling back to
// alphabetical order for ties or unconfigured visa types.
func sortedVisaTypes(seen map[string]bool, order map[string]int) []string {
	out := make([]string, 0, len(seen))
	for vt := range seen {
		out = append(out, vt)
	}
	orderOf := func(vt string) int {
		if o, ok := order[vt]; ok {
			return o
		}
		return 99
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := orderOf(out[i]), orderOf(out[j])
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}

// bestVisaType picks the visa type in related asked first according to
// order: lowest configured order wins, i.e. "priority" means
// earliest-asked.
func bestVisaType(related map[string]bool, order map[string]int) string {
	orderOf := func(vt string) int {
		if o, ok := order[vt]; ok {
			return o
		}
		return 99
	}
	best := ""
	bestOrder := 0
	first := true
	for vt := range related {
		o := orderOf(vt)
		if first || o < bestOrder || (o == bestOrder && vt < best) {
			best = vt
			bestOrder = o
			first = false
		}
	}
	return best
}
