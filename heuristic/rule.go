package heuristic

import (
	"fmt"

	"github.com/caio-sobreiro/bidsheuristic/types"
)

// Rule is one entry of a priority-ordered rule table.
//
// When When matches, the rule claims the series and evaluation stops. Without
// Branches the series goes to Key. With Branches the first matching branch
// picks the key; if none matches, the series is claimed but left out of every
// bucket.
type Rule struct {
	Name     string
	When     Predicate
	Key      types.OutputKey
	Branches []Branch
}

// Branch refines a Rule that matched.
type Branch struct {
	When Predicate
	Key  types.OutputKey
}

// Then returns a Rule routing to key.
func Then(name string, when Predicate, key types.OutputKey) Rule {
	return Rule{Name: name, When: when, Key: key}
}

// Switch returns a Rule routing through branches.
func Switch(name string, when Predicate, branches ...Branch) Rule {
	return Rule{Name: name, When: when, Branches: branches}
}

// Case builds a Branch.
func Case(when Predicate, key types.OutputKey) Branch {
	return Branch{When: when, Key: key}
}

// Otherwise is a Branch that always matches.
func Otherwise(key types.OutputKey) Branch {
	return Branch{When: All(), Key: key}
}

// target resolves the bucket for a series this rule has already claimed.
func (r *Rule) target(s *Series) (types.OutputKey, bool) {
	if len(r.Branches) == 0 {
		return r.Key, true
	}
	for _, b := range r.Branches {
		if b.When(s) {
			return b.Key, true
		}
	}
	return types.OutputKey{}, false
}

// targets lists every key this rule can route to.
func (r *Rule) targets() []types.OutputKey {
	if len(r.Branches) == 0 {
		return []types.OutputKey{r.Key}
	}
	keys := make([]types.OutputKey, 0, len(r.Branches))
	for _, b := range r.Branches {
		keys = append(keys, b.Key)
	}
	return keys
}

func (r *Rule) validate() error {
	if r.When == nil {
		return fmt.Errorf("rule %q has no predicate", r.Name)
	}
	for i, b := range r.Branches {
		if b.When == nil {
			return fmt.Errorf("rule %q branch %d has no predicate", r.Name, i)
		}
	}
	return nil
}
