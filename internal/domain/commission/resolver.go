package commission

import (
	"fmt"
	"sort"

	"github.com/phonestore/backend/internal/domain/shared"
)

// Resolution is the outcome of resolving a line's commission
type Resolution struct {
	Value    Value
	RuleID   *int64 // nil when the line's own rule was used
	Override bool
}

// Resolver picks the commission rule for a catalog line from a rule table snapshot
type Resolver struct {
	rules []CommissionRule
}

// NewResolver validates and orders the rule table
func NewResolver(rules []CommissionRule) (*Resolver, error) {
	seen := make(map[int64]struct{}, len(rules))
	ordered := make([]CommissionRule, 0, len(rules))
	for _, r := range rules {
		if _, dup := seen[r.ID]; dup {
			return nil, shared.NewDomainError(shared.CodeInvalidCommission,
				fmt.Sprintf("Commission rule %d is defined twice", r.ID))
		}
		if !r.Value.IsSet() {
			return nil, shared.NewDomainError(shared.CodeInvalidCommission,
				fmt.Sprintf("Commission rule %d has no commission value", r.ID))
		}
		seen[r.ID] = struct{}{}
		ordered = append(ordered, r)
	}

	// most specific first, then lowest priority, then lowest id
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Specificity() != b.Specificity() {
			return a.Specificity() > b.Specificity()
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})

	return &Resolver{rules: ordered}, nil
}

// Rules returns the rule table in precedence order
func (r *Resolver) Rules() []CommissionRule {
	out := make([]CommissionRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Resolve returns the line's own rule when set, otherwise the first matching rule
func (r *Resolver) Resolve(key LineKey, own *Value) (Resolution, error) {
	if own != nil && own.IsSet() {
		return Resolution{Value: *own, Override: true}, nil
	}
	rule, err := r.Match(key)
	if err != nil {
		return Resolution{}, err
	}
	id := rule.ID
	return Resolution{Value: rule.Value, RuleID: &id}, nil
}

// Match returns the winning rule for key, ignoring overrides
func (r *Resolver) Match(key LineKey) (CommissionRule, error) {
	for _, rule := range r.rules {
		if rule.Matches(key) {
			return rule, nil
		}
	}
	return CommissionRule{}, NewNoApplicableRuleError(key)
}
