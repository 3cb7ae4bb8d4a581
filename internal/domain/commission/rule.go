package commission

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/shared"
)

// Specificity ranks how narrowly a rule targets products
type Specificity int

const (
	SpecificityGlobal Specificity = iota
	SpecificityCategory
	SpecificityBrand
	SpecificityBrandCategory
)

func (s Specificity) String() string {
	switch s {
	case SpecificityBrandCategory:
		return "brand+category"
	case SpecificityBrand:
		return "brand"
	case SpecificityCategory:
		return "category"
	}
	return "global"
}

// CommissionRule maps a brand and/or category to a commission value.
// A rule with neither key is the global fallback. Lower Priority wins among
// rules of the same specificity.
type CommissionRule struct {
	ID         int64
	BrandID    *int64
	CategoryID *int64
	Value      Value
	Priority   int
}

// NewCommissionRule validates and builds a rule
func NewCommissionRule(id int64, brandID, categoryID *int64, value Value, priority int) (*CommissionRule, error) {
	if !value.IsSet() {
		return nil, shared.NewDomainError(shared.CodeInvalidCommission,
			fmt.Sprintf("Commission rule %d has no commission value", id))
	}
	return &CommissionRule{
		ID:         id,
		BrandID:    brandID,
		CategoryID: categoryID,
		Value:      value,
		Priority:   priority,
	}, nil
}

// Specificity returns the rule's rank
func (r CommissionRule) Specificity() Specificity {
	switch {
	case r.BrandID != nil && r.CategoryID != nil:
		return SpecificityBrandCategory
	case r.BrandID != nil:
		return SpecificityBrand
	case r.CategoryID != nil:
		return SpecificityCategory
	}
	return SpecificityGlobal
}

// Matches reports whether every key set on the rule equals the line's key
func (r CommissionRule) Matches(key LineKey) bool {
	if r.BrandID != nil && (key.BrandID == nil || *key.BrandID != *r.BrandID) {
		return false
	}
	if r.CategoryID != nil && (key.CategoryID == nil || *key.CategoryID != *r.CategoryID) {
		return false
	}
	return true
}

// LineKey identifies what a catalog line is for rule matching
type LineKey struct {
	BrandID    *int64
	CategoryID *int64
}

// NewLineKey is a convenience for lines that always have both keys
func NewLineKey(brandID, categoryID int64) LineKey {
	return LineKey{BrandID: &brandID, CategoryID: &categoryID}
}
