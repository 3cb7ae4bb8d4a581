package commission

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/shared"
)

// NoApplicableRuleError is returned when no override and no rule, global one
// included, applies to a line. Line creation must be blocked.
type NoApplicableRuleError struct {
	*shared.DomainError
	Key LineKey
}

// Unwrap exposes the underlying DomainError to errors.As
func (e *NoApplicableRuleError) Unwrap() error {
	return e.DomainError
}

// NewNoApplicableRuleError builds the error for a line key
func NewNoApplicableRuleError(key LineKey) *NoApplicableRuleError {
	return &NoApplicableRuleError{
		DomainError: shared.NewDomainError(shared.CodeNoApplicableRule,
			fmt.Sprintf("No commission rule applies to brand %s, category %s; "+
				"set a commission on the product or add a global rule", fmtKey(key.BrandID), fmtKey(key.CategoryID))),
		Key: key,
	}
}

func fmtKey(id *int64) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}
