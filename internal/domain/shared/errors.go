package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so sentinel comparisons
// work for errors built with NewDomainError and a custom message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes raised by the pricing and commission engine
const (
	CodeInvalidRate         = "INVALID_RATE"
	CodeNoApplicableRule    = "NO_APPLICABLE_RULE"
	CodeUnbalancedPayment   = "UNBALANCED_PAYMENT"
	CodeAmbiguousFinancing  = "AMBIGUOUS_FINANCING"
	CodeInvalidDiscount     = "INVALID_DISCOUNT"
	CodeInvalidPaymentPlan  = "INVALID_PAYMENT_PLAN"
	CodeInvalidPayment      = "INVALID_PAYMENT"
	CodeInvalidCommission   = "INVALID_COMMISSION"
	CodeInvalidLine         = "INVALID_LINE"
	CodeInvalidPeriod       = "INVALID_PERIOD"
	CodeDuplicateSerial     = "DUPLICATE_SERIAL"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidFinancingPol = "INVALID_FINANCING_POLICY"
	CodeRateConflict        = "RATE_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrDuplicateSerial   = NewDomainError(CodeDuplicateSerial, "Serial number already sold")
)
