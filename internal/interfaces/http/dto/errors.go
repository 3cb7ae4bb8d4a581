package dto

import (
	"net/http"
	"strings"
)

// API error codes are the domain code with an ERR_ prefix, so a domain error
// with code UNBALANCED_PAYMENT reaches clients as ERR_UNBALANCED_PAYMENT.
const apiCodePrefix = "ERR_"

const (
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"

	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists   = "ERR_ALREADY_EXISTS"
	ErrCodeRateConflict    = "ERR_RATE_CONFLICT"
	ErrCodeDuplicateSerial = "ERR_DUPLICATE_SERIAL"

	ErrCodeInvalidInput      = "ERR_INVALID_INPUT"
	ErrCodeInvalidDiscount   = "ERR_INVALID_DISCOUNT"
	ErrCodeInvalidPayment    = "ERR_INVALID_PAYMENT"
	ErrCodeInvalidPlan       = "ERR_INVALID_PAYMENT_PLAN"
	ErrCodeInvalidCommission = "ERR_INVALID_COMMISSION"
	ErrCodeInvalidLine       = "ERR_INVALID_LINE"
	ErrCodeInvalidPeriod     = "ERR_INVALID_PERIOD"
	ErrCodeInvalidCustomer   = "ERR_INVALID_CUSTOMER"
	ErrCodeInvalidSeller     = "ERR_INVALID_SELLER"
	ErrCodeInvalidRateSource = "ERR_INVALID_RATE_SOURCE"
	ErrCodeInvalidPolicy     = "ERR_INVALID_FINANCING_POLICY"

	// Business rule violations over well-formed input.
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeInvalidRate        = "ERR_INVALID_RATE"
	ErrCodeNoApplicableRule   = "ERR_NO_APPLICABLE_RULE"
	ErrCodeUnbalancedPayment  = "ERR_UNBALANCED_PAYMENT"
	ErrCodeAmbiguousFinancing = "ERR_AMBIGUOUS_FINANCING"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"

	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

var errorStatus = indexByCode(map[int][]string{
	http.StatusBadRequest: {
		ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidJSON, ErrCodeInvalidInput,
		ErrCodeInvalidDiscount, ErrCodeInvalidPayment, ErrCodeInvalidPlan, ErrCodeInvalidCommission,
		ErrCodeInvalidLine, ErrCodeInvalidPeriod, ErrCodeInvalidCustomer, ErrCodeInvalidSeller,
		ErrCodeInvalidRateSource, ErrCodeInvalidPolicy,
	},
	http.StatusNotFound: {ErrCodeNotFound},
	http.StatusConflict: {ErrCodeAlreadyExists, ErrCodeRateConflict, ErrCodeDuplicateSerial},
	http.StatusUnprocessableEntity: {
		ErrCodeInvalidState, ErrCodeInvalidRate, ErrCodeNoApplicableRule,
		ErrCodeUnbalancedPayment, ErrCodeAmbiguousFinancing, ErrCodeInsufficientStock,
	},
	http.StatusRequestEntityTooLarge: {ErrCodeRequestTooLarge},
	http.StatusTooManyRequests:       {ErrCodeRateLimited},
	http.StatusInternalServerError:   {ErrCodeInternal},
})

func indexByCode(groups map[int][]string) map[string]int {
	out := make(map[string]int)
	for status, codes := range groups {
		for _, code := range codes {
			out[code] = status
		}
	}
	return out
}

// HTTPStatus returns the status an API error code is served with; unknown codes are 500.
func HTTPStatus(code string) int {
	if status, ok := errorStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// KnownCode reports whether code is a registered API error code.
func KnownCode(code string) bool {
	_, ok := errorStatus[code]
	return ok
}

// NormalizeErrorCode turns a domain code into its API code. API codes and
// codes with no registered API counterpart are returned unchanged.
func NormalizeErrorCode(code string) string {
	if strings.HasPrefix(code, apiCodePrefix) {
		return code
	}
	if api := apiCodePrefix + code; KnownCode(api) {
		return api
	}
	return code
}
