package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
)

// serialRegex accepts device serials and IMEIs such as "SN-0042" or "356938035643809".
var serialRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// SetupValidator registers the pricing API's tags on gin's validator and
// reports fields by their JSON (or form) name. It must run before the first request.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("ratesource", validateRateSource)
	_ = v.RegisterValidation("serial", validateSerial)
}

// validateRateSource accepts names like "blue" or "Official"; sources are
// lowercased by the rate service.
func validateRateSource(fl validator.FieldLevel) bool {
	return rateSourceRegex.MatchString(strings.ToLower(strings.TrimSpace(fl.Field().String())))
}

func validateSerial(fl validator.FieldLevel) bool {
	return serialRegex.MatchString(fl.Field().String())
}

// FormatValidationErrors builds the ERR_VALIDATION envelope with one detail
// per failed field. Errors that are not validator errors yield no details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	errors.As(err, &fieldErrs)

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: getValidationMessage(fe)})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError aborts with a 400 validation response.
func HandleValidationError(c *gin.Context, err error) {
	AbortWithError(c, http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}

var (
	fixedMessages = map[string]string{
		"required":   "This field is required",
		"numeric":    "Must be numeric",
		"uuid":       "Invalid UUID format",
		"ratesource": "Must be a rate source name of letters, digits, '-' or '_'",
		"serial":     "Must be a serial number without spaces",
	}
	// size tags read against the field's length for strings and slices
	sizeWords = map[string]string{"min": "at least", "max": "at most", "len": "exactly"}
	// comparison tags always read against the value
	comparisonWords = map[string]string{
		"gt":  "greater than",
		"gte": "greater than or equal to",
		"lt":  "less than",
		"lte": "less than or equal to",
	}
)

func getValidationMessage(e validator.FieldError) string {
	tag, param := e.Tag(), e.Param()
	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}
	if tag == "oneof" {
		return "Must be one of: " + param
	}
	if word, ok := comparisonWords[tag]; ok {
		return "Must be " + word + " " + param
	}
	word, ok := sizeWords[tag]
	if !ok {
		return "Invalid value"
	}
	switch e.Kind() {
	case reflect.String:
		return "Must be " + word + " " + param + " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "Must have " + word + " " + param + " items"
	default:
		return "Must be " + word + " " + param
	}
}
