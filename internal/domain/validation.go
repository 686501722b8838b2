package domain

import "strings"

// ValidationCode identifies one field-level rule violation.
type ValidationCode string

const (
	TitleRequired    ValidationCode = "title_required"
	StartRequired    ValidationCode = "start_required"
	StartInvalid     ValidationCode = "start_invalid"
	EndRequired      ValidationCode = "end_required"
	EndInvalid       ValidationCode = "end_invalid"
	EndNotAfterStart ValidationCode = "end_not_after_start"
	ColorInvalid     ValidationCode = "color_invalid"
)

var validationMessages = map[ValidationCode]string{
	TitleRequired:    "Event title is required",
	StartRequired:    "Start time is required",
	StartInvalid:     "Invalid start date",
	EndRequired:      "End time is required",
	EndInvalid:       "Invalid end date",
	EndNotAfterStart: "End time must be after start time",
	ColorInvalid:     "Color must look like #RRGGBB",
}

// FieldError is a single user-correctable problem with one input field.
type FieldError struct {
	Field   string         `json:"field"`
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
}

// NewFieldError builds a FieldError with the standard message for code.
func NewFieldError(field string, code ValidationCode) FieldError {
	return FieldError{Field: field, Code: code, Message: validationMessages[code]}
}

// ValidationErrors accumulates every failed rule; it is an error when non-empty.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether code is among the errors.
func (v ValidationErrors) Has(code ValidationCode) bool {
	for _, fe := range v {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// ForField returns the errors reported for field.
func (v ValidationErrors) ForField(field string) []FieldError {
	var out []FieldError
	for _, fe := range v {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}
