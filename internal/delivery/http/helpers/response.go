package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"calendrier/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeValidation         = "validation_failed"
	ErrCodeInvalidCode        = "invalid_code_format"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeGroupNotFound      = "group_not_found"
	ErrCodeGroupFull          = "group_full"
	ErrCodeConflict           = "conflict"
	ErrCodeTooManyRequests    = "too_many_requests"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeInternalError      = "internal_error"
)

// GenericErrorMessage is the only text clients see for unexpected failures.
const GenericErrorMessage = "something went wrong, please try again"

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess writes statusCode and an envelope carrying data.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError writes statusCode and an envelope carrying the error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// WriteValidationError answers 400 with one entry per failed field rule.
func WriteValidationError(w http.ResponseWriter, errs domain.ValidationErrors) {
	writeEnvelope(w, http.StatusBadRequest, APIResponse{Error: &APIError{
		Code:    ErrCodeValidation,
		Message: "please correct the highlighted fields",
		Fields:  errs,
	}})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteServiceError maps a service error onto a status and envelope. Errors
// that are not part of the domain vocabulary are logged and replaced by
// GenericErrorMessage.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		WriteValidationError(w, verrs)
	case errors.Is(err, domain.ErrInvalidCodeFormat):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeInvalidCode, domain.ErrInvalidCodeFormat.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "you are not a member of this group")
	case errors.Is(err, domain.ErrGroupNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeGroupNotFound, domain.ErrGroupNotFound.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAccountNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrGroupFull):
		WriteJSONError(w, http.StatusConflict, ErrCodeGroupFull, domain.ErrGroupFull.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, domain.ErrDuplicateEmail.Error())
	case errors.Is(err, domain.ErrInviteCodeCollision):
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, domain.ErrInviteCodeCollision.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, GenericErrorMessage)
	}
}
