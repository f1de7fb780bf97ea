package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/canteenlab/mealqueue/internal/errors"
	"github.com/canteenlab/mealqueue/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrCodeVotingClosed    = "VOTING_CLOSED"
	ErrCodeSlotNotResolved = "SLOT_NOT_RESOLVED"
	ErrCodeConfigMissing   = "CONFIG_MISSING"
	ErrCodeAlreadyQueued   = "ALREADY_QUEUED"
	ErrCodeNotProcessing   = "NOT_PROCESSING"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	// Convert service errors to appropriate API errors
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	// Domain sentinels first: they carry the status semantics
	switch {
	case stderrors.Is(err, services.ErrSlotNotFound):
		return NotFound(err.Error())
	case stderrors.Is(err, services.ErrStudentNotFound):
		return NotFound(err.Error())
	case stderrors.Is(err, services.ErrMenuNotFound):
		return NotFound(err.Error())
	case stderrors.Is(err, services.ErrSlotClosed):
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeVotingClosed, Message: err.Error()}
	case stderrors.Is(err, services.ErrSlotNotResolved):
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeSlotNotResolved, Message: err.Error()}
	case stderrors.Is(err, services.ErrConfigMissing):
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeConfigMissing, Message: err.Error()}
	case stderrors.Is(err, services.ErrAlreadyOpen), stderrors.Is(err, services.ErrAlreadyClosed):
		return Conflict(err.Error())
	case stderrors.Is(err, services.ErrNotProcessing):
		return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotProcessing, Message: err.Error()}
	case stderrors.Is(err, services.ErrUnknownOption), stderrors.Is(err, services.ErrNoCandidates):
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: err.Error()}
	}

	var dup *services.DuplicateRequestError
	if stderrors.As(err, &dup) {
		return &APIError{Status: http.StatusConflict, Code: ErrCodeAlreadyQueued, Message: dup.Error()}
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		default:
			// ErrStorage and ErrInternal are never caller-correctable
			return InternalError(err)
		}
	}

	if svcErr, ok := err.(*services.ServiceError); ok {
		return BadRequest(svcErr.Message)
	}

	return InternalError(err)
}
