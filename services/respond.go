package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/talentgrid/backend/pipeline"
)

// Envelope is the response shape every /org endpoint returns. Failures carry
// a message and no data; successes carry data and may add a message.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

// ErrNotFound is returned by services when a referenced record is absent.
var ErrNotFound = errors.New("record not found")

// ValidationError marks a client-correctable input problem raised inside a
// service. The message is safe to surface as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// writeDomainError maps pipeline rule violations onto HTTP statuses. The
// sentinel text is surfaced verbatim so dashboards can show it directly.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, pipeline.ErrTerminalStatus):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, pipeline.ErrUnknownStage),
		errors.Is(err, pipeline.ErrSameStage),
		errors.Is(err, pipeline.ErrGloryRequired),
		errors.Is(err, pipeline.ErrFeedbackRequired),
		errors.Is(err, pipeline.ErrReasonRequired),
		errors.Is(err, pipeline.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
