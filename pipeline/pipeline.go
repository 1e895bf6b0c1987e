// Package pipeline holds the candidate workflow rules: which stage
// transitions are legal, the Glory grading gate, and the terminal-status
// guard. Every rule lives here once; endpoint code never re-implements them.
package pipeline

import (
	"errors"

	"github.com/talentgrid/backend/models"
)

// Domain sentinels. Handler code maps these onto HTTP statuses; the error
// text is surfaced verbatim in the response envelope.
var (
	ErrUnknownStage     = errors.New("unknown pipeline stage")
	ErrSameStage        = errors.New("candidate is already in the requested stage")
	ErrTerminalStatus   = errors.New("candidate status is terminal; no further pipeline actions are allowed")
	ErrGloryRequired    = errors.New("Glory Required To Stage Update")
	ErrFeedbackRequired = errors.New("internal feedback is required for a stage update")
	ErrReasonRequired   = errors.New("a rejection reason is required")
	ErrUnknownStatus    = errors.New("unknown candidate status")
)

// IsTerminal reports whether status ends a candidate's pipeline life.
// Rejected and hired candidates accept no further transitions or status
// changes without an explicit (currently unimplemented) reactivation.
func IsTerminal(status string) bool {
	return status == models.StatusRejected || status == models.StatusHired
}

// GloryGate enforces the grading precondition on stage transitions: the
// acting role must already hold a non-empty Glory grade map for the
// candidate. Admins are exempt; they act across stages with full authority.
func GloryGate(actorRole string, grades []models.GloryGrade) error {
	if actorRole == models.RoleAdmin {
		return nil
	}
	for i := range grades {
		if grades[i].Role == actorRole && grades[i].HasGrades() {
			return nil
		}
	}
	return ErrGloryRequired
}

// CanTransition validates a stage transition without side effects. The
// stage model is a graph: any known stage may be targeted except the
// candidate's current one, provided the status is not terminal and the
// acting role passes the Glory gate.
func CanTransition(c *models.Candidate, target string, actorRole string, feedback string) error {
	if !models.IsStage(target) {
		return ErrUnknownStage
	}
	if target == c.CurrentStage {
		return ErrSameStage
	}
	if IsTerminal(c.Status) {
		return ErrTerminalStatus
	}
	if feedback == "" {
		return ErrFeedbackRequired
	}
	return GloryGate(actorRole, c.GloryGrades)
}

// Status operations (reject / hold / hire) and their target statuses.
const (
	OpReject = "reject"
	OpHold   = "hold"
	OpHire   = "hire"
)

// StatusFor maps a status operation to the candidate status it sets.
func StatusFor(op string) (string, error) {
	switch op {
	case OpReject:
		return models.StatusRejected, nil
	case OpHold:
		return models.StatusHold, nil
	case OpHire:
		return models.StatusHired, nil
	}
	return "", ErrUnknownStatus
}

// CanChangeStatus validates a reject/hold/hire operation. Terminal statuses
// block all three; rejection additionally requires a reason. Hold and hire
// reasons are optional notes.
func CanChangeStatus(c *models.Candidate, op string, reason string) error {
	if _, err := StatusFor(op); err != nil {
		return err
	}
	if IsTerminal(c.Status) {
		return ErrTerminalStatus
	}
	if op == OpReject && reason == "" {
		return ErrReasonRequired
	}
	return nil
}
