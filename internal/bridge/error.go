package bridge

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Outcome classifies how a delivery was handled. Every outcome except Updated and NoOp is a failure.
type Outcome string

const (
	// Updated means the controller accepted the new description.
	Updated Outcome = "Updated"
	// NoOp means the delivery carried nothing to apply. It is not an error.
	NoOp Outcome = "NoOp"
	// SignatureInvalid means the delivery failed HMAC verification.
	SignatureInvalid Outcome = "SignatureInvalid"
	// BadPayload means the body could not be parsed.
	BadPayload Outcome = "BadPayload"
	// AuthError means the controller login or renewal failed.
	AuthError Outcome = "AuthError"
	// NotFound means the controller does not know the resource UUID.
	NotFound Outcome = "NotFound"
	// Rejected means the controller refused the update for any other client-side reason.
	Rejected Outcome = "Rejected"
	// Retryable means a transient network or 5xx failure. NetBox may redeliver.
	Retryable Outcome = "Retryable"
	// Internal means a local failure unrelated to the delivery itself.
	Internal Outcome = "Internal"
)

// Stage names the pipeline step that produced an outcome.
type Stage string

const (
	StageCredentials Stage = "credentials"
	StageSignature   Stage = "signature"
	StageExtract     Stage = "extract"
	StageSession     Stage = "session"
	StageUpdate      Stage = "update"
)

// StatusCode maps an outcome to the HTTP status returned to NetBox.
// AuthError is a gateway failure while establishing the session and a fatal rejection once the update was attempted.
func (o Outcome) StatusCode(stage Stage) int {
	switch o {
	case Updated, NoOp:
		return http.StatusOK
	case SignatureInvalid:
		return http.StatusUnauthorized
	case BadPayload:
		return http.StatusBadRequest
	case AuthError:
		if stage == StageUpdate {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	case NotFound, Rejected:
		return http.StatusUnprocessableEntity
	case Retryable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries the outcome and stage of a failed delivery.
type Error struct {
	Outcome Outcome
	Stage   Stage
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Outcome, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError returns an *Error with a formatted cause.
func NewError(outcome Outcome, stage Stage, format string, args ...any) error {
	return &Error{Outcome: outcome, Stage: stage, Cause: errors.Errorf(format, args...)}
}

// WrapError wraps err into an *Error. A nil err yields nil.
func WrapError(outcome Outcome, stage Stage, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Outcome: outcome, Stage: stage, Cause: errors.Wrap(err, message)}
}

// Classify extracts the outcome and stage of err. Errors outside the taxonomy are Internal.
func Classify(err error) (Outcome, Stage) {
	if err == nil {
		return Updated, ""
	}
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Outcome, bErr.Stage
	}
	return Internal, ""
}
