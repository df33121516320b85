package session

import (
	"errors"
	"fmt"
)

// Kind classifies why the machine entered the Error state.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindReadFailure     Kind = "read_failure"
	KindAnalysisFailure Kind = "analysis_failure"
)

// Messages shown to the user for each Kind.
const (
	MessageNotAnImage      = "Please upload an image file."
	MessageReadFailure     = "Could not read the selected file."
	MessageAnalysisFailure = "The cosmos seem to be offline. Please try another image."
)

var (
	// ErrBusy is returned by Select while an analysis is in flight.
	ErrBusy = errors.New("session: an image is already being analyzed")
	// ErrNotIdle is returned by Select from Revealed or Error; Reset first.
	ErrNotIdle = errors.New("session: reset before selecting another image")
)

// Error is the failure recorded alongside the Error state.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func invalidInput(contentType string) *Error {
	return &Error{Kind: KindInvalidInput, Message: MessageNotAnImage, Cause: fmt.Errorf("content type %q is not an image", contentType)}
}

func readFailure(cause error) *Error {
	return &Error{Kind: KindReadFailure, Message: MessageReadFailure, Cause: cause}
}

func analysisFailure(cause error) *Error {
	return &Error{Kind: KindAnalysisFailure, Message: MessageAnalysisFailure, Cause: cause}
}
