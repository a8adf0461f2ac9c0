package program

import "errors"

// Kind is a stable category for programmatic error handling, one per failure
// stage of the call lifecycle.
//
// Callers should branch on Kind/Code rather than matching error strings.
// Error() strings are human-readable and may evolve.
type Kind string

const (
	// KindDecode covers payload decoding: short fixed headers and
	// malformed trailing bytes. Raised before any account work.
	KindDecode Kind = "Decode"
	// KindDiscriminant marks a tag matching no registered operation.
	KindDiscriminant Kind = "Discriminant"
	// KindArity marks an account list shorter than a declaration requires.
	KindArity Kind = "Arity"
	// KindValidation marks the first violated account constraint.
	KindValidation Kind = "Validation"
	// KindExecution marks a business-logic failure; prior mutations stand.
	KindExecution Kind = "Execution"
	// KindCleanup marks a post-condition failure after business logic.
	KindCleanup Kind = "Cleanup"
	// KindInvoke marks a nested-call construction or target-resolution
	// failure. A failure raised by the callee itself propagates verbatim
	// and keeps its original kind.
	KindInvoke Kind = "Invoke"
	KindInternal Kind = "Internal"
)

// Code is the stable machine-readable reason within a Kind.
type Code string

const (
	CodeShortHeader         Code = "SHORT_HEADER"
	CodeMalformedTrailing   Code = "MALFORMED_TRAILING"
	CodeUnknownDiscriminant Code = "UNKNOWN_DISCRIMINANT"
	CodeAccountShortfall    Code = "ACCOUNT_SHORTFALL"
	CodeOwnerMismatch       Code = "OWNER_MISMATCH"
	CodeMissingSigner       Code = "MISSING_SIGNER"
	CodeNotWritable         Code = "NOT_WRITABLE"
	CodeAddressMismatch     Code = "ADDRESS_MISMATCH"
	CodeInvalidSeeds        Code = "INVALID_SEEDS"
	CodeDataMismatch        Code = "DATA_MISMATCH"
	CodeNotExecutable       Code = "NOT_EXECUTABLE"
	CodeMissingFunder       Code = "MISSING_FUNDER"
	CodeUnknownProgram      Code = "UNKNOWN_PROGRAM"
	CodePrivilegeEscalation Code = "PRIVILEGE_ESCALATION"
	CodeProcessFailed       Code = "PROCESS_FAILED"
	CodeCleanupFailed       Code = "CLEANUP_FAILED"
	CodeInternal            Code = "INTERNAL"
)

// Error is the framework's structured error type. Exactly one Error reaches
// the caller per failed call; partial success is never reported.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError builds a structured error with no cause.
func NewError(kind Kind, code Code, msg string) error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// WrapError attaches a cause. A nil cause degrades to NewError.
func WrapError(kind Kind, code Code, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, code, msg)
	}
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// CodeOf returns the stable Code for a structured error, or "" if unknown.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}
