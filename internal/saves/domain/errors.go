package domain

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure independently of its message.
type Code string

const (
	CodeUnknown                  Code = "UNKNOWN"
	CodeExternalLookupFailure    Code = "EXTERNAL_LOOKUP_FAILURE"
	CodeNoActiveSession          Code = "NO_ACTIVE_SESSION"
	CodePathEncodingFailure      Code = "PATH_ENCODING_FAILURE"
	CodeSaveDataNotFound         Code = "SAVE_DATA_NOT_FOUND"
	CodeProbeFailed              Code = "PROBE_FAILED"
	CodeConfigMissing            Code = "CONFIG_MISSING"
	CodeConfigParseError         Code = "CONFIG_PARSE_ERROR"
	CodeConfigFieldMissing       Code = "CONFIG_FIELD_MISSING"
	CodeConfigValueInvalid       Code = "CONFIG_VALUE_INVALID"
	CodeSourceMissing            Code = "SOURCE_MISSING"
	CodeDestinationAlreadyExists Code = "DESTINATION_ALREADY_EXISTS"
	CodeCopyFailed               Code = "COPY_FAILED"
	CodeDeleteFailed             Code = "DELETE_FAILED"
	CodeWriteFailed              Code = "WRITE_FAILED"
	CodeSlotIndexOutOfRange      Code = "SLOT_INDEX_OUT_OF_RANGE"
	CodePayloadMissing           Code = "PAYLOAD_MISSING"
	CodeGameRunning              Code = "GAME_RUNNING"
	CodeCancelled                Code = "CANCELLED"
	CodeStaleState               Code = "STALE_STATE"
)

// Exported error variables allow callers to use errors.Is() for error checking.
// They match any *Error carrying the same code.
var (
	ErrExternalLookupFailure    = &Error{Code: CodeExternalLookupFailure}
	ErrNoActiveSession          = &Error{Code: CodeNoActiveSession}
	ErrPathEncodingFailure      = &Error{Code: CodePathEncodingFailure}
	ErrSaveDataNotFound         = &Error{Code: CodeSaveDataNotFound}
	ErrProbeFailed              = &Error{Code: CodeProbeFailed}
	ErrConfigMissing            = &Error{Code: CodeConfigMissing}
	ErrConfigParseError         = &Error{Code: CodeConfigParseError}
	ErrConfigFieldMissing       = &Error{Code: CodeConfigFieldMissing}
	ErrConfigValueInvalid       = &Error{Code: CodeConfigValueInvalid}
	ErrSourceMissing            = &Error{Code: CodeSourceMissing}
	ErrDestinationAlreadyExists = &Error{Code: CodeDestinationAlreadyExists}
	ErrCopyFailed               = &Error{Code: CodeCopyFailed}
	ErrDeleteFailed             = &Error{Code: CodeDeleteFailed}
	ErrWriteFailed              = &Error{Code: CodeWriteFailed}
	ErrSlotIndexOutOfRange      = &Error{Code: CodeSlotIndexOutOfRange}
	ErrPayloadMissing           = &Error{Code: CodePayloadMissing}
	ErrGameRunning              = &Error{Code: CodeGameRunning}
	ErrCancelled                = &Error{Code: CodeCancelled}
	ErrStaleState               = &Error{Code: CodeStaleState}
)

// Error is a failure annotated with a stable code and the path or key it concerns.
// Its message is meant to be shown to the user verbatim.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithDetail attaches a key/value pair describing the failure.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. It returns nil when err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf annotates err with a code and a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// DetailsOf returns the details of the first *Error in err's chain.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
