package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/muurk/rcstore/internal/faults"
)

// ErrorType represents the category of a storage-stack failure
type ErrorType int

const (
	// ErrTypeMountUnavailable indicates the card is not mounted (or could not be)
	ErrTypeMountUnavailable ErrorType = iota
	// ErrTypeNotFound indicates the requested file or directory does not exist
	ErrTypeNotFound
	// ErrTypeOpen indicates the file exists but could not be opened or read
	ErrTypeOpen
	// ErrTypeParse indicates file content is not the expected document
	ErrTypeParse
	// ErrTypeFieldInvalid indicates a single configuration field failed validation
	ErrTypeFieldInvalid
	// ErrTypeWrite indicates a write, append, delete or mkdir failed
	ErrTypeWrite
	// ErrTypeRename indicates a rename failed
	ErrTypeRename
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeMountUnavailable:
		return "Mount Unavailable"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeOpen:
		return "Open Failure"
	case ErrTypeParse:
		return "Parse Failure"
	case ErrTypeFieldInvalid:
		return "Field Invalid"
	case ErrTypeWrite:
		return "Write Failure"
	case ErrTypeRename:
		return "Rename Failure"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Code maps the error type onto the fault code used in the error log.
func (et ErrorType) Code() faults.Code {
	switch et {
	case ErrTypeMountUnavailable:
		return faults.SDMount
	case ErrTypeNotFound, ErrTypeOpen:
		return faults.FileOpen
	case ErrTypeParse:
		return faults.FileRead
	case ErrTypeWrite, ErrTypeRename:
		return faults.FileWrite
	default:
		return faults.None
	}
}

// Error is returned by every fallible operation of the storage stack.
type Error struct {
	Type    ErrorType // Category of error
	Op      string    // Operation that failed (e.g. "append", "rename")
	Path    string    // Card path involved, if any
	Message string    // Optional detail
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Type.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the fault code for this error.
func (e *Error) Code() faults.Code {
	return e.Type.Code()
}

// NewError builds an *Error. Callers outside the package use it for the
// document-level categories (parse, field) that the backend never produces.
func NewError(t ErrorType, op, path, message string, err error) *Error {
	return &Error{Type: t, Op: op, Path: path, Message: message, Err: err}
}

func errUnavailable(op, path string) *Error {
	return &Error{Type: ErrTypeMountUnavailable, Op: op, Path: path, Message: "card not mounted"}
}

// classify turns an afero/os error into a typed storage error.
func classify(t ErrorType, op, path string, err error) *Error {
	if errors.Is(err, fs.ErrNotExist) {
		t = ErrTypeNotFound
	}
	return &Error{Type: t, Op: op, Path: path, Err: err}
}

// TypeOf returns the ErrorType of err, if err is (or wraps) a storage *Error.
func TypeOf(err error) (ErrorType, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Type, true
	}
	return 0, false
}

func isType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// IsUnavailable checks if an error was caused by a missing or unmounted card
func IsUnavailable(err error) bool { return isType(err, ErrTypeMountUnavailable) }

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool { return isType(err, ErrTypeNotFound) }

// IsOpenFailure checks if an error is an open/read failure
func IsOpenFailure(err error) bool { return isType(err, ErrTypeOpen) }

// IsParseFailure checks if an error is a document parse failure
func IsParseFailure(err error) bool { return isType(err, ErrTypeParse) }

// IsFieldInvalid checks if an error is a field validation error
func IsFieldInvalid(err error) bool { return isType(err, ErrTypeFieldInvalid) }

// IsWriteFailure checks if an error is a write failure
func IsWriteFailure(err error) bool { return isType(err, ErrTypeWrite) }

// IsRenameFailure checks if an error is a rename failure
func IsRenameFailure(err error) bool { return isType(err, ErrTypeRename) }

// FaultCode returns the log fault code for any error. Errors that did not
// originate in the storage stack map to faults.None.
func FaultCode(err error) faults.Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return faults.None
}
