package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types for categorization and handling

var (
	// ErrInsufficientInput indicates no slot has an attached file
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrUnsupportedFileType indicates a file extension outside .csv/.xlsx
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrTransport indicates a non-2xx reply or a failed network call
	ErrTransport = errors.New("transport failed")

	// ErrDecode indicates a 2xx reply whose body could not be decoded
	ErrDecode = errors.New("decode failed")

	// ErrBusy indicates a submission is already in flight
	ErrBusy = errors.New("submission in flight")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")
)

// Messages shown to the user when no more specific text is available.
const (
	MsgInsufficientInput = "Attach at least one spreadsheet before sending."
	MsgTransport         = "Processing failed. Please try again."
	MsgTimeout           = "The processing service did not respond in time. Please try again."
	MsgDecode            = "Could not read the server response. Please try again."
	MsgBusy              = "A request is already being processed."
	AllowedTypesDesc     = "Accepted types: CSV (.csv) and Excel (.xlsx)."
)

// FileTypeError reports one rejected file.
type FileTypeError struct {
	Filename string
	Ext      string
}

func (e *FileTypeError) Error() string {
	return fmt.Sprintf("file %q is not supported. %s", e.Filename, AllowedTypesDesc)
}

func (e *FileTypeError) Unwrap() error {
	return ErrUnsupportedFileType
}

// TransportError carries the detail text the server sent, if any.
type TransportError struct {
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("transport failed (status %d): %s", e.Status, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("transport failed: %v", e.Err)
	default:
		return fmt.Sprintf("transport failed (status %d)", e.Status)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage maps an error onto the text shown in a notification.
func UserMessage(err error) string {
	var fte *FileTypeError
	if errors.As(err, &fte) {
		return fmt.Sprintf("File %q is not supported. %s", fte.Filename, AllowedTypesDesc)
	}
	var te *TransportError
	if errors.As(err, &te) {
		if detail := strings.TrimSpace(te.Detail); detail != "" {
			return detail
		}
		if IsTimeout(err) {
			return MsgTimeout
		}
		return MsgTransport
	}
	switch {
	case errors.Is(err, ErrInsufficientInput):
		return MsgInsufficientInput
	case errors.Is(err, ErrDecode):
		return MsgDecode
	case errors.Is(err, ErrBusy):
		return MsgBusy
	case errors.Is(err, ErrTransport):
		return MsgTransport
	}
	return MsgTransport
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// IsInsufficientInput checks if error is a missing-file error
func IsInsufficientInput(err error) bool {
	return errors.Is(err, ErrInsufficientInput)
}

// IsUnsupportedFileType checks if error is a rejected-extension error
func IsUnsupportedFileType(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

// IsTransport checks if error is a transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsDecode checks if error is a decode error
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsBusy checks if error reports an in-flight submission
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
