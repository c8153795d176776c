package bay

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDeleteToken is wrapped by the *FileError returned when deleting a
	// file whose delete token is unknown. No request is sent in that case.
	ErrNoDeleteToken = errors.New("bay: delete token unknown")
	// ErrRequestUsed is returned when Send is called twice on one Request.
	ErrRequestUsed = errors.New("bay: request already sent")
	// ErrUnsupportedMethod is returned for methods other than GET and POST.
	ErrUnsupportedMethod = errors.New("bay: unsupported HTTP method")
	// ErrMissingField is wrapped by the *FileError returned when a successful
	// response lacks a member the client needs to continue.
	ErrMissingField = errors.New("bay: response member missing")
)

// AccountError is a failure reported by an /account endpoint.
type AccountError struct {
	Message string
}

func (e *AccountError) Error() string {
	return "bay: account: " + e.Message
}

// FileError is a failure reported by a /file endpoint or the upload server,
// or a local precondition violation such as a missing delete token.
type FileError struct {
	Message string
	Err     error
}

func (e *FileError) Error() string {
	return "bay: file: " + e.Message
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ErrorKind selects the typed error Request.Send returns for API errors.
type ErrorKind int

const (
	// NoErrorKind makes Send return the API error message instead of failing.
	NoErrorKind ErrorKind = iota
	AccountErrorKind
	FileErrorKind
)

func (k ErrorKind) String() string {
	switch k {
	case NoErrorKind:
		return "none"
	case AccountErrorKind:
		return "account"
	case FileErrorKind:
		return "file"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) newError(msg string) error {
	if k == AccountErrorKind {
		return &AccountError{Message: msg}
	}
	return &FileError{Message: msg}
}
