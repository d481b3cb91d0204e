package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the core returns to callers wraps exactly one of
// these so the transport can classify it with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrLiveness        = errors.New("liveness check failed")
	ErrPolicy          = errors.New("policy violation")
	ErrInternal        = errors.New("internal error")
)

// kindError carries a caller-facing message while unwrapping to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NewError builds an error of the given kind with a descriptive message.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Invalid is shorthand for a formatted ErrValidation.
func Invalid(format string, args ...any) error {
	return NewError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrInvalidCredentials = NewError(ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = NewError(ErrUnauthenticated, "invalid or expired token")
	ErrUserNotFound       = NewError(ErrNotFound, "user not found")
	ErrUserExists         = NewError(ErrConflict, "username already exists")
	ErrAdminExists        = NewError(ErrPolicy, "an admin account already exists")
	ErrAdminRequired      = NewError(ErrForbidden, "only an admin can perform this action")

	ErrNoFaceDetected = NewError(ErrLiveness, "no face detected in image")
	ErrFaceMismatch   = NewError(ErrLiveness, "face does not match the enrolled reference")

	ErrFolderNotFound       = NewError(ErrNotFound, "folder not found")
	ErrParentNotFound       = NewError(ErrNotFound, "parent folder not found")
	ErrFolderExists         = NewError(ErrConflict, "folder name already exists under the same parent")
	ErrFolderNotEmpty       = NewError(ErrConflict, "folder is not empty")
	ErrFolderNameAmbiguous  = NewError(ErrConflict, "several folders share this name, use the folder id")
	ErrRootFolderProtected  = NewError(ErrPolicy, "the root folder cannot be deleted")
	ErrRootFolderNotCreated = NewError(ErrInternal, "root folder does not exist")

	ErrFileNotFound  = NewError(ErrNotFound, "file not found")
	ErrFileExists    = NewError(ErrConflict, "a file with the same name already exists in the folder")
	ErrContentBroken = NewError(ErrInternal, "file content is missing or corrupted")

	// ErrBlobNotFound is returned by blob stores; services translate it.
	ErrBlobNotFound = NewError(ErrNotFound, "blob not found")
)
