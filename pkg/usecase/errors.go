package usecase

import (
	"errors"
	"fmt"

	"github.com/gasyway/gasyway/pkg/domain/model"
)

// ErrorKind classifies a reconciliation failure so callers can branch on it
type ErrorKind string

const (
	// KindFetch: the identity directory or the user table could not be read
	KindFetch ErrorKind = "fetch"
	// KindNotFound: the subject of a fix vanished between analysis and fix
	KindNotFound ErrorKind = "not_found"
	KindInsert   ErrorKind = "insert"
	KindUpdate   ErrorKind = "update"
	KindDelete   ErrorKind = "delete"
)

// Sentinel errors, one per ErrorKind
var (
	ErrFetch    = errors.New("fetch failed")
	ErrNotFound = errors.New("record not found")
	ErrInsert   = errors.New("insert failed")
	ErrUpdate   = errors.New("update failed")
	ErrDelete   = errors.New("delete failed")

	// ErrTriggerUnsupported is returned by CreateAutoSyncTrigger when the user table
	// backend has no row-level triggers. Run the periodic sync worker instead.
	ErrTriggerUnsupported = errors.New("auto-sync trigger is not supported by the user repository")
)

// Sentinel returns the sentinel error of k, or nil for an unknown kind
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindFetch:
		return ErrFetch
	case KindNotFound:
		return ErrNotFound
	case KindInsert:
		return ErrInsert
	case KindUpdate:
		return ErrUpdate
	case KindDelete:
		return ErrDelete
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	return string(k)
}

// SyncError is the error returned by every SyncUseCase operation. errors.Is matches both
// the kind sentinel and the underlying cause.
type SyncError struct {
	Kind   ErrorKind
	UserID model.UserID
	Err    error
}

func newSyncError(kind ErrorKind, id model.UserID, err error) *SyncError {
	return &SyncError{Kind: kind, UserID: id, Err: err}
}

func (e *SyncError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *SyncError) Unwrap() []error {
	errs := []error{}
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of the first SyncError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind, true
	}
	return "", false
}
