package domain

import "fmt"

type DomainError struct {
	message string
	parent  *DomainError
}

func NewDomainError(format string, args ...interface{}) *DomainError {
	return &DomainError{message: fmt.Sprintf(format, args...)}
}

func (e *DomainError) Error() string {
	return e.message
}

// Unwrap lets a specialised sentinel match its broader category with errors.Is.
func (e *DomainError) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

var (
	ErrInvalidAmount        = NewDomainError("invalid amount")
	ErrInsufficientFunds    = NewDomainError("insufficient funds")
	ErrAccountExists        = NewDomainError("account already exists")
	ErrAccountNotFound      = NewDomainError("account not found")
	ErrAuthenticationFailed = NewDomainError("authentication failed")
	ErrWrongAccountType     = NewDomainError("operation not supported for this account type")
	ErrSameAccount          = NewDomainError("source and target accounts are the same")
	ErrPersistence          = NewDomainError("persistence failure")
	ErrSnapshotNotFound     = &DomainError{message: "snapshot not found", parent: ErrPersistence}
)
