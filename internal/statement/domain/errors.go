package statement

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPeriod is returned when a statement period is malformed or out of range.
	ErrInvalidPeriod = errors.New("statement: invalid period")
	// ErrEmptyAccountNumber is returned when no account number is supplied.
	ErrEmptyAccountNumber = errors.New("statement: empty account number")
	// ErrCustomerNotFound is returned when the account master record is absent.
	ErrCustomerNotFound = errors.New("statement: customer not found")
	// ErrDocumentNotFound is returned by a document store when no document exists for a key.
	ErrDocumentNotFound = errors.New("statement: document not found")
	// ErrPermissionDenied is returned by a document store when the read is not allowed.
	ErrPermissionDenied = errors.New("statement: permission denied")
)

// CustomerNotFoundError is the fatal failure raised when the account master
// record cannot be read. It matches ErrCustomerNotFound with errors.Is.
type CustomerNotFoundError struct {
	AccountNumber string
	Err           error
}

func (e *CustomerNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("statement: customer %s not found: %v", e.AccountNumber, e.Err)
	}
	return fmt.Sprintf("statement: customer %s not found", e.AccountNumber)
}

func (e *CustomerNotFoundError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCustomerNotFound.
func (e *CustomerNotFoundError) Is(target error) bool {
	return target == ErrCustomerNotFound
}
