package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError is returned when an account, transaction or split is not
// part of the collection it is claimed to belong to.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func accountNotFound(a *Account) error {
	return &NotFoundError{Kind: "account", Name: a.Name()}
}

func transactionNotFound(t *Transaction) error {
	return &NotFoundError{Kind: "transaction", Name: t.Description}
}

// DuplicateNameError is returned when an account name is already taken.
type DuplicateNameError struct {
	Name     string
	Existing *Account
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("account name %q is already used by %q", e.Name, e.Existing.Name())
}

// DuplicateReferenceError is returned when an external reference is already
// attached to another account.
type DuplicateReferenceError struct {
	Reference string
	Existing  *Account
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("reference %q is already used by account %q", e.Reference, e.Existing.Name())
}
