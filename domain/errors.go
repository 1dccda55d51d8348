package domain

import "errors"

var (
	// ErrUserNotFound is returned when no user record matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail and ErrDuplicateUsername surface unique-constraint
	// violations with enough detail for a human-readable 400 response.
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrDuplicateIdentity is the generic unique-constraint violation used when
	// the conflicting index cannot be attributed to a single field, e.g. two
	// concurrent first-time handshakes racing on the same email.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrExpenseNotFound covers both a missing document and a document owned by
	// somebody else; callers must not be able to tell the two apart.
	ErrExpenseNotFound = errors.New("expense not found")
)
