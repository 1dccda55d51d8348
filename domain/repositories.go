package domain

import "context"

// UserRepository is the persistence boundary for user records. Lookups that
// find nothing return ErrUserNotFound; writes that violate a unique index
// return one of the ErrDuplicate* errors.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) error
}

// ExpenseRepository is the persistence boundary for expense records. Every
// operation is scoped to a single owner.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense *Expense) error
	ListByUser(ctx context.Context, userID string) ([]*Expense, error)
	// DeleteOwned removes the expense only when it belongs to userID and
	// returns ErrExpenseNotFound otherwise.
	DeleteOwned(ctx context.Context, id, userID string) error
}
