package echo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/outgoapp/outgo/domain"
	"github.com/outgoapp/outgo/internal/federation"
)

// fakeUserRepo is an in-memory UserRepository that enforces the same
// uniqueness rules as the Mongo indexes.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

var _ domain.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(user, ""); err != nil {
		return err
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) checkUnique(user *domain.User, excludeID string) error {
	for id, existing := range r.users {
		if id == excludeID {
			continue
		}
		switch {
		case strings.EqualFold(existing.Email, user.Email):
			return domain.ErrDuplicateEmail
		case existing.Username == user.Username:
			return domain.ErrDuplicateUsername
		case user.GoogleID != "" && existing.GoogleID == user.GoogleID:
			return domain.ErrDuplicateIdentity
		}
	}
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetUserByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := r.checkUnique(user, user.ID); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeExpenseRepo is an in-memory ExpenseRepository keeping newest first.
type fakeExpenseRepo struct {
	mu       sync.Mutex
	seq      int
	expenses []*domain.Expense
}

var _ domain.ExpenseRepository = (*fakeExpenseRepo)(nil)

func (r *fakeExpenseRepo) CreateExpense(_ context.Context, expense *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	expense.ID = fmt.Sprintf("exp-%d", r.seq)
	expense.CreatedAt = time.Now()
	stored := *expense
	r.expenses = append([]*domain.Expense{&stored}, r.expenses...)
	return nil
}

func (r *fakeExpenseRepo) ListByUser(_ context.Context, userID string) ([]*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Expense{}
	for _, e := range r.expenses {
		if e.UserID == userID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) DeleteOwned(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.expenses {
		if e.ID == id && e.UserID == userID {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return domain.ErrExpenseNotFound
}

// fakeProvider records the state it was handed and serves a canned
// profile, so handshake tests never touch the network.
type fakeProvider struct {
	lastState   string
	info        *federation.ExternalUserInfo
	exchangeErr error
	fetchErr    error
}

var _ federation.OAuth2Provider = (*fakeProvider)(nil)

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	p.lastState = state
	return "https://accounts.google.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func (p *fakeProvider) FetchUserInfo(_ context.Context, _ *oauth2.Token) (*federation.ExternalUserInfo, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.info, nil
}

// fastHasher keeps handler tests quick; bcrypt behavior is covered in the
// auth package.
type fastHasher struct{}

func (fastHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fastHasher) Verify(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}
