// Package repofake provides in-memory repositories for tests.
package repofake

import (
	"context"
	"sync"

	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// FakeUserRepo is an in-memory user store keyed by id. Set LookupErr or
// UpdateErr to simulate persistence failures.
type FakeUserRepo struct {
	lock  sync.Mutex
	users map[int64]*domain.User

	LookupErr    error
	UpdateErr    error
	TokenLookups int
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: make(map[int64]*domain.User)}
}

// AddUser stores a user with password hashed at bcrypt.MinCost.
func (r *FakeUserRepo) AddUser(id int64, nome, email, usuario, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &domain.User{ID: id, Nome: nome, Email: email, Usuario: usuario, SenhaHash: string(hash)}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.users[id] = u
	return u
}

// StoredToken returns the session field of user id.
func (r *FakeUserRepo) StoredToken(id int64) string {
	r.lock.Lock()
	defer r.lock.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ""
	}
	return u.CurrentToken()
}

func (r *FakeUserRepo) GetUserByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.LookupErr != nil {
		return nil, r.LookupErr
	}
	for _, u := range r.users {
		if u.Email == identifier || u.Usuario == identifier {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *FakeUserRepo) GetUserByToken(_ context.Context, token string) (*domain.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.TokenLookups++
	if r.LookupErr != nil {
		return nil, r.LookupErr
	}
	for _, u := range r.users {
		if u.Token != nil && *u.Token == token {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *FakeUserRepo) UpdateToken(_ context.Context, userID int64, token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Token = &token
	return nil
}

func (r *FakeUserRepo) ClearToken(_ context.Context, userID int64, token string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.UpdateErr != nil {
		return false, r.UpdateErr
	}
	u, ok := r.users[userID]
	if !ok || u.Token == nil || *u.Token != token {
		return false, nil
	}
	u.Token = nil
	return true, nil
}

func clone(u *domain.User) *domain.User {
	cp := *u
	if u.Token != nil {
		tok := *u.Token
		cp.Token = &tok
	}
	return &cp
}
