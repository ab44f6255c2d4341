// Package session provides the authentication collaborator the live
// contexts depend on: a nullable current session plus a change stream.
// Credentials verify against bcrypt hashes in the users table.
package session

import (
	"errors"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// ErrInvalidCredentials is returned by SignIn for an unknown email or
// a wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is the signed-in identity consumed by contexts and servers.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Provider holds the current session and notifies watchers when it
// changes. Safe for concurrent use.
type Provider struct {
	users *repo.UserRepo

	mu       sync.Mutex
	current  *Session
	watchers []chan *Session
}

// NewProvider creates a provider backed by the given user repository.
// No session is active until SignIn.
func NewProvider(users *repo.UserRepo) *Provider {
	return &Provider{users: users}
}

// NewProviderWithSession creates a provider that starts signed in but
// still verifies credentials on later SignIn calls.
func NewProviderWithSession(users *repo.UserRepo, s *Session) *Provider {
	return &Provider{users: users, current: s}
}

// NewStatic creates a provider with a fixed pre-established session and
// no credential store. Used by the CLI and by tests, where sign-in
// already happened out of band.
func NewStatic(s *Session) *Provider {
	return &Provider{current: s}
}

// Current returns the active session, or nil when signed out.
func (p *Provider) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Watch returns a channel receiving the session value after every
// change. Delivery coalesces: a slow watcher sees the latest value,
// not every intermediate one.
func (p *Provider) Watch() <-chan *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan *Session, 1)
	p.watchers = append(p.watchers, ch)
	return ch
}

// SignIn verifies the credentials and establishes a session.
func (p *Provider) SignIn(email, password string) (*Session, error) {
	if p.users == nil {
		return nil, ErrInvalidCredentials
	}
	u, err := p.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s := &Session{
		UserID: u.ID,
		Email:  u.Email,
		Token:  uuid.NewString(),
	}
	p.set(s)
	glog.V(1).Infof("session: signed in %s", u.Email)
	return s, nil
}

// SignOut clears the current session.
func (p *Provider) SignOut() {
	p.set(nil)
}

// Register creates a user account with a bcrypt-hashed password. It
// does not sign the new user in.
func (p *Provider) Register(email, password, displayName string) (*types.User, error) {
	if p.users == nil {
		return nil, errors.New("no user store configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return p.users.Create(&types.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	})
}

func (p *Provider) set(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
	for _, ch := range p.watchers {
		// Replace any undelivered value so watchers always see the
		// latest session.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
