// Package session tracks who is logged in and which views they may open.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"taskportal/internal/model"
	"taskportal/pkg/logger"
	"taskportal/pkg/metrics"
	"taskportal/pkg/rbac"
)

type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateFailed         State = "authentication-failed"
)

var ErrRoleMismatch = errors.New("role mismatch")

// RoleMismatchError is returned when valid credentials belong to an account
// of a different role than the login form asked for.
type RoleMismatchError struct {
	Expected string
	Actual   string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("Access denied: this account is not an %s account", e.Expected)
}

func (e *RoleMismatchError) Is(target error) bool {
	return target == ErrRoleMismatch
}

// Authenticator performs the credential exchange; *apiclient.Client
// satisfies it.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (model.Identity, error)
}

type Change struct {
	From State
	To   State
}

type Listener func(Change)

type Session struct {
	auth   Authenticator
	logger *zap.Logger

	mu        sync.RWMutex
	state     State
	identity  *model.Identity
	err       string
	listeners []Listener
}

func New(auth Authenticator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		auth:   auth,
		logger: logger,
		state:  StateAnonymous,
	}
}

// Login runs anonymous|failed|authenticated -> authenticating -> authenticated
// or failed. A failure keeps its message for display; the next Login starts
// over.
func (s *Session) Login(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("email", creds.Email),
		zap.String("expected_role", creds.ExpectedRole),
	)

	// 失败后重新提交先回到 anonymous
	s.transitionFrom(StateFailed, StateAnonymous, func() {
		s.err = ""
	})
	s.transition(StateAuthenticating, func() {
		s.err = ""
	})

	identity, err := s.auth.Login(context.WithoutCancel(ctx), creds)
	if err == nil && creds.ExpectedRole != "" && identity.Role != creds.ExpectedRole {
		err = &RoleMismatchError{Expected: creds.ExpectedRole, Actual: identity.Role}
	}
	if err != nil {
		outcome := "failed"
		if errors.Is(err, ErrRoleMismatch) {
			outcome = "role_mismatch"
		}
		metrics.IncrementLoginAttempt("client", outcome)
		log.Info("login failed", zap.String("outcome", outcome), zap.Error(err))

		s.transition(StateFailed, func() {
			s.identity = nil
			s.err = err.Error()
		})
		return model.Identity{}, err
	}

	metrics.IncrementLoginAttempt("client", "ok")
	log.Info("login succeeded", zap.String("role", identity.Role))
	s.transition(StateAuthenticated, func() {
		id := identity
		s.identity = &id
	})
	return identity, nil
}

// Logout drops the identity and returns to anonymous.
func (s *Session) Logout() {
	s.transition(StateAnonymous, func() {
		s.identity = nil
		s.err = ""
	})
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the logged-in identity; ok is false unless authenticated.
func (s *Session) Identity() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return model.Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) Role() string {
	id, _ := s.Identity()
	return id.Role
}

func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Session) Loading() bool {
	return s.State() == StateAuthenticating
}

func (s *Session) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// Route decides whether the current session may open a view restricted to
// allowed roles. When it may not, redirect names where to send the user: the
// login page for anonymous sessions, otherwise the role's own dashboard.
func (s *Session) Route(allowed ...string) (ok bool, redirect string) {
	if !s.IsAuthenticated() {
		return false, rbac.PathLogin
	}
	role := s.Role()
	if rbac.CanReach(role, allowed) {
		return true, ""
	}
	return false, rbac.HomePath(role)
}

// Subscribe registers l for state changes.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Session) transition(to State, update func()) {
	s.mu.Lock()
	s.apply(s.state, to, update)
}

// transitionFrom moves to to only when the session is currently in from.
func (s *Session) transitionFrom(from, to State, update func()) {
	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return
	}
	s.apply(from, to, update)
}

// apply must be called with s.mu held; it unlocks before notifying.
func (s *Session) apply(from, to State, update func()) {
	s.state = to
	update()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(Change{From: from, To: to})
	}
}
