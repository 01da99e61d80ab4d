package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

// SessionManager holds the single authenticated identity for the process
// lifetime and mirrors every mutation to the persistence slot. There is no
// ambient global: the manager is constructed at bootstrap and injected.
type SessionManager struct {
	mirror ports.SessionMirror
	now    func() time.Time

	mu      sync.RWMutex
	current *domain.User
}

func NewSessionManager(mirror ports.SessionMirror) *SessionManager {
	return &SessionManager{
		mirror: mirror,
		now:    time.Now,
	}
}

// Restore rehydrates the identity from the mirror. Called once at startup;
// a missing slot means logged out, not an error.
func (m *SessionManager) Restore(ctx context.Context) error {
	user, ok, err := m.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session mirror: %w", err)
	}
	if !ok {
		return nil
	}
	m.mu.Lock()
	m.current = user
	m.mu.Unlock()
	return nil
}

// Login always succeeds and fabricates a fixed identity shape regardless of
// the submitted password. There is no server-side credential check anywhere
// in this system.
func (m *SessionManager) Login(ctx context.Context, email, _ string) (*domain.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	user := domain.User{
		ID:        "1",
		FullName:  "John Doe",
		Email:     email,
		Phone:     "+91 9876543210",
		KYCStatus: domain.KYCVerified,
		UserType:  domain.UserTypeBoth,
		CreatedAt: m.now().UTC(),
	}
	return m.install(ctx, user)
}

// Signup always succeeds with a freshly generated opaque id and a pending
// KYC status.
func (m *SessionManager) Signup(ctx context.Context, email, _ string, fullName string, userType domain.UserType) (*domain.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if fullName == "" {
		return nil, domain.NewValidationError("full_name", "full name is required")
	}
	if userType == "" {
		userType = domain.UserTypeBuyer
	}
	user := domain.User{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		KYCStatus: domain.KYCPending,
		UserType:  userType,
		CreatedAt: m.now().UTC(),
	}
	return m.install(ctx, user)
}

func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.mirror.Clear(ctx); err != nil {
		return fmt.Errorf("clear session mirror: %w", err)
	}
	return nil
}

func (m *SessionManager) Current() (*domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, false
	}
	copyUser := *m.current
	return &copyUser, true
}

// UpdateProfile shallow-merges the update into the current identity. With no
// active session it is a no-op rather than an error.
func (m *SessionManager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, nil
	}
	m.current.ApplyProfileUpdate(update)
	updated := *m.current
	m.mu.Unlock()

	if err := m.mirror.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save session mirror: %w", err)
	}
	return &updated, nil
}

// SubmitKYCDocument unconditionally flips the KYC status to verified. The
// document itself is never inspected.
func (m *SessionManager) SubmitKYCDocument(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, domain.WrapError(domain.ErrUnauthorized, "submit kyc", fmt.Errorf("no active session"))
	}
	m.current.KYCStatus = domain.KYCVerified
	updated := *m.current
	m.mu.Unlock()

	if err := m.mirror.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save session mirror: %w", err)
	}
	return &updated, nil
}

func (m *SessionManager) install(ctx context.Context, user domain.User) (*domain.User, error) {
	m.mu.Lock()
	m.current = &user
	m.mu.Unlock()

	if err := m.mirror.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save session mirror: %w", err)
	}
	copyUser := user
	return &copyUser, nil
}
