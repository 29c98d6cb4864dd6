package session

import (
	"context"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/internal/validation"
	"delivery-marketplace/utils"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrAutoLogin is returned with the new user when registration succeeded
// but signing in right after it did not
var ErrAutoLogin = errors.New("registered, automatic login failed")

// Manager owns the signed-in user: login, registration, restore on start, logout
type Manager struct {
	api      operation.Doer
	tokens   TokenStore
	validate *validation.Validator
	now      func() time.Time

	mu   sync.RWMutex
	user *models.User
}

// NewManager creates a session manager. When guard is set, a session it drops
// is forgotten here too.
func NewManager(api operation.Doer, tokens TokenStore, v *validation.Validator, guard *Guard) *Manager {
	m := &Manager{
		api:      api,
		tokens:   tokens,
		validate: v,
		now:      time.Now,
	}
	if guard != nil {
		guard.Subscribe(m.forget)
	}
	return m
}

// WithClock replaces the clock used for token expiry checks
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Login signs in with the form credentials and loads the profile.
// If the profile cannot be loaded the token is discarded.
func (m *Manager) Login(ctx context.Context, form validation.LoginForm) (models.User, error) {
	if err := m.validate.Struct(form); err != nil {
		return models.User{}, err
	}

	token, err := m.obtainToken(ctx, operation.Login, form.Username, form.Password)
	if err != nil {
		return models.User{}, err
	}
	return m.startSession(ctx, token)
}

// Register creates the account and signs in with it. A failed sign-in is
// reported as ErrAutoLogin alongside the created user.
func (m *Manager) Register(ctx context.Context, form validation.RegisterForm) (models.User, error) {
	if err := m.validate.Struct(form); err != nil {
		return models.User{}, err
	}

	resp, err := m.api.Do(ctx, operation.Request{Op: operation.Register, Body: form.Input()})
	if err != nil {
		return models.User{}, fmt.Errorf("register %q: %w", form.Username, err)
	}
	var created models.User
	if err := resp.Decode(&created); err != nil {
		return models.User{}, fmt.Errorf("register %q: %w", form.Username, err)
	}
	utils.Info("session: account registered", map[string]any{"username": created.Username, "role": string(created.Role)})

	token, err := m.obtainToken(ctx, operation.TokenObtain, form.Username, form.Password)
	if err != nil {
		return created, fmt.Errorf("%w: %w", ErrAutoLogin, err)
	}
	user, err := m.startSession(ctx, token)
	if err != nil {
		return created, fmt.Errorf("%w: %w", ErrAutoLogin, err)
	}
	return user, nil
}

// Restore resumes a persisted session. An expired JWT is dropped without
// asking the backend; a token the backend rejects is dropped as well.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		return nil
	}

	if TokenExpired(token, m.now()) {
		utils.Info("session: stored token expired", nil)
		return m.tokens.ClearToken(ctx)
	}

	user, err := m.loadProfile(ctx)
	if err != nil {
		m.discard(ctx)
		return fmt.Errorf("restore session: %w", err)
	}
	m.setUser(user)
	return nil
}

// Logout forgets the user and the stored token
func (m *Manager) Logout(ctx context.Context) error {
	m.forget()
	if err := m.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// UpdateProfile sends the changed fields and keeps the returned profile
func (m *Manager) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	resp, err := m.api.Do(ctx, operation.Request{Op: operation.UpdateProfile, Body: patch})
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	var user models.User
	if err := resp.Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	m.setUser(user)
	return user, nil
}

// User returns the signed-in user, if any
func (m *Manager) User() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// IsSender reports whether the signed-in user posts jobs
func (m *Manager) IsSender() bool {
	u, ok := m.User()
	return ok && u.IsSender()
}

// IsTraveler reports whether the signed-in user bids on jobs
func (m *Manager) IsTraveler() bool {
	u, ok := m.User()
	return ok && u.IsTraveler()
}

func (m *Manager) obtainToken(ctx context.Context, op operation.Operation, username, password string) (string, error) {
	resp, err := m.api.Do(ctx, operation.Request{
		Op:   op,
		Body: map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return "", fmt.Errorf("login %q: %w", username, err)
	}

	var body map[string]any
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("login %q: %w", username, err)
	}
	for _, key := range []string{"access", "token", "access_token"} {
		if token, ok := body[key].(string); ok && token != "" {
			return token, nil
		}
	}
	return "", fmt.Errorf("login %q: no token in response: %w", username, marketerrors.ErrBackend)
}

func (m *Manager) startSession(ctx context.Context, token string) (models.User, error) {
	if err := m.tokens.SetToken(ctx, token); err != nil {
		return models.User{}, fmt.Errorf("store token: %w", err)
	}

	user, err := m.loadProfile(ctx)
	if err != nil {
		m.discard(ctx)
		return models.User{}, err
	}
	m.setUser(user)
	utils.Info("session: signed in", map[string]any{"username": user.Username, "role": string(user.Role)})
	return user, nil
}

func (m *Manager) loadProfile(ctx context.Context) (models.User, error) {
	resp, err := m.api.Do(ctx, operation.Request{Op: operation.GetProfile})
	if err != nil {
		return models.User{}, fmt.Errorf("load profile: %w", err)
	}
	var user models.User
	if err := resp.Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}

func (m *Manager) discard(ctx context.Context) {
	m.forget()
	if err := m.tokens.ClearToken(ctx); err != nil {
		utils.Error("session: clear token", map[string]any{"error": err.Error()})
	}
}

func (m *Manager) setUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &u
}

func (m *Manager) forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
}
