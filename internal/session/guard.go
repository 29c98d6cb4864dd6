package session

import (
	"context"
	"delivery-marketplace/utils"
	"sync"
)

// Public views stay reachable without a session
const (
	ViewHome     = "/"
	ViewRegister = "/register"
)

// Navigator is the UI surface the guard redirects through
type Navigator interface {
	CurrentView() string
	Redirect(view string)
}

// ViewState is an in-process Navigator that remembers the views it was sent to
type ViewState struct {
	mu      sync.Mutex
	current string
	history []string
}

// NewViewState starts at view
func NewViewState(view string) *ViewState {
	return &ViewState{current: view}
}

func (v *ViewState) CurrentView() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Show moves to view on the user's own initiative; it is not a redirect
func (v *ViewState) Show(view string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = view
}

func (v *ViewState) Redirect(view string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = append(v.history, view)
	v.current = view
}

// Redirects returns every redirect so far, oldest first
func (v *ViewState) Redirects() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.history...)
}

// Guard ends the session when a backend rejects it. Outside the public views
// it sends the user back to the home view.
type Guard struct {
	tokens TokenStore
	nav    Navigator

	mu        sync.Mutex
	listeners []func()
}

// NewGuard creates a guard; nav may be nil when there is no UI to redirect
func NewGuard(tokens TokenStore, nav Navigator) *Guard {
	return &Guard{tokens: tokens, nav: nav}
}

// Subscribe registers fn to run whenever the session is dropped
func (g *Guard) Subscribe(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// OnUnauthenticated clears the stored token and redirects if needed
func (g *Guard) OnUnauthenticated(ctx context.Context) {
	if err := g.tokens.ClearToken(ctx); err != nil {
		utils.Error("session guard: clear token", map[string]any{"error": err.Error()})
	}

	g.mu.Lock()
	listeners := append([]func(){}, g.listeners...)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}

	if g.nav == nil {
		return
	}
	view := g.nav.CurrentView()
	if view == ViewHome || view == ViewRegister {
		return
	}
	utils.Info("session guard: session rejected, redirecting", map[string]any{"from": view, "to": ViewHome})
	g.nav.Redirect(ViewHome)
}
