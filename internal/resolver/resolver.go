package resolver

import (
	"context"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/utils"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockgen -source=resolver.go -destination=mock_resolver.go -package=resolver

// TokenSource provides the bearer token of the current session, "" if none
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Fallback serves an operation when the real backend cannot be reached
type Fallback interface {
	Handle(ctx context.Context, token string, req operation.Request) (operation.Response, error)
}

// AuthFailureHandler is told when the backend rejects the session
type AuthFailureHandler interface {
	OnUnauthenticated(ctx context.Context)
}

// EndpointError reports that every candidate of an operation answered "not found"
type EndpointError struct {
	Op    operation.Operation
	Tried []string
	Last  *marketerrors.APIError
}

func (e *EndpointError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("%s: %v: no usable candidate", e.Op, marketerrors.ErrNoCompatibleEndpoint)
	}
	return fmt.Sprintf("%s: %v after trying %s", e.Op, marketerrors.ErrNoCompatibleEndpoint, strings.Join(e.Tried, ", "))
}

func (e *EndpointError) Unwrap() error { return marketerrors.ErrNoCompatibleEndpoint }

// Resolver presents one stable call per operation while the backend route
// is unknown. Candidates are tried strictly in order.
type Resolver struct {
	chains    Chains
	transport Transport
	tokens    TokenSource
	fallback  Fallback
	onAuth    AuthFailureHandler
}

// Option configures a Resolver
type Option func(*Resolver)

// WithChains replaces the default candidate chains
func WithChains(chains Chains) Option {
	return func(r *Resolver) { r.chains = chains }
}

// WithFallback delegates operations to f when the network is unreachable
func WithFallback(f Fallback) Option {
	return func(r *Resolver) { r.fallback = f }
}

// WithAuthFailureHandler registers the handler run on Unauthenticated failures
func WithAuthFailureHandler(h AuthFailureHandler) Option {
	return func(r *Resolver) { r.onAuth = h }
}

// New creates a Resolver sending requests through transport
func New(transport Transport, tokens TokenSource, opts ...Option) *Resolver {
	r := &Resolver{
		chains:    DefaultChains(),
		transport: transport,
		tokens:    tokens,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs req against the first candidate that exists. It stops at the
// first success or non-routing failure; a route-not-found moves on; an
// unreachable network hands the whole request to the fallback.
func (r *Resolver) Do(ctx context.Context, req operation.Request) (operation.Response, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return operation.Response{}, fmt.Errorf("resolver: %s: read token: %w", req.Op, err)
	}

	endpointErr := &EndpointError{Op: req.Op}
	for _, c := range r.chains[req.Op] {
		if err := ctx.Err(); err != nil {
			return operation.Response{}, fmt.Errorf("resolver: %s: %w", req.Op, err)
		}

		path, ok := c.Target(req)
		if !ok {
			continue
		}

		resp, err := r.transport.Do(ctx, c.Method, path, token, req.Body)
		switch {
		case err == nil:
			if c.FilterBySender && req.OwnerID != 0 {
				resp.Data = filterBySender(resp.Data, req.OwnerID)
			}
			utils.Debug("resolver: candidate accepted", map[string]any{
				"operation": string(req.Op),
				"method":    c.Method,
				"path":      path,
				"status":    resp.Status,
			})
			return resp, nil

		case errors.Is(err, marketerrors.ErrRouteNotFound):
			endpointErr.Tried = append(endpointErr.Tried, c.Method+" "+path)
			var apiErr *marketerrors.APIError
			if errors.As(err, &apiErr) {
				endpointErr.Last = apiErr
			}
			utils.Debug("resolver: route not found, trying next candidate", map[string]any{
				"operation": string(req.Op),
				"path":      path,
			})

		case errors.Is(err, marketerrors.ErrNetworkUnreachable):
			return r.delegate(ctx, token, req, err)

		default:
			r.checkAuth(ctx, err)
			return operation.Response{}, err
		}
	}

	utils.Warn("resolver: no compatible endpoint", map[string]any{
		"operation": string(req.Op),
		"tried":     endpointErr.Tried,
	})
	return operation.Response{}, endpointErr
}

// delegate hands req to the fallback, or surfaces cause when there is none
func (r *Resolver) delegate(ctx context.Context, token string, req operation.Request, cause error) (operation.Response, error) {
	if r.fallback == nil {
		return operation.Response{}, cause
	}

	utils.Info("resolver: backend unreachable, using mock backend", map[string]any{
		"operation": string(req.Op),
		"cause":     cause.Error(),
	})

	resp, err := r.fallback.Handle(ctx, token, req)
	if err != nil {
		r.checkAuth(ctx, err)
		return operation.Response{}, err
	}
	return resp, nil
}

func (r *Resolver) checkAuth(ctx context.Context, err error) {
	if r.onAuth != nil && errors.Is(err, marketerrors.ErrUnauthenticated) {
		r.onAuth.OnUnauthenticated(ctx)
	}
}

// filterBySender keeps the records whose sender or sender_id equals owner.
// Payloads that are not JSON arrays pass through untouched.
func filterBySender(data json.RawMessage, owner int64) json.RawMessage {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return data
	}

	kept := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if matchesOwner(rec["sender"], owner) || matchesOwner(rec["sender_id"], owner) {
			kept = append(kept, rec)
		}
	}

	out, err := json.Marshal(kept)
	if err != nil {
		return data
	}
	return out
}

func matchesOwner(v any, owner int64) bool {
	switch id := v.(type) {
	case float64:
		return int64(id) == owner
	case string:
		return id == fmt.Sprint(owner)
	}
	return false
}
