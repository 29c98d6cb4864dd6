package app

import (
	"context"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/marketplace"
	"delivery-marketplace/internal/mockbackend"
	"delivery-marketplace/internal/repository"
	"delivery-marketplace/internal/resolver"
	"delivery-marketplace/internal/session"
	"delivery-marketplace/internal/validation"
	"delivery-marketplace/utils"
	"fmt"
	"time"
)

// Client bundles the client-side services sharing one session
type Client struct {
	Session *session.Manager
	Jobs    *marketplace.Jobs
	Bids    *marketplace.Bids
	Chat    *marketplace.Chat
	Tokens  session.TokenStore
	Nav     *session.ViewState

	PollInterval time.Duration

	closers []func() error
}

// New wires transport, resolver, token store and services from cfg.
// With MockFallback set, a seeded in-memory backend answers whenever the
// real one cannot be reached.
func New(cfg *config.Config) (*Client, error) {
	transport, err := resolver.NewHTTPTransport(cfg.APIBaseURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	chains := resolver.DefaultChains()
	if cfg.EndpointsFile != "" {
		chains, err = resolver.LoadChains(cfg.EndpointsFile)
		if err != nil {
			return nil, err
		}
		utils.Info("app: endpoint overrides loaded", map[string]any{"file": cfg.EndpointsFile})
	}

	c := &Client{PollInterval: cfg.ChatPollInterval}

	tokens, err := c.newTokenStore(cfg)
	if err != nil {
		return nil, err
	}
	c.Tokens = tokens
	c.Nav = session.NewViewState(session.ViewHome)
	guard := session.NewGuard(tokens, c.Nav)

	opts := []resolver.Option{
		resolver.WithChains(chains),
		resolver.WithAuthFailureHandler(guard),
	}
	if cfg.MockFallback {
		repo := repository.NewMemoryRepo()
		if err := mockbackend.Seed(repo); err != nil {
			return nil, fmt.Errorf("app: seed mock backend: %w", err)
		}
		opts = append(opts, resolver.WithFallback(mockbackend.NewDispatcher(mockbackend.NewBackend(repo))))
	}
	api := resolver.New(transport, tokens, opts...)

	v := validation.New(nil)
	c.Session = session.NewManager(api, tokens, v, guard)
	c.Jobs = marketplace.NewJobs(api, v)
	c.Bids = marketplace.NewBids(api, v)
	c.Chat = marketplace.NewChat(api, v)
	return c, nil
}

func (c *Client) newTokenStore(cfg *config.Config) (session.TokenStore, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return session.NewMemoryTokenStore(), nil
	case config.TokenStoreFile:
		return session.NewFileTokenStore(cfg.TokenFile), nil
	case config.TokenStoreRedis:
		client := session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		c.closers = append(c.closers, client.Close)
		return session.NewRedisTokenStore(client), nil
	default:
		return nil, fmt.Errorf("app: unknown token store %q", cfg.TokenStore)
	}
}

// Start resumes a persisted session, if any
func (c *Client) Start(ctx context.Context) error {
	return c.Session.Restore(ctx)
}

// Close releases connections held by the token store
func (c *Client) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
