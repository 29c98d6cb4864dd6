package app

import (
	"context"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/session"
	"delivery-marketplace/internal/validation"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// closedBaseURL returns an address nothing listens on
func closedBaseURL(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "http://" + addr + "/api/"
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		APIBaseURL:       closedBaseURL(t),
		HTTPTimeout:      time.Second,
		MockFallback:     true,
		ChatPollInterval: 10 * time.Millisecond,
		TokenStore:       config.TokenStoreFile,
		TokenFile:        filepath.Join(t.TempDir(), "token.yaml"),
	}
}

func TestNew_OfflineWithFileStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	client, err := New(cfg)
	require.NoError(t, err)
	defer client.Close()

	user, err := client.Session.Login(ctx, validation.LoginForm{Username: "sender1", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)

	jobs, err := client.Jobs.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	// a new process resumes the session from the token file
	restarted, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, restarted.Start(ctx))
	require.True(t, restarted.Session.IsSender())
}

func TestNew_NoFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.MockFallback = false
	cfg.TokenStore = config.TokenStoreMemory

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.Session.Login(context.Background(), validation.LoginForm{Username: "sender1", Password: "pw"})
	require.ErrorIs(t, err, marketerrors.ErrNetworkUnreachable)
}

func TestNew_EndpointOverrides(t *testing.T) {
	cfg := testConfig(t)
	cfg.EndpointsFile = filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(cfg.EndpointsFile, []byte("bogus_op:\n  - path: x/\n"), 0o600))

	_, err := New(cfg)
	require.ErrorContains(t, err, "unknown operation")
}

func TestNew_Stores(t *testing.T) {
	for _, kind := range []string{config.TokenStoreMemory, config.TokenStoreFile, config.TokenStoreRedis} {
		t.Run(kind, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.TokenStore = kind
			cfg.RedisAddr = "127.0.0.1:1"

			client, err := New(cfg)
			require.NoError(t, err)
			require.NoError(t, client.Close())

			switch kind {
			case config.TokenStoreMemory:
				require.IsType(t, &session.MemoryTokenStore{}, client.Tokens)
			case config.TokenStoreFile:
				require.IsType(t, &session.FileTokenStore{}, client.Tokens)
			case config.TokenStoreRedis:
				require.IsType(t, &session.RedisTokenStore{}, client.Tokens)
			}
		})
	}

	cfg := testConfig(t)
	cfg.TokenStore = "cookie"
	_, err := New(cfg)
	require.Error(t, err)
}
