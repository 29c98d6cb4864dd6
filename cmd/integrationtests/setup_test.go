package integrationtests

import (
	"bytes"
	"delivery-marketplace/internal/app"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/mockbackend"
	"delivery-marketplace/internal/repository"
	"delivery-marketplace/internal/server"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the mock backend router over the seeded fixtures.
func SetupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	require.NoError(t, mockbackend.Seed(repo))
	return server.SetupRouter(mockbackend.NewBackend(repo))
}

// SetupTestServer serves the router on a real listener; the caller closes it.
func SetupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(SetupTestRouter(t))
}

// NewTestClient builds the client services against baseURL with their own session.
func NewTestClient(t *testing.T, baseURL string, fallback bool) *app.Client {
	t.Helper()
	client, err := app.New(&config.Config{
		APIBaseURL:       baseURL,
		HTTPTimeout:      2 * time.Second,
		MockFallback:     fallback,
		ChatPollInterval: 20 * time.Millisecond,
		TokenStore:       config.TokenStoreMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp any
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return resp, w
}
