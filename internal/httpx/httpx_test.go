package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quotesnap/internal/httpx"
)

func TestClientDo_SetsDefaultHeaders(t *testing.T) {
	t.Parallel()

	// Arrange: an upstream that echoes what it received
	seen := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := httpx.New(2 * time.Second)
	client.Headers = map[string]string{"X-Trace": "abc"}

	// Act
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	// Assert
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	got := <-seen
	require.Equal(t, httpx.DefaultUserAgent, got.Get("User-Agent"))
	require.Equal(t, "abc", got.Get("X-Trace"))
}

func TestClientDo_KeepsExplicitUserAgent(t *testing.T) {
	t.Parallel()

	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/2")

	res, err := httpx.New(time.Second).Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, "custom/2", <-seen)
}
