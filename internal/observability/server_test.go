// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready)
	_, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // local test server
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerServesHealthEndpoints(t *testing.T) {
	server := startServer(t, func() bool { return true })
	base := fmt.Sprintf("http://%s", server.Addr())

	status, body := get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = get(t, base+"/readyz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body)
}

func TestServerReportsNotReady(t *testing.T) {
	server := startServer(t, func() bool { return false })

	status, body := get(t, fmt.Sprintf("http://%s/readyz", server.Addr()))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not ready", body)
}

func TestServerServesMetrics(t *testing.T) {
	server := startServer(t, nil)
	server.Metrics().HTTPRequestsTotal.WithLabelValues("/api/v1/", "GET", "200").Inc()

	status, body := get(t, fmt.Sprintf("http://%s/metrics", server.Addr()))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "taskvault_http_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestServerStartTwiceFails(t *testing.T) {
	server := startServer(t, nil)

	_, err := server.Start()
	require.Error(t, err)
}

// No HTTP requests here: client keep-alive goroutines would register as
// leaks. This checks the serve goroutine itself exits on Stop.
func TestServerStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := NewServer("127.0.0.1:0", nil)
	errChan, err := server.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	serveErr := <-errChan
	assert.NoError(t, serveErr)
}

func TestServerStopIsIdempotent(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)
	_, err := server.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))
	require.NoError(t, server.Stop(ctx))
}
