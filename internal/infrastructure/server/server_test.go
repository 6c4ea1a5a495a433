package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Packages.Warm = false
	return cfg
}

func TestNewServerRoutes(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	for _, path := range []string{"/", "/health", "/containers/presets", "/services", "/sessions"} {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Trace-ID"), path)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sysmgr_http_requests_total")
}

func TestNewServerWarmsCatalog(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	manager := filepath.Join(t.TempDir(), "slow-dnf")
	require.NoError(t, os.WriteFile(manager, []byte("#!/bin/sh\nsleep 1\n"), 0o755))

	cfg := testConfig()
	cfg.Packages.Warm = true
	cfg.Packages.Manager = manager
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	// the startup build is already running when NewServer returns
	assert.True(t, srv.catalog.Warming())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	assert.Eventually(t, func() bool { return !srv.catalog.Warming() }, 10*time.Second, 20*time.Millisecond)
}

func TestRegisteredServices(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services", nil))

	var body struct {
		Services []struct {
			ID string `json:"id"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	ids := make([]string, len(body.Services))
	for i, s := range body.Services {
		ids[i] = s.ID
	}
	assert.ElementsMatch(t, []string{"packages", "containers", "system"}, ids)
}

func TestBuildRejectsBadFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Packages.Exclude = []string{"[unterminated"}

	_, err := Build(cfg, zaptest.NewLogger(t), monitoring.NewMetrics())
	assert.ErrorContains(t, err, "repository filter")
}

func TestBuildLoadsPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[presets]]\nlabel = \"Arch\"\nimage = \"archlinux\"\n"), 0o644))

	cfg := testConfig()
	cfg.Containers.Presets = path
	comp, err := Build(cfg, zaptest.NewLogger(t), monitoring.NewMetrics())
	require.NoError(t, err)
	t.Cleanup(comp.Sessions.Shutdown)

	require.Len(t, comp.Presets, 1)
	assert.Equal(t, "archlinux", comp.Presets[0].Image)
	assert.Len(t, comp.Guards, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := testConfig()
	cfg.Server.Port = strconv.Itoa(port)
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.Server.Port + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
