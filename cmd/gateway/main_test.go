package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/authgw/internal/config"
	"github.com/vyrodovalexey/authgw/internal/gateway"
	"github.com/vyrodovalexey/authgw/internal/observability"
)

func TestFlagDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		env      map[string]string
		expected cliFlags
	}{
		{
			name:     "built-in defaults",
			expected: cliFlags{configPath: "configs/gateway.yaml", logLevel: "info", logFormat: "json"},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				envConfigPath: "/etc/authgw/gateway.toml",
				envLogLevel:   "debug",
				envLogFormat:  "console",
			},
			expected: cliFlags{configPath: "/etc/authgw/gateway.toml", logLevel: "debug", logFormat: "console"},
		},
		{
			name:     "empty value keeps default",
			env:      map[string]string{envLogLevel: ""},
			expected: cliFlags{configPath: "configs/gateway.yaml", logLevel: "info", logFormat: "json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lookup := func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}

			assert.Equal(t, tt.expected, flagDefaults(lookup))
		})
	}
}

func TestMergeLogConfig(t *testing.T) {
	t.Parallel()

	flags := cliFlags{logLevel: "info", logFormat: "json"}

	tests := []struct {
		name        string
		cfg         *config.GatewayConfig
		wantLevel   string
		wantFormat  string
		wantChanged bool
	}{
		{name: "nil config", cfg: nil, wantLevel: "info", wantFormat: "json"},
		{name: "no overrides", cfg: &config.GatewayConfig{}, wantLevel: "info", wantFormat: "json"},
		{
			name: "same values",
			cfg: &config.GatewayConfig{Observability: config.ObservabilityConfig{
				Logging: config.LoggingConfig{Level: "info", Format: "json"},
			}},
			wantLevel: "info", wantFormat: "json",
		},
		{
			name: "level and format",
			cfg: &config.GatewayConfig{Observability: config.ObservabilityConfig{
				Logging: config.LoggingConfig{Level: "debug", Format: "console"},
			}},
			wantLevel: "debug", wantFormat: "console", wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, changed := mergeLogConfig(flags, tt.cfg)

			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantFormat, got.Format)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestApplyLoggingOverrides_InvalidLevelKeepsLogger(t *testing.T) {
	t.Parallel()

	logger := observability.NopLogger()
	cfg := &config.GatewayConfig{Observability: config.ObservabilityConfig{
		Logging: config.LoggingConfig{Level: "chatty"},
	}}

	got := applyLoggingOverrides(cliFlags{logLevel: "info", logFormat: "json"}, cfg, logger)

	assert.Equal(t, logger, got)
}

func TestInitTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := initTracer(config.DefaultConfig())

	require.NoError(t, err)
	require.NotNil(t, tracer)
	assert.NotNil(t, tracer.Tracer())
}

// serviceRoute points a service route at an httptest server.
func serviceRoute(t *testing.T, pattern, serverURL string, auth bool) config.ServiceRoute {
	t.Helper()

	u, err := url.Parse(serverURL)
	require.NoError(t, err)

	return config.ServiceRoute{
		Path:                   pattern,
		TargetService:          u.Scheme + "://" + u.Hostname(),
		TargetPort:             u.Port(),
		AuthenticationRequired: &auth,
	}
}

func TestInitApplication_ForwardsWithoutAuthorization(t *testing.T) {
	t.Parallel()

	// Arrange
	seen := make(chan *http.Request, 1)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r
		_, _ = io.WriteString(w, "items")
	}))
	defer backend.Close()

	cfg := config.DefaultConfig()
	cfg.Services = []config.ServiceRoute{serviceRoute(t, "^/api/.*", backend.URL, false)}

	// Act
	app, err := initApplication(cfg, observability.NopLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	// Assert
	assert.Nil(t, app.authorizer)
	assert.Len(t, app.routes.Routes(), 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "items", rec.Body.String())

	r := <-seen
	assert.Equal(t, "/api/items", r.RequestURI)
	assert.Equal(t, []string{""}, r.Header.Values("Authorization"))
}

func TestInitApplication_Authorization(t *testing.T) {
	t.Parallel()

	authAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(authAPI.Close)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "secret for "+r.Header.Get("Authorization"))
	}))
	t.Cleanup(backend.Close)

	cfg := config.DefaultConfig()
	cfg.AuthorizationAPIURL = authAPI.URL + "/auth"
	cfg.Services = []config.ServiceRoute{serviceRoute(t, "^/users", backend.URL, true)}

	app, err := initApplication(cfg, observability.NopLogger())
	require.NoError(t, err)
	require.NotNil(t, app.authorizer)

	tests := []struct {
		name       string
		credential string
		wantStatus int
		wantBody   string
	}{
		{name: "accepted", credential: "Bearer good", wantStatus: http.StatusOK, wantBody: "secret for Bearer good"},
		{name: "rejected", credential: "Bearer bad", wantStatus: http.StatusServiceUnavailable, wantBody: gateway.BodyAuthUnavailable},
		{name: "missing", wantStatus: http.StatusServiceUnavailable, wantBody: gateway.BodyAuthUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
			if tt.credential != "" {
				req.Header.Set("Authorization", tt.credential)
			}
			rec := httptest.NewRecorder()

			app.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestInitApplication_InvalidRoute(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Services = []config.ServiceRoute{{
		Path: "([", TargetService: "http://127.0.0.1", TargetPort: "9000",
	}}

	app, err := initApplication(cfg, observability.NopLogger())

	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "failed to load routes")
}

func TestCreateAdminServer(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	app, err := initApplication(cfg, observability.NopLogger())
	require.NoError(t, err)

	// Serve one request so the request metrics carry a sample.
	app.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, gateway.HealthCheckPath, nil))

	server := createAdminServer(9999, "/metrics", app.metrics, app.healthChecker)
	assert.Equal(t, ":9999", server.Addr)

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body,
			`gateway_requests_total{method="GET",outcome="health",route="unmatched",status="200"} 1`)
		assert.Contains(t, body, "gateway_build_info")
	})

	t.Run("health", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	})

	t.Run("ready before start", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestStartConfigWatcher_Disabled(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	watcher := startConfigWatcher(cfg, "unused.yaml", make(chan struct{}), observability.NopLogger())

	assert.Nil(t, watcher)
}

const watchedConfig = `services:
  - path: "^/public"
    target_service: "http://127.0.0.1"
    target_port: "9001"
    authentication_required: false
watch:
  enabled: true
  debounce_delay: "20ms"
`

func TestStartConfigWatcher_ChangeTriggersRestart(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchedConfig), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	restartCh := make(chan struct{})
	watcher := startConfigWatcher(cfg, path, restartCh, observability.NopLogger())
	require.NotNil(t, watcher)
	defer func() { _ = watcher.Stop() }()

	// Act
	changed := strings.Replace(watchedConfig, "9001", "9002", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o600))

	// Assert
	select {
	case <-restartCh:
	case <-time.After(5 * time.Second):
		t.Fatal("configuration change did not trigger a restart")
	}
}
