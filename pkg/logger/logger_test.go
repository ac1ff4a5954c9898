package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestDetectEnv(t *testing.T) {
	for raw, want := range map[string]Env{
		"prod":       EnvProd,
		"PRODUCTION": EnvProd,
		"stage":      EnvStage,
		"staging":    EnvStage,
		"dev":        EnvDev,
		"":           EnvDev,
		"weird":      EnvDev,
	} {
		t.Setenv("APP_ENV", raw)
		require.Equal(t, want, DetectEnv(), "APP_ENV=%q", raw)
	}
}

func TestEnsureInstanceID(t *testing.T) {
	require.Equal(t, "given-id", ensureInstanceID("given-id"))

	generated := ensureInstanceID("")
	require.NotEmpty(t, generated)
	require.NotEqual(t, generated, ensureInstanceID(""))
}

func TestInitStdBackendWritesCommonAttrs(t *testing.T) {
	out := captureStdout(t, func() {
		Init(Config{
			Service: "chat-service",
			Version: "v0.1.0",
			Env:     EnvDev,
			Backend: BackendStd,
		})
		L().Info("hello", "conn", "c1")
	})

	require.Contains(t, out, "hello")
	require.Contains(t, out, "service=chat-service")
	require.Contains(t, out, "version=v0.1.0")
	require.Contains(t, out, "conn=c1")
}

func TestInitDebugEnablesDebugLevel(t *testing.T) {
	out := captureStdout(t, func() {
		Init(Config{Service: "chat-service", Env: EnvDev, Backend: BackendStd, Debug: true})
		L().Debug("verbose detail")
	})

	require.Contains(t, out, "verbose detail")
}

func TestInitZapBackendWritesJSON(t *testing.T) {
	out := captureStdout(t, func() {
		Init(Config{Service: "chat-service", Env: EnvProd, Backend: BackendZap})
		L().Info("structured")
	})

	line := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(line, "{"), "zap backend should emit JSON, got %q", line)
	require.Contains(t, line, `"structured"`)
	require.Contains(t, line, "chat-service")
}

func TestLInitializesOnFirstUse(t *testing.T) {
	def = nil

	require.NotNil(t, L())
	require.Same(t, L(), L())
}

func TestAttrsFromCtxWithoutSpan(t *testing.T) {
	require.Nil(t, AttrsFromCtx(context.Background()))
}
