package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/hookhost/internal/cli"
	"github.com/vk/hookhost/internal/testutil"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_MalformedGatewayURLIsReturned(t *testing.T) {
	// --- Arrange ---
	t.Setenv(cli.TokenEnv, "secret")
	dir := t.TempDir()
	out := &testutil.SafeBuffer{}

	// --- Act ---
	err := run(context.Background(), out, hostArgs(dir, "http://[::1"))

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to connect")
}

func TestRun_UnreachableGatewayKeepsRunning(t *testing.T) {
	// --- Arrange ---
	t.Setenv(cli.TokenEnv, "secret")
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &testutil.SafeBuffer{}

	// --- Act ---
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, out, hostArgs(dir, "http://127.0.0.1:1")) }()

	// --- Assert ---
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Remote service unreachable")
	}, 30*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)
}

func hostArgs(dir, gatewayURL string) []string {
	return []string{
		"--gateway-url", gatewayURL,
		"--api-base-url", "http://127.0.0.1:1/api",
		"--application-id", "app",
		"--commands-dir", dir + "/commands",
		"--modules-dir", dir + "/modules",
		"--config-dir", dir + "/config",
		"--no-watch",
	}
}
