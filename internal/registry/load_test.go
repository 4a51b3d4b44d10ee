package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/interaction"
)

type testModule struct{}

func (testModule) Register(h *handlers.Handlers) {
	for _, name := range []string{"ping", "echo", "alt"} {
		h.RegisterCommand(name, func(context.Context, *interaction.Request) error { return nil })
	}
}

func commandHCL(name, handler, description string) string {
	return fmt.Sprintf("command %q {\n  description = %q\n  handler = %q\n}\n", name, description, handler)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoad_IdempotentReload(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ping.hcl": commandHCL("ping", "ping", "Replies with Pong."),
		"test.hcl": commandHCL("test", "echo", "Replies with a test message."),
	})
	loader := NewLoader(handlers.New(testModule{}))

	first, errs := loader.Load(context.Background(), dir)
	require.Empty(t, errs)
	second, errs := loader.Load(context.Background(), dir)
	require.Empty(t, errs)

	assert.Equal(t, []string{"ping", "test"}, first.Names())
	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first.Specs(), second.Specs())

	a, _ := first.Get("ping")
	b, _ := second.Get("ping")
	assert.NotSame(t, a, b, "reload reconstructs units")
}

func TestLoad_PartialFailureIsolation(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "invalid first",
			files: map[string]string{
				"a_broken.hcl":  `command "x" {`,
				"b_nohandl.hcl": commandHCL("nohandler", "does-not-exist", ""),
				"c_ping.hcl":    commandHCL("ping", "ping", ""),
				"d_test.hcl":    commandHCL("test", "echo", ""),
			},
		},
		{
			name: "invalid last",
			files: map[string]string{
				"a_ping.hcl":    commandHCL("ping", "ping", ""),
				"b_test.hcl":    commandHCL("test", "echo", ""),
				"c_broken.hcl":  "module \"m\" {\n initializer = \"m\"\n}\n",
				"d_nohandl.hcl": "command \"empty\" {}\n",
			},
		},
		{
			name: "interleaved",
			files: map[string]string{
				"a_ping.hcl":   commandHCL("ping", "ping", ""),
				"b_broken.hcl": `not hcl at all {{{`,
				"c_test.hcl":   commandHCL("test", "echo", ""),
				"d_broken.hcl": commandHCL("Bad Name", "ping", ""),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeFiles(t, tc.files)
			loader := NewLoader(handlers.New(testModule{}))

			snap, errs := loader.Load(context.Background(), dir)

			assert.Equal(t, 2, snap.Len())
			assert.Len(t, errs, 2)
			for _, e := range errs {
				assert.NotEmpty(t, e.Source)
				assert.NotEmpty(t, e.Reason)
			}
		})
	}
}

func TestLoad_DeterministicCollision(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.hcl": commandHCL("ping", "ping", "from A"),
		"b.hcl": commandHCL("ping", "alt", "from B"),
	})
	loader := NewLoader(handlers.New(testModule{}))

	for i := 0; i < 3; i++ {
		snap, errs := loader.Load(context.Background(), dir)
		require.Empty(t, errs)
		require.Equal(t, 1, snap.Len())

		cmd, ok := snap.Get("ping")
		require.True(t, ok)
		assert.Equal(t, "from B", cmd.Spec.Description)
		assert.Equal(t, "alt", cmd.HandlerName)
		assert.Equal(t, "b.hcl", cmd.Source)
	}
}

func TestLoad_ObservesEdits(t *testing.T) {
	dir := writeFiles(t, map[string]string{"ping.hcl": commandHCL("ping", "ping", "v1")})
	loader := NewLoader(handlers.New(testModule{}))

	snap, _ := loader.Load(context.Background(), dir)
	cmd, _ := snap.Get("ping")
	assert.Equal(t, "v1", cmd.Spec.Description)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ping.hcl"), []byte(commandHCL("pong", "ping", "v2")), 0o644))
	snap, _ = loader.Load(context.Background(), dir)

	_, ok := snap.Get("ping")
	assert.False(t, ok)
	cmd, ok = snap.Get("pong")
	require.True(t, ok)
	assert.Equal(t, "v2", cmd.Spec.Description)
}

func TestLoad_MissingDirectory(t *testing.T) {
	loader := NewLoader(handlers.New(testModule{}))
	snap, errs := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Zero(t, snap.Len())
	assert.Len(t, errs, 1)
}
