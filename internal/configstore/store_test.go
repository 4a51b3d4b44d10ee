package configstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_ParsesDocumentsAndSkipsBrokenOnes(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeDoc(t, dir, "config.json", `{"greeting": "hi", "version": "1.0.0"}`)
	writeDoc(t, dir, "welcome.json", "{\n  // comments are tolerated\n  \"welcomeChannelId\": \"42\",\n}\n")
	writeDoc(t, dir, "broken.json", `{"greeting": `)
	writeDoc(t, dir, "notes.txt", `not a document`)
	s := New(dir)

	// --- Act ---
	docs, errs := s.Load(context.Background())

	// --- Assert ---
	require.Len(t, errs, 1)
	assert.Equal(t, "broken.json", errs[0].Source)
	assert.Len(t, docs, 2)
	assert.Equal(t, []string{"config.json", "welcome.json"}, s.Keys())

	cfg, ok := s.Get("config.json")
	require.True(t, ok)
	assert.Equal(t, "hi", cfg.(map[string]any)["greeting"])

	welcome, _ := s.Get("welcome.json")
	assert.Equal(t, "42", welcome.(map[string]any)["welcomeChannelId"])
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.json", `{"v": 1}`)
	writeDoc(t, dir, "b.json", `{"v": 2}`)
	s := New(dir)
	s.Load(context.Background())
	require.Equal(t, 2, s.Len())

	require.NoError(t, os.Remove(filepath.Join(dir, "a.json")))
	writeDoc(t, dir, "b.json", `{"v": `)
	_, errs := s.Load(context.Background())

	assert.Len(t, errs, 1)
	assert.Zero(t, s.Len(), "neither the removed nor the now-broken document survives")
}

func TestLoad_ResultDoesNotAliasStore(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.json", `{"v": 1}`)
	s := New(dir)

	docs, _ := s.Load(context.Background())
	delete(docs, "a.json")
	docs["injected.json"] = "x"

	_, ok := s.Get("a.json")
	assert.True(t, ok)
	_, ok = s.Get("injected.json")
	assert.False(t, ok)
	assert.Equal(t, []string{"a.json"}, s.Keys())
}

func TestLoad_MissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))
	docs, errs := s.Load(context.Background())
	assert.Empty(t, docs)
	assert.Len(t, errs, 1)
}

func TestEnsureDefault_CreatesAndReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	def := map[string]any{"greeting": "Hello from config!", "version": "1.0.0"}

	got, err := s.EnsureDefault("config.json", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"greeting": "Hello from config!", "version": "1.0.0"}`, string(raw))

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, leftovers)
}

func TestEnsureDefault_ReturnsExistingDocument(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "config.json", `{"greeting": "custom"}`)
	s := New(dir)

	got, err := s.EnsureDefault("config.json", map[string]any{"greeting": "default"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"greeting": "custom"}, got)
}

func TestEnsureDefault_ConcurrentCallersAgree(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	var wg sync.WaitGroup
	results := make([]any, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.EnsureDefault("race.json", map[string]any{"n": float64(i)})
		}(i)
	}
	wg.Wait()

	raw, err := os.ReadFile(filepath.Join(dir, "race.json"))
	require.NoError(t, err)
	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
	}
	assert.NotEmpty(t, raw)
}

func TestDecode_IntoStruct(t *testing.T) {
	s := New(t.TempDir())
	var cfg struct {
		Greeting string `json:"greeting"`
	}
	require.NoError(t, s.Decode("config.json", map[string]any{"greeting": "hey"}, &cfg))
	assert.Equal(t, "hey", cfg.Greeting)
}
