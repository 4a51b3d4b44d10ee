package welcome

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hookhost/internal/configstore"
	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/testutil"
)

func initialize(t *testing.T, dir string) (*host.Bus, *testutil.FakeConnection) {
	t.Helper()
	conn := &testutil.FakeConnection{}
	services := host.Services{Configs: configstore.New(dir), Messenger: conn}

	gen := host.NewListeners()
	require.NoError(t, Initialize(context.Background(), host.NewContext(context.Background(), "welcome", services, gen)))

	bus := host.NewBus()
	bus.Install(gen)
	return bus, conn
}

func TestInitialize_GreetsJoiningMembers(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		ConfigName: `{"welcomeChannelId": "general", "welcomeMessage": "Hi {username}!"}`,
	})
	bus, conn := initialize(t, dir)

	// --- Act ---
	n := bus.Emit(context.Background(), EventMemberJoin, map[string]any{"username": "alice"})

	// --- Assert ---
	assert.Equal(t, 1, n)
	assert.Equal(t, []testutil.SentMessage{{ChannelID: "general", Content: "Hi alice!"}}, conn.Messages())
}

func TestInitialize_PlaceholderChannelDisablesGreeting(t *testing.T) {
	dir := t.TempDir()
	bus, conn := initialize(t, dir)

	bus.Emit(context.Background(), EventMemberJoin, map[string]any{"username": "bob"})

	assert.Empty(t, conn.Messages())
	assert.FileExists(t, dir+"/"+ConfigName)
}
