package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/hookhost/internal/configstore"
)

func TestBus_EmitReachesOnlyCurrentGeneration(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()
	var calls []string

	gen1 := NewListeners()
	NewContext(ctx, "welcome", Services{}, gen1).On("member_join", func(context.Context, map[string]any) error {
		calls = append(calls, "v1")
		return nil
	})
	bus.Install(gen1)
	assert.Equal(t, 1, bus.Emit(ctx, "member_join", nil))

	gen2 := NewListeners()
	NewContext(ctx, "welcome", Services{}, gen2).On("member_join", func(context.Context, map[string]any) error {
		calls = append(calls, "v2")
		return nil
	})
	bus.Install(gen2)
	assert.Equal(t, 1, bus.Emit(ctx, "member_join", nil))

	assert.Equal(t, []string{"v1", "v2"}, calls)
	assert.Equal(t, 0, bus.Emit(ctx, "unknown", nil))
}

func TestBus_FailingListenersAreIsolated(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()
	gen := NewListeners()
	hctx := NewContext(ctx, "m", Services{}, gen)
	reached := false

	hctx.On("e", func(context.Context, map[string]any) error { panic("boom") })
	hctx.On("e", func(context.Context, map[string]any) error { return errors.New("nope") })
	hctx.On("e", func(context.Context, map[string]any) error { reached = true; return nil })
	bus.Install(gen)

	assert.Equal(t, 3, bus.Emit(ctx, "e", map[string]any{"x": 1}))
	assert.True(t, reached)
	assert.Equal(t, 3, bus.Len())
}

func TestContext_ExposesServices(t *testing.T) {
	store := configstore.New(t.TempDir())
	hctx := NewContext(context.Background(), "welcome", Services{Configs: store}, NewListeners())

	assert.Equal(t, "welcome", hctx.Module())
	assert.Same(t, store, hctx.Configs())
	assert.Nil(t, hctx.Messenger())
	assert.NotNil(t, hctx.Logger())
}

func TestServicesFrom(t *testing.T) {
	assert.Nil(t, ServicesFrom(context.Background()).Configs)

	svcs := Services{Configs: configstore.New(t.TempDir())}
	ctx := WithServices(context.Background(), svcs)

	assert.Same(t, svcs.Configs, ServicesFrom(ctx).Configs)
}
