package memscene

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geoscenego/internal/resource"
)

func TestCreateAndRemove(t *testing.T) {
	g := New()
	ctx := context.Background()

	handle, err := g.CreateImageryLayer(ctx, resource.LayerSpec{ID: "base", URL: "https://tiles"})
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())

	assert.True(t, g.Remove(ctx, handle))
	assert.Equal(t, 0, g.Len())
	assert.False(t, g.Remove(ctx, handle), "unknown handles report false")
}

func TestRemove_ForeignHandleType(t *testing.T) {
	g := New()
	assert.False(t, g.Remove(context.Background(), 42))
}

func TestDestroy_Terminal(t *testing.T) {
	g := New()
	ctx := context.Background()

	handle, err := g.CreateEntity(ctx, resource.EntitySpec{ID: "a"})
	require.NoError(t, err)

	require.NoError(t, g.Destroy(ctx))
	assert.Equal(t, 0, g.Len())
	assert.False(t, g.Remove(ctx, handle))

	_, err = g.CreateEntity(ctx, resource.EntitySpec{ID: "b"})
	assert.ErrorIs(t, err, ErrSceneDestroyed)
}

func TestFailureToggles(t *testing.T) {
	g := New()
	ctx := context.Background()

	g.FailCreates = true
	_, err := g.CreateEntity(ctx, resource.EntitySpec{ID: "a"})
	require.Error(t, err)

	g.FailCreates = false
	handle, err := g.CreateEntity(ctx, resource.EntitySpec{ID: "a"})
	require.NoError(t, err)

	g.FailRemoves = true
	assert.False(t, g.Remove(ctx, handle))
	assert.Equal(t, 1, g.Len())
}
