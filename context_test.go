package dataaccess

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestConnectionString(t *testing.T) {
	t.Run("fails when not initialized", func(t *testing.T) {
		_, err := ConnectionString(context.Background())
		assert.ErrorIs(t, err, ErrContextNotInitialized)
	})

	t.Run("returns the stored value", func(t *testing.T) {
		ctx := WithConnectionString(context.Background(), "server=db;database=Main")

		cs, err := ConnectionString(ctx)
		require.NoError(t, err)
		assert.Equal(t, "server=db;database=Main", cs)
	})

	t.Run("later writes win", func(t *testing.T) {
		// Overwriting within one request is allowed and silent.
		ctx := WithConnectionString(context.Background(), "first")
		ctx = WithConnectionString(ctx, "second")

		cs, err := ConnectionString(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", cs)
	})

	t.Run("derived writes do not leak to the parent", func(t *testing.T) {
		parent := WithConnectionString(context.Background(), "parent")
		_ = WithConnectionString(parent, "child")

		cs, err := ConnectionString(parent)
		require.NoError(t, err)
		assert.Equal(t, "parent", cs)
	})
}

func TestConnectionString_IsolatedPerRequest(t *testing.T) {
	g, gctx := errgroup.WithContext(context.Background())
	for i := 0; i < 100; i++ {
		i := i
		g.Go(func() error {
			want := fmt.Sprintf("server=db;database=Tenant%d", i)
			ctx := WithConnectionString(gctx, want)

			// Hop through another goroutine like an async continuation would.
			got := make(chan string, 1)
			go func() {
				cs, _ := ConnectionString(ctx)
				got <- cs
			}()

			if cs := <-got; cs != want {
				return fmt.Errorf("request %d saw %q", i, cs)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestRequestAbortAndTarget(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, RequestAbort(ctx))
	_, ok := TargetFrom(ctx)
	assert.False(t, ok)

	abort, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = WithTarget(WithRequestAbort(ctx, abort), Production)
	assert.Equal(t, abort, RequestAbort(ctx))

	target, ok := TargetFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, Production, target)

	assert.Equal(t, ctx, WithRequestAbort(ctx, nil))
}
