package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Should fail when no URL is configured", func(t *testing.T) {
		_, err := Connect(context.Background(), Config{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("Should reject malformed URLs", func(t *testing.T) {
		_, err := Connect(context.Background(), Config{URL: "http://not-redis"})
		assert.Error(t, err)
	})

	t.Run("Should connect to a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := Connect(context.Background(), Config{URL: "redis://" + mr.Addr()})
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, HealthCheck(context.Background(), client))
	})

	t.Run("Should report a nil client as unhealthy", func(t *testing.T) {
		assert.Error(t, HealthCheck(context.Background(), nil))
	})
}
