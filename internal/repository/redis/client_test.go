package redis

import (
	"context"
	"testing"

	"github.com/Rrens/salespulse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsUnreachableServer(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1})

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestNewClientHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 6379})
	require.Error(t, err)
}
