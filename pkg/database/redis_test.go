package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_UnreachableFailsWithinTimeout(t *testing.T) {
	start := time.Now()
	r, err := NewRedis(context.Background(), RedisOptions{
		Addr:    "127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})

	require.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Less(t, time.Since(start), 10*time.Second)
}
