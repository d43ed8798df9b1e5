package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/logger"
)

// closedPort returns a local port with nothing listening on it
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestConnectGivesUpAfterRetries(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: closedPort(t)}

	start := time.Now()
	_, err := Connect(context.Background(), cfg, ConnectOptions{MaxRetries: 2, RetryDelay: 10 * time.Millisecond}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestConnectStopsWhenContextEnds(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: closedPort(t)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Connect(ctx, cfg, ConnectOptions{MaxRetries: 10, RetryDelay: time.Hour}, logger.NewNop())
	assert.Error(t, err)
}
