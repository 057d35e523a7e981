package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExecutorRun(t *testing.T) {
	exec := NewLocalExecutor()
	out, err := exec.Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(out))
}

func TestLocalExecutorCommandFailure(t *testing.T) {
	exec := NewLocalExecutor()
	out, err := exec.Run(context.Background(), "ls /nonexistent-path-for-test")
	assert.Error(t, err)
	assert.Contains(t, out, "nonexistent")
}

func TestLocalExecutorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := NewLocalExecutor()
	_, err := exec.Run(ctx, "sleep 5")
	assert.Error(t, err)
}
