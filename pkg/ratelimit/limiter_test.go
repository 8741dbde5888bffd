package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLimiter_Burst(t *testing.T) {
	l := New(1, 2)
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "call %d", i)
	}

	ok, _ := l.Allow(ctx, "user-2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Second)
	ok, _ = l.Allow(ctx, "user-1")
	assert.True(t, ok, "token refilled")
}

func TestKeyedLimiter_DropsIdleKeys(t *testing.T) {
	l := New(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "a")
	_, _ = l.Allow(context.Background(), "b")
	assert.Equal(t, 2, l.Len())

	now = now.Add(time.Hour)
	_, _ = l.Allow(context.Background(), "c")
	assert.Equal(t, 1, l.Len())
}
