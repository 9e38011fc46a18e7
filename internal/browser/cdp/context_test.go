package cdp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineContext(t *testing.T) {
	type ctxKey string
	const key ctxKey = "target"

	t.Run("inherits values from tab", func(t *testing.T) {
		tab := context.WithValue(context.Background(), key, "tab-1")
		combined, cancel := CombineContext(tab, context.Background())
		defer cancel()

		assert.Equal(t, "tab-1", combined.Value(key))
		assert.NoError(t, combined.Err())
	})

	t.Run("canceled by tab", func(t *testing.T) {
		tab, cancelTab := context.WithCancel(context.Background())
		combined, cancel := CombineContext(tab, context.Background())
		defer cancel()

		cancelTab()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("canceled by op", func(t *testing.T) {
		op, cancelOp := context.WithCancel(context.Background())
		combined, cancel := CombineContext(context.Background(), op)
		defer cancel()

		cancelOp()
		assert.Eventually(t, func() bool { return combined.Err() != nil },
			time.Second, 5*time.Millisecond)
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("op deadline carried", func(t *testing.T) {
		op, cancelOp := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancelOp()
		combined, cancel := CombineContext(context.Background(), op)
		defer cancel()

		_, ok := combined.Deadline()
		require.True(t, ok)
		<-combined.Done()
		assert.ErrorIs(t, combined.Err(), context.DeadlineExceeded)
	})

	t.Run("cancel func releases", func(t *testing.T) {
		combined, cancel := CombineContext(context.Background(), context.Background())
		cancel()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})
}

func TestDetach(t *testing.T) {
	type ctxKey string
	const key ctxKey = "k"

	parent, cancel := context.WithTimeout(context.WithValue(context.Background(), key, "v"), time.Millisecond)
	cancel()

	detached := Detach(parent)
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	_, ok := detached.Deadline()
	assert.False(t, ok)
	assert.Equal(t, "v", detached.Value(key))
}
