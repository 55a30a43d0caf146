package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecuteKeepsOrder(t *testing.T) {
	var done atomic.Int32
	p := NewPool(3, func(_ context.Context, n int) (int, error) {
		if n == 4 {
			return 0, errors.New("four")
		}
		return n * n, nil
	}).OnDone(func(Task[int, int]) { done.Add(1) })

	tasks := p.Execute(context.Background(), []int{1, 2, 3, 4, 5})
	require.Len(t, tasks, 5)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Input)
	}
	assert.Equal(t, 9, tasks[2].Result)
	assert.EqualError(t, tasks[3].Err, "four")
	assert.EqualValues(t, 5, done.Load())
}

func TestPool_CancelledInputsCarryError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	p := NewPool(0, func(context.Context, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	tasks := p.Execute(ctx, []int{1, 2, 3})

	ran := 0
	for _, task := range tasks {
		if task.Err == nil {
			ran++
			continue
		}
		assert.ErrorIs(t, task.Err, context.Canceled)
	}
	// Some inputs may still be handed out while the cancellation races the send.
	assert.EqualValues(t, ran, calls.Load())
}
