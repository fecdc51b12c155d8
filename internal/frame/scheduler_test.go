package frame_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/salaryrace/salaryrace-go/internal/frame"
	"github.com/salaryrace/salaryrace-go/internal/frame/frametest"
)

var t0 = time.Date(2026, 2, 17, 9, 0, 0, 0, time.UTC)

func recv(t *testing.T, ch <-chan time.Time) time.Time {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for frame")
	}
	return time.Time{}
}

func TestEvery_CallsOnEachTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := frametest.NewClock(t0)
	s := frame.NewScheduler(clk)
	frames := make(chan time.Time, 4)

	task := s.Every(context.Background(), 16*time.Millisecond, func(now time.Time) { frames <- now })
	clk.BlockUntil(1)

	clk.Advance(16 * time.Millisecond)
	assert.Equal(t, t0.Add(16*time.Millisecond), recv(t, frames))
	clk.Advance(16 * time.Millisecond)
	assert.Equal(t, t0.Add(32*time.Millisecond), recv(t, frames))

	task.Cancel()
	clk.Advance(time.Second)
	assert.Empty(t, frames)
	assert.Zero(t, clk.Waiters(), "ticker must be stopped on cancel")
}

func TestEvery_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	s := frame.NewScheduler(frametest.NewClock(t0))
	task := s.Every(ctx, time.Second, func(time.Time) {})

	cancel()
	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task did not stop after context cancellation")
	}
	task.Cancel() // idempotent after ctx cancellation
}

func TestEvery_RealClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := frame.NewScheduler(nil)
	frames := make(chan time.Time, 1)
	task := s.Every(context.Background(), 5*time.Millisecond, func(now time.Time) {
		select {
		case frames <- now:
		default:
		}
	})
	defer task.Cancel()

	first := recv(t, frames)
	second := recv(t, frames)
	assert.True(t, second.After(first))
}

func TestEvery_DefaultInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := frametest.NewClock(t0)
	frames := make(chan time.Time, 1)
	task := frame.NewScheduler(clk).Every(context.Background(), 0, func(now time.Time) { frames <- now })
	defer task.Cancel()

	clk.BlockUntil(1)
	clk.Advance(frame.DefaultInterval)
	assert.Equal(t, t0.Add(frame.DefaultInterval), recv(t, frames))
}
