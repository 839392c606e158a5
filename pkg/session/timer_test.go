package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/claritydental/walkout/pkg/session"
)

func TestTimer_TicksWhileRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	timer := session.NewTimer(session.WithTickInterval(2 * time.Millisecond))
	timer.Start()
	time.Sleep(30 * time.Millisecond)

	assert.Greater(t, timer.Elapsed(), time.Duration(0))

	rec, ok := timer.Stop()
	require.True(t, ok)
	assert.Greater(t, rec.Elapsed, time.Duration(0))
	assert.True(t, rec.StoppedAt.After(rec.StartedAt) || rec.StoppedAt.Equal(rec.StartedAt))
}

func TestTimer_StopSealsAndResets(t *testing.T) {
	defer goleak.VerifyNone(t)

	timer := session.NewTimer(session.WithTickInterval(2 * time.Millisecond))

	timer.Start()
	time.Sleep(10 * time.Millisecond)
	first, ok := timer.Stop()
	require.True(t, ok)

	assert.Equal(t, time.Duration(0), timer.Elapsed(), "the live counter resets on stop")
	assert.False(t, timer.Running())

	timer.Start()
	time.Sleep(10 * time.Millisecond)
	second, ok := timer.Stop()
	require.True(t, ok)

	history := timer.History()
	require.Len(t, history, 2)
	assert.Equal(t, first, history[0], "sealed records never change")
	assert.Equal(t, second, history[1])
	assert.Equal(t, first.Elapsed+second.Elapsed, timer.Total())
}

func TestTimer_StopWhenStoppedIsANoOp(t *testing.T) {
	defer goleak.VerifyNone(t)

	timer := session.NewTimer()
	_, ok := timer.Stop()
	assert.False(t, ok)
	assert.Empty(t, timer.History())
}

func TestTimer_DoubleStartKeepsOneGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	timer := session.NewTimer(session.WithTickInterval(2 * time.Millisecond))
	timer.Start()
	timer.Start()

	_, ok := timer.Stop()
	assert.True(t, ok)
}
