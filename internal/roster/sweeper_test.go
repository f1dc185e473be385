package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/alumnos-api/internal/types"
)

func TestSweeper_RollsBackIdleRoster(t *testing.T) {
	svc, clock := newTestService(t)

	sw, err := NewSweeper(svc, "@every 1m", testLogger())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(1))

	sw.Sweep()
	info, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Count)

	clock.Advance(DefaultResetWindow + time.Second)
	sw.Sweep()

	svc.mu.Lock()
	last := svc.lastResetAt
	svc.mu.Unlock()
	assert.Equal(t, start.Add(DefaultResetWindow+time.Second), last)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNewSweeper_RejectsBadSpec(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := NewSweeper(svc, "every now and then", testLogger())
	assert.Error(t, err)
}

func TestSweeper_StartStop(t *testing.T) {
	svc, _ := newTestService(t)

	sw, err := NewSweeper(svc, "@every 1h", testLogger())
	require.NoError(t, err)

	sw.Start()
	sw.Stop()
}
