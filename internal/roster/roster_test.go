package roster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
	"github.com/aanand-mishra/alumnos-api/internal/storage/memory"
	"github.com/aanand-mishra/alumnos-api/internal/types"
)

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: start}
	svc, err := New(memory.New(), DemoSeed(start),
		WithClock(clock),
		WithLogger(testLogger()),
	)
	require.NoError(t, err)
	return svc, clock
}

func input(email string) types.StudentInput {
	return types.StudentInput{
		FirstName: "Ana", LastName: "Ruiz", Email: email,
		Course: "Física", Level: "Básico",
	}
}

func ids(students []types.Student) []int64 {
	out := make([]int64, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func TestNew_LoadsSeed(t *testing.T) {
	svc, _ := newTestService(t)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))
	assert.False(t, all[2].Active)
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	svc, clock := newTestService(t)
	clock.Advance(time.Minute)

	first, err := svc.Create(input("ana@email.com"))
	require.NoError(t, err)
	second, err := svc.Create(input("eva@email.com"))
	require.NoError(t, err)

	assert.Equal(t, int64(4), first.ID)
	assert.Equal(t, int64(5), second.ID)
	assert.True(t, first.Active)
	assert.Equal(t, start.Add(time.Minute), first.RegisteredAt)
}

func TestCreate_DuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(input("maria@email.com"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdate_KeepsIdentityAndRegistration(t *testing.T) {
	svc, clock := newTestService(t)
	clock.Advance(10 * time.Minute)

	got, err := svc.Update(2, types.StudentPatch{Level: strPtr("Avanzado")})
	require.NoError(t, err)

	assert.Equal(t, int64(2), got.ID)
	assert.Equal(t, "Avanzado", got.Level)
	assert.Equal(t, "María", got.FirstName)
	assert.Equal(t, start, got.RegisteredAt)
}

func TestUpdate_AllowsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Update(2, types.StudentPatch{Email: strPtr("juan@email.com")})
	require.NoError(t, err)
	assert.Equal(t, "juan@email.com", got.Email)
}

func TestDelete_NotFoundAndNotRepeatable(t *testing.T) {
	svc, _ := newTestService(t)

	assert.ErrorIs(t, svc.Delete(99), apperr.ErrNotFound)

	require.NoError(t, svc.Delete(1))
	assert.ErrorIs(t, svc.Delete(1), apperr.ErrNotFound)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(all))
}

func TestActivateDeactivate(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Activate(3))
	require.NoError(t, svc.Deactivate(1))

	got, err := svc.Get(3)
	require.NoError(t, err)
	assert.True(t, got.Active)

	got, err = svc.Get(1)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, svc.Activate(99), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Deactivate(99), apperr.ErrNotFound)
}

func TestResetWindow_RestoresSeedOnNextOperation(t *testing.T) {
	svc, clock := newTestService(t)

	_, err := svc.Create(input("ana@email.com"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(1))
	_, err = svc.Update(2, types.StudentPatch{FirstName: strPtr("Mery")})
	require.NoError(t, err)

	clock.Advance(DefaultResetWindow + time.Second)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))
	assert.Equal(t, "María", all[1].FirstName)

	created, err := svc.Create(input("eva@email.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
}

func TestResetWindow_NotBeforeItElapses(t *testing.T) {
	svc, clock := newTestService(t)

	_, err := svc.Create(input("ana@email.com"))
	require.NoError(t, err)

	clock.Advance(DefaultResetWindow)

	reset, err := svc.EnsureFresh()
	require.NoError(t, err)
	assert.False(t, reset)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestEnsureFresh_IsIdempotent(t *testing.T) {
	svc, clock := newTestService(t)
	clock.Advance(DefaultResetWindow + time.Minute)

	reset, err := svc.EnsureFresh()
	require.NoError(t, err)
	assert.True(t, reset)

	reset, err = svc.EnsureFresh()
	require.NoError(t, err)
	assert.False(t, reset)
}

func TestReset_ExplicitRestartsWindow(t *testing.T) {
	svc, clock := newTestService(t)

	_, err := svc.Create(input("ana@email.com"))
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	at, err := svc.Reset()
	require.NoError(t, err)
	assert.Equal(t, start.Add(20*time.Minute), at)

	all, err := svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// 25 minutes after the explicit reset is 45 after startup, but
	// inside the new window: mutations must survive.
	_, err = svc.Create(input("eva@email.com"))
	require.NoError(t, err)
	clock.Advance(25 * time.Minute)

	all, err = svc.List(types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestInfo(t *testing.T) {
	svc, clock := newTestService(t)

	info, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, start, info.Now)
	assert.Equal(t, DefaultResetWindow, info.Window)
	assert.Equal(t, start, info.LastResetAt)
	assert.Equal(t, start.Add(DefaultResetWindow), info.NextResetAt)
	assert.Equal(t, 3, info.Count)

	clock.Advance(10 * time.Minute)
	info, err = svc.Info()
	require.NoError(t, err)
	assert.Equal(t, start.Add(10*time.Minute), info.Now)
}

func TestWithResetWindow(t *testing.T) {
	clock := &fakeClock{now: start}
	svc, err := New(memory.New(), DemoSeed(start),
		WithClock(clock), WithLogger(testLogger()), WithResetWindow(time.Minute))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(1))
	clock.Advance(61 * time.Second)

	got, err := svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Juan", got.FirstName)
}

func TestStatistics_InvariantsHoldAfterMutations(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(input("ana@email.com"))
	require.NoError(t, err)
	_, err = svc.Create(types.StudentInput{FirstName: "Eva", LastName: "Sanz", Email: "eva@email.com",
		Course: "Historia", Level: "Básico", Active: new(bool)})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(2))
	require.NoError(t, svc.Delete(1))
	require.NoError(t, svc.Activate(3))

	stats, err := svc.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, stats.Total, stats.Active+stats.Inactive)

	courseSum := 0
	for _, c := range stats.ByCourse {
		courseSum += c.Count
	}
	levelSum := 0
	for _, l := range stats.ByLevel {
		levelSum += l.Count
	}
	assert.Equal(t, stats.Total, courseSum)
	assert.Equal(t, stats.Total, levelSum)
}

func TestConcurrentCreates_GetDistinctIDs(t *testing.T) {
	svc, _ := newTestService(t)

	const n = 50
	var wg sync.WaitGroup
	idCh := make(chan int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := svc.Create(input(fmt.Sprintf("user%d@email.com", i)))
			if err == nil {
				idCh <- s.ID
			}
		}(i)
	}
	wg.Wait()
	close(idCh)

	seen := make(map[int64]bool)
	for id := range idCh {
		assert.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
		assert.GreaterOrEqual(t, id, int64(4))
		assert.LessOrEqual(t, id, int64(3+n))
	}
	assert.Len(t, seen, n)
}

// brokenStore fails every Replace.
type brokenStore struct {
	*memory.Memory
}

func (brokenStore) Replace([]types.Student, int64) error { return errors.New("disk full") }

func TestNew_FailedResetIsInternal(t *testing.T) {
	_, err := New(brokenStore{memory.New()}, DemoSeed(start),
		WithClock(&fakeClock{now: start}), WithLogger(testLogger()))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "disk full")
}
