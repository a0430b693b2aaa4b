package wishes

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a settable time.
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

// countingStore wraps MemoryStore and counts updates that started a new day.
type countingStore struct {
	*MemoryStore
	mu        sync.Mutex
	freshDays int
}

func (c *countingStore) Update(ctx context.Context, fn UpdateFunc) error {
	return c.MemoryStore.Update(ctx, func(prev State) (State, error) {
		next, err := fn(prev)
		if err == nil && prev.Date != next.Date {
			c.mu.Lock()
			c.freshDays++
			c.mu.Unlock()
		}
		return next, err
	})
}

func testList(t *testing.T, n int) List {
	t.Helper()
	items := make([]string, n)
	for i := range items {
		items[i] = string(rune('a' + i))
	}
	list, err := NewList(items)
	require.NoError(t, err)
	return list
}

func newTestSelector(t *testing.T, list List, store StateStore, clock *fakeClock, seed uint64) *Selector {
	t.Helper()
	return NewSelector(list, store, zerolog.New(io.Discard), SelectorOptions{
		Now:      clock.Now,
		Location: time.UTC,
		Rand:     rand.New(rand.NewPCG(seed, seed+1)),
	})
}

func assertDistinctFrom(t *testing.T, list List, got []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, w := range got {
		assert.True(t, list.Contains(w), "wish %q not in list", w)
		assert.False(t, seen[w], "duplicate wish %q", w)
		seen[w] = true
	}
}

func TestSelector_FreshDrawBounds(t *testing.T) {
	for _, size := range []int{3, 4, 10} {
		list := testList(t, size)
		clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
		sel := newTestSelector(t, list, NewMemoryStore(), clock, uint64(size))

		sizes := map[int]int{}
		for day := 0; day < 200; day++ {
			got, err := sel.Select(context.Background())
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(got), 1)
			require.LessOrEqual(t, len(got), MaxPerDraw)
			assertDistinctFrom(t, list, got)
			sizes[len(got)]++

			clock.Advance(24 * time.Hour)
		}

		// Every size in {1,2,3} shows up over 200 independent fresh days.
		assert.Len(t, sizes, 3, "list size %d: sizes seen %v", size, sizes)
	}
}

func TestSelector_SecondDrawSameDayReturnsThree(t *testing.T) {
	list := testList(t, 8)
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	sel := newTestSelector(t, list, NewMemoryStore(), clock, 7)

	first, err := sel.Select(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(first), 1)
	assert.LessOrEqual(t, len(first), MaxPerDraw)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Hour)
		got, err := sel.Select(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, MaxPerDraw)
		assertDistinctFrom(t, list, got)
	}
}

func TestSelector_NewDayIsFreshAgain(t *testing.T) {
	list := testList(t, 5)
	store := &countingStore{MemoryStore: NewMemoryStore()}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)}
	sel := newTestSelector(t, list, store, clock, 11)

	_, err := sel.Select(context.Background())
	require.NoError(t, err)
	_, err = sel.Select(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Hour) // past midnight

	_, err = sel.Select(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, store.freshDays)

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", st.Date)
}

func TestSelector_DayBoundaryUsesLocation(t *testing.T) {
	list := testList(t, 5)
	store := NewMemoryStore()
	tokyo := time.FixedZone("JST", 9*60*60)
	clock := &fakeClock{now: time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)}

	sel := NewSelector(list, store, zerolog.New(io.Discard), SelectorOptions{
		Now:      clock.Now,
		Location: tokyo,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	})

	_, err := sel.Select(context.Background())
	require.NoError(t, err)

	st, _ := store.Load(context.Background())
	assert.Equal(t, "2024-05-02", st.Date)
}

// The exhausted-state draw ignores what was already sent today, so repeats
// are possible. With a list of exactly three, the second draw always repeats
// everything from the first.
func TestSelector_ExhaustedDrawDoesNotExcludeRecordedItems(t *testing.T) {
	list := testList(t, 3)
	store := NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	sel := newTestSelector(t, list, store, clock, 3)

	first, err := sel.Select(context.Background())
	require.NoError(t, err)

	st, _ := store.Load(context.Background())
	assert.ElementsMatch(t, first, st.Items)

	second, err := sel.Select(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 3)

	for _, w := range first {
		assert.Contains(t, second, w)
	}
}

func TestSelector_ConcurrentCallsStartOneDay(t *testing.T) {
	list := testList(t, 6)
	store := &countingStore{MemoryStore: NewMemoryStore()}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	sel := newTestSelector(t, list, store, clock, 5)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sel.Select(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.freshDays)
}

func TestSample_FailsWhenListTooShort(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 1))

	_, err := sample(rnd, []string{"a", "b"}, 3)
	require.ErrorIs(t, err, ErrTooFewWishes)

	got, err := sample(rnd, []string{"a", "b", "c"}, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	rnd := rand.New(rand.NewPCG(9, 9))

	_, err := sample(rnd, items, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}

func TestMemoryStore_UpdateErrorKeepsState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, State{Date: "2024-05-01", Items: []string{"a"}}))

	err := store.Update(ctx, func(State) (State, error) {
		return State{Date: "2024-05-02"}, ErrTooFewWishes
	})
	require.ErrorIs(t, err, ErrTooFewWishes)

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{Date: "2024-05-01", Items: []string{"a"}}, st)
}
