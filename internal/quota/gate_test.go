package quota

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestGate_AdmitsAndIncrements(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	gate := NewGate(store, 3, fixedClock(day))

	for i := 1; i <= 3; i++ {
		dec, err := gate.CheckAndConsume()
		require.NoError(t, err)
		assert.True(t, dec.Allowed, "check %d should admit", i)

		raw, ok, err := store.Get(keyDailyCount)
		require.NoError(t, err)
		require.True(t, ok)
		count, _ := strconv.Atoi(raw)
		assert.Equal(t, i, count)
	}
}

func TestGate_DeniesAtLimitWithoutWrite(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	gate := NewGate(store, 2, fixedClock(day))

	for i := 0; i < 2; i++ {
		dec, err := gate.CheckAndConsume()
		require.NoError(t, err)
		require.True(t, dec.Allowed)
	}

	dec, err := gate.CheckAndConsume()
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Contains(t, dec.Message, "2/2")
	assert.Contains(t, dec.Message, "midnight")

	// Denial must not advance the counter.
	raw, _, err := store.Get(keyDailyCount)
	require.NoError(t, err)
	count, _ := strconv.Atoi(raw)
	assert.Equal(t, 2, count)
}

func TestGate_DayRolloverResetsOnce(t *testing.T) {
	store := NewMemoryStore()
	day1 := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 0, 30, 0, 0, time.UTC)

	gate := NewGate(store, 2, fixedClock(day1))
	for i := 0; i < 2; i++ {
		dec, err := gate.CheckAndConsume()
		require.NoError(t, err)
		require.True(t, dec.Allowed)
	}
	dec, err := gate.CheckAndConsume()
	require.NoError(t, err)
	require.False(t, dec.Allowed, "budget exhausted on day 1")

	// New calendar day: counter resets before evaluating, then consumes.
	gate = NewGate(store, 2, fixedClock(day2))
	dec, err = gate.CheckAndConsume()
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	raw, _, err := store.Get(keyDailyCount)
	require.NoError(t, err)
	count, _ := strconv.Atoi(raw)
	assert.Equal(t, 1, count)

	date, _, err := store.Get(keyLastUsageDate)
	require.NoError(t, err)
	assert.Equal(t, day2.Format("Mon Jan 2 2006"), date)
}

func TestGate_NilStoreAlwaysAdmits(t *testing.T) {
	gate := NewGate(nil, 1, nil)
	for i := 0; i < 10; i++ {
		dec, err := gate.CheckAndConsume()
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
	}
}

func TestGate_Remaining(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	gate := NewGate(store, 5, fixedClock(day))

	remaining, err := gate.Remaining()
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	_, err = gate.CheckAndConsume()
	require.NoError(t, err)

	remaining, err = gate.Remaining()
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locobot.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(keyDailyCount, "7"))
	require.NoError(t, store.Close())

	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	raw, ok, err := store.Get(keyDailyCount)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7", raw)

	_, ok, err = store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
