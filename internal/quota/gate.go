// Package quota enforces the per-day generation budget. The counter rolls
// over lazily on the first check of a new calendar day; there is no
// background timer.
package quota

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"locobot/internal/logging"
)

// DailyLimit is the number of generations admitted per calendar day.
const DailyLimit = 1000

// Storage keys. Two keys only: last-usage date and daily count.
const (
	keyLastUsageDate = "locobot_last_usage_date"
	keyDailyCount    = "locobot_daily_count"
)

// Clock returns the current time. Injected so tests can simulate day
// rollovers without real time passing.
type Clock func() time.Time

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed bool
	Message string // set on denial
}

// Gate tracks the per-day request budget against a durable Store.
//
// A nil store disables enforcement entirely and every check admits. This is
// the documented escape hatch for environments with no durable storage, not
// a bug.
type Gate struct {
	mu    sync.Mutex
	store Store
	limit int
	now   Clock
}

// NewGate creates a quota gate over the given store. A zero or negative
// limit falls back to DailyLimit.
func NewGate(store Store, limit int, now Clock) *Gate {
	if limit <= 0 {
		limit = DailyLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{store: store, limit: limit, now: now}
}

// CheckAndConsume admits or denies one generation. The read-modify-write is
// performed under the gate's lock so two concurrent callers cannot both pass
// the check when only one slot remains. Exactly one persisted count write
// happens per admission; a denial writes nothing beyond the possible
// day-rollover reset.
func (g *Gate) CheckAndConsume() (Decision, error) {
	if g.store == nil {
		return Decision{Allowed: true}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().Format("Mon Jan 2 2006")

	lastDate, _, err := g.store.Get(keyLastUsageDate)
	if err != nil {
		return Decision{}, err
	}

	count := 0
	if raw, ok, err := g.store.Get(keyDailyCount); err != nil {
		return Decision{}, err
	} else if ok {
		count, _ = strconv.Atoi(raw)
	}

	if lastDate != today {
		count = 0
		if err := g.store.Set(keyLastUsageDate, today); err != nil {
			return Decision{}, err
		}
		if err := g.store.Set(keyDailyCount, "0"); err != nil {
			return Decision{}, err
		}
		logging.Quota("Day rollover: counter reset for %s", today)
	}

	if count >= g.limit {
		logging.Quota("Denied: %d/%d generations used", count, g.limit)
		return Decision{
			Allowed: false,
			Message: fmt.Sprintf("DAILY LIMIT REACHED: You have used %d/%d generations today. Quota resets at midnight.", count, g.limit),
		}, nil
	}

	if err := g.store.Set(keyDailyCount, strconv.Itoa(count+1)); err != nil {
		return Decision{}, err
	}
	logging.QuotaDebug("Admitted: %d/%d generations used", count+1, g.limit)
	return Decision{Allowed: true}, nil
}

// Remaining reports the unused budget for today without consuming a slot.
func (g *Gate) Remaining() (int, error) {
	if g.store == nil {
		return g.limit, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().Format("Mon Jan 2 2006")
	lastDate, _, err := g.store.Get(keyLastUsageDate)
	if err != nil {
		return 0, err
	}
	if lastDate != today {
		return g.limit, nil
	}

	count := 0
	if raw, ok, err := g.store.Get(keyDailyCount); err != nil {
		return 0, err
	} else if ok {
		count, _ = strconv.Atoi(raw)
	}

	remaining := g.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
