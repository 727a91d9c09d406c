package simbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/etnz/simbooks/date"
	"go.uber.org/zap"
)

// BlobStore persists the price cache as a single blob.
// There are no partial updates: the whole blob is loaded and saved at once.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}

// PriceRef identifies a resource kind at a quality grade.
type PriceRef struct {
	Kind    int
	Quality int
}

// Key returns the cache key of r, "kind:quality".
func (r PriceRef) Key() string { return fmt.Sprintf("%d:%d", r.Kind, r.Quality) }

// CacheKeys are the three days involved in one valuation run.
//
// Prices are requested as of AsOf, the last completed financial day, but they
// are recorded under Write, the current financial day: an entry records the
// value fetched that day, not the day the value applies to. Lookups read the
// Read day, which therefore holds prices as of the day before.
type CacheKeys struct {
	Read  date.Date
	Write date.Date
	AsOf  date.Date
}

// CacheKeysAt returns the cache keys for a run at now.
func CacheKeysAt(now time.Time) CacheKeys {
	today := date.FinancialDay(now)
	return CacheKeys{Read: today, Write: today, AsOf: today.Add(-1)}
}

// PriceCache memoizes reference prices per day and per PriceRef key.
//
// Once written, a day entry is never overwritten. PriceCache is safe for
// concurrent use.
type PriceCache struct {
	mu    sync.Mutex
	days  map[date.Date]map[string]float64
	dirty bool
}

// NewPriceCache returns an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{days: make(map[date.Date]map[string]float64)}
}

// Lookup returns the price recorded under the day read for key.
func (c *PriceCache) Lookup(read date.Date, key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.days[read][key]
	return p, ok
}

// Record stores price for key under the day write. It reports false, and
// keeps the existing value, when that entry was already written.
func (c *PriceCache) Record(write date.Date, key string, price float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.days == nil {
		c.days = make(map[date.Date]map[string]float64)
	}
	day := c.days[write]
	if day == nil {
		day = make(map[string]float64)
		c.days[write] = day
	}
	if _, exists := day[key]; exists {
		return false
	}
	day[key] = price
	c.dirty = true
	return true
}

// Days returns the days with recorded prices, oldest first.
func (c *PriceCache) Days() []date.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	days := make([]date.Date, 0, len(c.days))
	for d := range c.days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Entries returns a copy of the prices recorded under day.
func (c *PriceCache) Entries(day date.Date) map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64, len(c.days[day]))
	for k, v := range c.days[day] {
		out[k] = v
	}
	return out
}

// Dirty reports whether something was recorded since the cache was loaded.
func (c *PriceCache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// MarshalJSON encodes the cache as {"YYYY-MM-DD": {"kind:quality": price}}.
func (c *PriceCache) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.Marshal(c.days)
}

// UnmarshalJSON decodes a cache blob, replacing the content of c.
func (c *PriceCache) UnmarshalJSON(b []byte) error {
	days := make(map[date.Date]map[string]float64)
	if err := json.Unmarshal(b, &days); err != nil {
		return err
	}
	// a null blob or null day decodes to nil maps
	if days == nil {
		days = make(map[date.Date]map[string]float64)
	}
	for d, entries := range days {
		if entries == nil {
			delete(days, d)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = days
	c.dirty = false
	return nil
}

// LoadPriceCache reads the cache from s.
//
// Failures are never fatal: an unreadable or corrupted blob yields an empty
// cache and a warning.
func LoadPriceCache(ctx context.Context, s BlobStore, l *zap.Logger) *PriceCache {
	if l == nil {
		l = zap.NewNop()
	}
	c := NewPriceCache()
	if s == nil {
		return c
	}
	blob, err := s.Load(ctx)
	if err != nil {
		l.Warn("price cache unreadable, starting empty", zap.Error(err))
		return c
	}
	if len(blob) == 0 {
		return c
	}
	if err := json.Unmarshal(blob, c); err != nil {
		l.Warn("price cache corrupted, starting empty", zap.Error(err))
		return NewPriceCache()
	}
	return c
}

// SavePriceCache writes c to s when it changed. Failures are logged and dropped.
func SavePriceCache(ctx context.Context, s BlobStore, c *PriceCache, l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	if s == nil || c == nil || !c.Dirty() {
		return
	}
	blob, err := json.Marshal(c)
	if err != nil {
		l.Warn("price cache not saved", zap.Error(err))
		return
	}
	if err := s.Save(ctx, blob); err != nil {
		l.Warn("price cache not saved", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}
