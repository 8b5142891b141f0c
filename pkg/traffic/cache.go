// Package traffic serves historical traffic queries, choosing an
// aggregation bucket from the requested span and memoizing results.
package traffic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/models"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidRange = errors.New("end must be after start")

const (
	rawSpan    = 48 * time.Hour
	weekSpan   = 7 * 24 * time.Hour
	hourlySpan = 300 * 24 * time.Hour
)

// BucketFor picks the aggregation width for a query span. Zero means raw
// samples.
func BucketFor(span time.Duration) time.Duration {
	switch {
	case span < rawSpan:
		return 0
	case span <= weekSpan:
		return 10 * time.Minute
	case span <= hourlySpan:
		return time.Hour
	default:
		return 6 * time.Hour
	}
}

// Result is a possibly memoized query answer.
type Result struct {
	Bucket  time.Duration          `json:"-"`
	Samples []models.TrafficSample `json:"samples"`
	Cached  bool                   `json:"cached"`
}

// StatsRecorder receives cache hit/miss events.
type StatsRecorder interface {
	CacheHit()
	CacheMiss()
}

type nopStats struct{}

func (nopStats) CacheHit()  {}
func (nopStats) CacheMiss() {}

// Cache memoizes QueryTraffic results for a fixed TTL. Entries are never
// invalidated early, so a result can lag new samples by up to the TTL.
type Cache struct {
	db      db.Service
	cache   *gocache.Cache
	group   singleflight.Group
	stats   StatsRecorder
	rawGrid time.Duration
}

func NewCache(store db.Service, ttl time.Duration, stats StatsRecorder) *Cache {
	if stats == nil {
		stats = nopStats{}
	}

	return &Cache{
		db:      store,
		cache:   gocache.New(ttl, 2*ttl),
		stats:   stats,
		rawGrid: max(ttl.Truncate(time.Second), time.Second),
	}
}

func cacheKey(deviceID int64, iface string, start, end time.Time, bucket time.Duration) string {
	return fmt.Sprintf("%d|%s|%d|%d|%d", deviceID, iface, start.Unix(), end.Unix(), int64(bucket/time.Second))
}

// align widens [start, end) onto the grid results are memoized on: the
// bucket width, or the TTL for raw queries. A rolling "last N" window
// keeps one key until end crosses the next grid line.
func (c *Cache) align(start, end time.Time) (time.Time, time.Time, time.Duration) {
	bucket := BucketFor(end.Sub(start))

	grid := bucket
	if grid == 0 {
		grid = c.rawGrid
	}

	start = start.Truncate(grid)

	if floor := end.Truncate(grid); floor.Before(end) {
		end = floor.Add(grid)
	}

	return start, end, bucket
}

// Query returns samples of one series between start and end, aggregated
// by the bucket BucketFor picks. The range is aligned outward to the
// memoization grid before the store is read.
func (c *Cache) Query(ctx context.Context, deviceID int64, iface string, start, end time.Time) (*Result, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	start, end, bucket := c.align(start, end)
	key := cacheKey(deviceID, iface, start, end, bucket)

	if v, ok := c.cache.Get(key); ok {
		c.stats.CacheHit()

		res := *v.(*Result)
		res.Cached = true

		return &res, nil
	}

	c.stats.CacheMiss()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		samples, err := c.db.QueryTraffic(ctx, models.TrafficQuery{
			DeviceID:  deviceID,
			Interface: iface,
			Start:     start,
			End:       end,
			Bucket:    bucket,
		})
		if err != nil {
			return nil, err
		}

		res := &Result{Bucket: bucket, Samples: samples}
		c.cache.SetDefault(key, res)

		return res, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query traffic: %w", err)
	}

	res := *v.(*Result)

	return &res, nil
}

// Len reports the number of memoized results, expired ones included until
// the janitor runs.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
