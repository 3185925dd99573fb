// Package catalog holds the cutoff table as an immutable snapshot that can be
// swapped atomically on reload.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"college-predictor/internal/models"
	"college-predictor/internal/utils"
)

// ErrNotLoaded is returned when a query arrives before the first successful load.
var ErrNotLoaded = errors.New("cutoff catalog not loaded")

// Snapshot is one immutable, fully loaded copy of the cutoff table.
type Snapshot struct {
	records    []models.Record
	categories []string
	branches   []string
	source     string
	loadedAt   time.Time
	version    uint64
}

// NewSnapshot copies records into a new snapshot.
func NewSnapshot(records []models.Record, source string) *Snapshot {
	owned := make([]models.Record, len(records))
	copy(owned, records)

	return &Snapshot{
		records:    owned,
		categories: uniqueSorted(owned, func(r models.Record) string { return strings.ToUpper(r.Category) }),
		branches:   uniqueSorted(owned, func(r models.Record) string { return r.Branch }),
		source:     source,
		loadedAt:   time.Now().UTC(),
	}
}

// Records returns the snapshot rows. Callers must not modify the slice.
func (s *Snapshot) Records() []models.Record { return s.records }

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.records) }

// Categories returns the sorted distinct categories, upper-cased.
func (s *Snapshot) Categories() []string { return append([]string(nil), s.categories...) }

// Branches returns the sorted distinct branch names.
func (s *Snapshot) Branches() []string { return append([]string(nil), s.branches...) }

// Source describes where the rows came from.
func (s *Snapshot) Source() string { return s.source }

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Version increments on every successful reload, starting at 1.
func (s *Snapshot) Version() uint64 { return s.version }

func uniqueSorted(records []models.Record, key func(models.Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Loader produces a complete, validated set of cutoff records.
type Loader interface {
	Load(ctx context.Context) ([]models.Record, error)
	Describe() string
}

// ReloadHook is called after each reload attempt.
type ReloadHook func(snap *Snapshot, err error, took time.Duration)

// Catalog owns the current snapshot. Reads are lock-free; reloads are
// serialized so versions stay monotonic.
type Catalog struct {
	loader  Loader
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	version uint64
	hooks   []ReloadHook
}

// New creates an empty catalog backed by loader.
func New(loader Loader, hooks ...ReloadHook) *Catalog {
	return &Catalog{loader: loader, hooks: hooks}
}

// Snapshot returns the current snapshot, or nil before the first load.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Current returns the current snapshot or ErrNotLoaded.
func (c *Catalog) Current() (*Snapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Reload loads a fresh table and swaps it in. On failure the previous
// snapshot stays active and the error is returned.
func (c *Catalog) Reload(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	logger := utils.GetLogger()

	records, err := c.loader.Load(ctx)
	if err != nil {
		took := time.Since(start)
		logger.Error("Cutoff reload failed, keeping previous snapshot",
			utils.String("source", c.loader.Describe()),
			utils.Error(err))
		c.notify(nil, err, took)
		return nil, fmt.Errorf("failed to load cutoffs from %s: %w", c.loader.Describe(), err)
	}

	snap := NewSnapshot(records, c.loader.Describe())
	c.version++
	snap.version = c.version
	c.current.Store(snap)

	took := time.Since(start)
	logger.Info("Cutoff snapshot loaded",
		utils.String("source", snap.source),
		utils.Int("records", snap.Len()),
		utils.Int("categories", len(snap.categories)),
		utils.Int64("version", int64(snap.version)),
		utils.Duration("took", took))
	c.notify(snap, nil, took)

	return snap, nil
}

// Swap installs records directly, bypassing the loader. It is the hook for
// tests and demos that build a catalog from in-memory rows; production code
// goes through Reload so the configured source stays authoritative.
func (c *Catalog) Swap(records []models.Record, source string) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := NewSnapshot(records, source)
	c.version++
	snap.version = c.version
	c.current.Store(snap)
	c.notify(snap, nil, 0)
	return snap
}

func (c *Catalog) notify(snap *Snapshot, err error, took time.Duration) {
	for _, h := range c.hooks {
		h(snap, err, took)
	}
}

// RunPeriodicReload reloads every interval until ctx is cancelled. Failures
// are logged and the previous snapshot is kept.
func (c *Catalog) RunPeriodicReload(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = c.Reload(ctx)
		}
	}
}
