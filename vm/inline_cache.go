package vm

// Inline caching for operator dispatch
//
// Each call site of the (external) interpreter owns one InlineCache. The
// cache remembers the dispatch plans it resolved, guarded by the operand
// types and their slot-table versions:
// - most sites only ever see one pair of operand types (monomorphic)
// - some see a handful (polymorphic, up to MaxPICEntries)
// - a few see many; those stop caching (megamorphic)
//
// A cold, evicted or megamorphic cache resolves exactly as an uncached
// operation does, because both go through the same resolver.

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// CacheState represents the current state of an inline cache.
type CacheState uint8

const (
	CacheEmpty       CacheState = iota // No cached plan yet
	CacheMonomorphic                   // One guard cached
	CachePolymorphic                   // 2..limit guards cached
	CacheMegamorphic                   // Too many guards, always resolve
)

func (s CacheState) String() string {
	switch s {
	case CacheMonomorphic:
		return "monomorphic"
	case CachePolymorphic:
		return "polymorphic"
	case CacheMegamorphic:
		return "megamorphic"
	}
	return "empty"
}

// CacheMode is the caching policy of a runtime.
type CacheMode uint8

const (
	// CachePolymorphicMode keeps up to MaxCacheEntries guards per site.
	CachePolymorphicMode CacheMode = iota
	// CacheMonomorphicMode keeps one guard and replaces it on a miss.
	CacheMonomorphicMode
	// CacheOffMode never caches.
	CacheOffMode
)

func (m CacheMode) String() string {
	switch m {
	case CacheMonomorphicMode:
		return "monomorphic"
	case CacheOffMode:
		return "off"
	}
	return "polymorphic"
}

// ParseCacheMode parses the names returned by CacheMode.String.
func ParseCacheMode(s string) (CacheMode, error) {
	switch strings.ToLower(s) {
	case "", "polymorphic", "poly":
		return CachePolymorphicMode, nil
	case "monomorphic", "mono":
		return CacheMonomorphicMode, nil
	case "off", "none":
		return CacheOffMode, nil
	}
	return 0, fmt.Errorf("unknown cache mode %q", s)
}

// MaxPICEntries is the maximum number of entries in a polymorphic inline cache.
const MaxPICEntries = 6

// cacheEntry is one guarded plan. A nil second type means a unary guard.
type cacheEntry struct {
	types    [2]*Type
	versions [2]uint64
	plan     any // *unaryPlan or *binaryPlan
}

func (e *cacheEntry) matches(vt, wt *Type) bool {
	if e.types[0] != vt || e.types[1] != wt {
		return false
	}
	if e.versions[0] != vt.Version() {
		return false
	}
	return wt == nil || e.versions[1] == wt.Version()
}

// cacheSnapshot is immutable once published.
type cacheSnapshot struct {
	state   CacheState
	entries []cacheEntry
}

var emptySnapshot = &cacheSnapshot{state: CacheEmpty}

// InlineCache is the cache of a single call site. Lookups and updates
// are lock-free: a site's guards and plans are swapped as one snapshot.
type InlineCache struct {
	snap  atomic.Pointer[cacheSnapshot]
	limit int
	mode  CacheMode

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newInlineCache(mode CacheMode, limit int) *InlineCache {
	ic := &InlineCache{mode: mode, limit: limit}
	ic.snap.Store(emptySnapshot)
	return ic
}

// lookup returns the cached plan for the operand types, or nil.
func (ic *InlineCache) lookup(vt, wt *Type) any {
	s := ic.snap.Load()
	if s.state != CacheMegamorphic {
		for i := range s.entries {
			if s.entries[i].matches(vt, wt) {
				ic.hits.Add(1)
				return s.entries[i].plan
			}
		}
	}
	ic.misses.Add(1)
	return nil
}

// update records a freshly resolved plan and reports the state change.
// Entries for the same types with stale versions are replaced.
func (ic *InlineCache) update(e cacheEntry) (from, to CacheState) {
	if ic.mode == CacheOffMode {
		return CacheEmpty, CacheEmpty
	}
	for {
		old := ic.snap.Load()
		if old.state == CacheMegamorphic {
			return old.state, old.state
		}

		entries := make([]cacheEntry, 0, len(old.entries)+1)
		for _, x := range old.entries {
			if x.types != e.types {
				entries = append(entries, x)
			}
		}
		next := &cacheSnapshot{}
		switch {
		case ic.limit <= 1:
			next.entries = []cacheEntry{e}
		case len(entries) >= ic.limit:
			next.state = CacheMegamorphic
		default:
			next.entries = append(entries, e)
		}
		switch {
		case next.state == CacheMegamorphic:
		case len(next.entries) == 1:
			next.state = CacheMonomorphic
		default:
			next.state = CachePolymorphic
		}

		if ic.snap.CompareAndSwap(old, next) {
			return old.state, next.state
		}
	}
}

// State returns the current state.
func (ic *InlineCache) State() CacheState { return ic.snap.Load().state }

// Count returns the number of cached guards.
func (ic *InlineCache) Count() int { return len(ic.snap.Load().entries) }

// Hits returns the number of lookups answered from the cache.
func (ic *InlineCache) Hits() uint64 { return ic.hits.Load() }

// Misses returns the number of lookups that had to resolve.
func (ic *InlineCache) Misses() uint64 { return ic.misses.Load() }

// HitRate returns the cache hit rate as a percentage (0-100).
func (ic *InlineCache) HitRate() float64 {
	hits, misses := ic.Hits(), ic.Misses()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) * 100 / float64(total)
}

// Reset clears the cache back to empty state.
func (ic *InlineCache) Reset() {
	ic.snap.Store(emptySnapshot)
	ic.hits.Store(0)
	ic.misses.Store(0)
}

// ---------------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------------

// CacheStats holds aggregate inline cache statistics.
type CacheStats struct {
	TotalCallSites  int     // Total number of call sites with caches
	Monomorphic     int     // Call sites in monomorphic state
	Polymorphic     int     // Call sites in polymorphic state
	Megamorphic     int     // Call sites in megamorphic state
	Empty           int     // Call sites never used
	TotalHits       uint64  // Total cache hits
	TotalMisses     uint64  // Total cache misses
	HitRate         float64 // Overall hit rate percentage
	MonomorphicRate float64 // Percentage of used call sites that are monomorphic
}

func (s *CacheStats) add(ic *InlineCache) {
	s.TotalCallSites++
	switch ic.State() {
	case CacheMonomorphic:
		s.Monomorphic++
	case CachePolymorphic:
		s.Polymorphic++
	case CacheMegamorphic:
		s.Megamorphic++
	case CacheEmpty:
		s.Empty++
	}
	s.TotalHits += ic.Hits()
	s.TotalMisses += ic.Misses()
}

func (s *CacheStats) finish() {
	total := s.TotalHits + s.TotalMisses
	if total > 0 {
		s.HitRate = float64(s.TotalHits) * 100 / float64(total)
	}
	nonEmpty := s.TotalCallSites - s.Empty
	if nonEmpty > 0 {
		s.MonomorphicRate = float64(s.Monomorphic) * 100 / float64(nonEmpty)
	}
}
