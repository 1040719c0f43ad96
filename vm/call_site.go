package vm

import (
	"sort"
	"sync"
)

// UnaryCallSite dispatches one unary operator through an inline cache.
type UnaryCallSite struct {
	id    int
	op    Op
	rt    *Runtime
	cache *InlineCache
}

// Op returns the operator dispatched by the site.
func (s *UnaryCallSite) Op() Op { return s.op }

// Cache returns the site's inline cache.
func (s *UnaryCallSite) Cache() *InlineCache { return s.cache }

// Call applies the operator to v.
func (s *UnaryCallSite) Call(v Value) (Value, error) {
	t := v.Type()
	if p, ok := s.cache.lookup(t, nil).(*unaryPlan); ok {
		return p.call(s.rt, v)
	}
	version := t.Version()
	p := resolveUnary(s.op, t)
	from, to := s.cache.update(cacheEntry{
		types:    [2]*Type{t, nil},
		versions: [2]uint64{version, 0},
		plan:     p,
	})
	s.rt.logTransition(s.id, s.op, from, to)
	return p.call(s.rt, v)
}

// BinaryCallSite dispatches one binary operator through an inline cache.
type BinaryCallSite struct {
	id    int
	op    Op
	rt    *Runtime
	cache *InlineCache
}

// Op returns the operator dispatched by the site.
func (s *BinaryCallSite) Op() Op { return s.op }

// Cache returns the site's inline cache.
func (s *BinaryCallSite) Cache() *InlineCache { return s.cache }

// Call applies the operator to v and w.
func (s *BinaryCallSite) Call(v, w Value) (Value, error) {
	vt, wt := v.Type(), w.Type()
	if p, ok := s.cache.lookup(vt, wt).(*binaryPlan); ok {
		return p.call(s.rt, v, w, None)
	}
	vv, wv := vt.Version(), wt.Version()
	p := resolveBinary(s.op, vt, wt)
	from, to := s.cache.update(cacheEntry{
		types:    [2]*Type{vt, wt},
		versions: [2]uint64{vv, wv},
		plan:     p,
	})
	s.rt.logTransition(s.id, s.op, from, to)
	return p.call(s.rt, v, w, None)
}

func (rt *Runtime) logTransition(id int, op Op, from, to CacheState) {
	if from != to {
		rt.logs.cache.Debugf("site %d (%s): %s -> %s", id, op.Name(), from, to)
	}
}

// ---------------------------------------------------------------------------
// CallSiteTable
// ---------------------------------------------------------------------------

type callSite interface {
	Op() Op
	Cache() *InlineCache
}

// CallSiteTable owns the call sites of a runtime, keyed by an id the
// interpreter assigns (a bytecode offset, an AST node number).
// It's thread-safe for concurrent access.
type CallSiteTable struct {
	rt    *Runtime
	mu    sync.Mutex
	sites map[int]callSite
}

// NewCallSiteTable creates an empty table dispatching through rt.
func NewCallSiteTable(rt *Runtime) *CallSiteTable {
	return &CallSiteTable{rt: rt, sites: make(map[int]callSite)}
}

func (t *CallSiteTable) newCache() *InlineCache {
	return newInlineCache(t.rt.opts.CacheMode, t.rt.opts.MaxCacheEntries)
}

// Unary returns the unary site with this id, creating it if needed.
// It panics if id is already used by a site of another kind or operator.
func (t *CallSiteTable) Unary(id int, op Op) *UnaryCallSite {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sites[id]; ok {
		us, isUnary := s.(*UnaryCallSite)
		if !isUnary || us.op != op {
			panic("vm: call site reused for a different operation")
		}
		return us
	}
	s := &UnaryCallSite{id: id, op: op, rt: t.rt, cache: t.newCache()}
	t.sites[id] = s
	return s
}

// Binary returns the binary site with this id, creating it if needed.
// It panics if id is already used by a site of another kind or operator.
func (t *CallSiteTable) Binary(id int, op Op) *BinaryCallSite {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sites[id]; ok {
		bs, isBinary := s.(*BinaryCallSite)
		if !isBinary || bs.op != op {
			panic("vm: call site reused for a different operation")
		}
		return bs
	}
	s := &BinaryCallSite{id: id, op: op, rt: t.rt, cache: t.newCache()}
	t.sites[id] = s
	return s
}

// Len returns the number of sites.
func (t *CallSiteTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sites)
}

// IDs returns the site ids, sorted.
func (t *CallSiteTable) IDs() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int, 0, len(t.sites))
	for id := range t.sites {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stats returns aggregate statistics for all sites.
func (t *CallSiteTable) Stats() CacheStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	var stats CacheStats
	for _, s := range t.sites {
		stats.add(s.Cache())
	}
	stats.finish()
	return stats
}

// Reset clears every site's cache.
func (t *CallSiteTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.sites {
		s.Cache().Reset()
	}
}
