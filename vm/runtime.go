package vm

import (
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// Options configures a Runtime.
type Options struct {
	// Name labels the runtime in logs and snapshots.
	Name string

	// CacheMode selects the call-site cache policy.
	CacheMode CacheMode

	// MaxCacheEntries bounds a polymorphic call site before it goes
	// megamorphic. Zero means MaxPICEntries.
	MaxCacheEntries int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Name: "dunder", CacheMode: CachePolymorphicMode, MaxCacheEntries: MaxPICEntries}
}

type loggers struct {
	types commonlog.Logger
	slots commonlog.Logger
	cache commonlog.Logger
}

// Runtime is one object-model instance: a registry of types plus the
// call-site caches that dispatch against them. Built-in types are shared
// by all runtimes and are immutable.
type Runtime struct {
	id    uuid.UUID
	opts  Options
	types *TypeTable
	sites *CallSiteTable
	logs  loggers
}

// NewRuntime creates a runtime with the built-in types registered.
func NewRuntime(opts Options) *Runtime {
	if opts.Name == "" {
		opts.Name = "dunder"
	}
	if opts.MaxCacheEntries <= 0 || opts.MaxCacheEntries > MaxPICEntries {
		opts.MaxCacheEntries = MaxPICEntries
	}
	if opts.CacheMode == CacheMonomorphicMode {
		opts.MaxCacheEntries = 1
	}

	rt := &Runtime{
		id:    uuid.New(),
		opts:  opts,
		types: NewTypeTable(),
		logs: loggers{
			types: commonlog.GetLogger("dunder.types"),
			slots: commonlog.GetLogger("dunder.slots"),
			cache: commonlog.GetLogger("dunder.cache"),
		},
	}
	rt.sites = NewCallSiteTable(rt)
	for _, t := range builtinTypes {
		rt.types.Register(t)
	}
	rt.logs.types.Infof("runtime %s (%s): %d built-in types", opts.Name, rt.id, len(builtinTypes))
	return rt
}

// ID returns the runtime's unique identity.
func (rt *Runtime) ID() uuid.UUID { return rt.id }

// Name returns the configured name.
func (rt *Runtime) Name() string { return rt.opts.Name }

// Options returns the effective options.
func (rt *Runtime) Options() Options { return rt.opts }

// Types returns the type registry.
func (rt *Runtime) Types() *TypeTable { return rt.types }

// CallSites returns the call-site cache table.
func (rt *Runtime) CallSites() *CallSiteTable { return rt.sites }

// LookupType returns a registered type by name, or nil.
func (rt *Runtime) LookupType(name string) *Type { return rt.types.Lookup(name) }
