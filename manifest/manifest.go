// Package manifest handles dunder.toml runtime configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/dunder/vm"
)

// FileName is the name of the configuration file.
const FileName = "dunder.toml"

// Manifest represents a dunder.toml configuration.
type Manifest struct {
	Runtime   Runtime   `toml:"runtime"`
	Cache     Cache     `toml:"cache"`
	Log       Log       `toml:"log"`
	Snapshot  Snapshot  `toml:"snapshot"`
	Hierarchy Hierarchy `toml:"hierarchy"`

	// Dir is the directory containing the dunder.toml file (set at load
	// time). Empty for Default.
	Dir string `toml:"-"`
}

// Runtime contains runtime metadata.
type Runtime struct {
	Name string `toml:"name"`
}

// Cache configures call-site caching.
type Cache struct {
	Mode       string `toml:"mode"` // polymorphic, monomorphic or off
	MaxEntries int    `toml:"max-entries"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Snapshot configures type-graph snapshot output.
type Snapshot struct {
	Output string `toml:"output"`
	Format string `toml:"format"` // cbor or yaml
}

// Hierarchy lists the class description files loaded by default.
type Hierarchy struct {
	Files []string `toml:"files"`
}

// Default returns the configuration used when no dunder.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Runtime.Name == "" {
		m.Runtime.Name = "dunder"
	}
	if m.Cache.Mode == "" {
		m.Cache.Mode = "polymorphic"
	}
	if m.Cache.MaxEntries == 0 {
		m.Cache.MaxEntries = vm.MaxPICEntries
	}
	if m.Snapshot.Format == "" {
		m.Snapshot.Format = "cbor"
	}
}

// Load parses a dunder.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a dunder.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks values that cannot be defaulted.
func (m *Manifest) Validate() error {
	if _, err := vm.ParseCacheMode(m.Cache.Mode); err != nil {
		return fmt.Errorf("[cache] mode: %w", err)
	}
	if m.Cache.MaxEntries < 1 || m.Cache.MaxEntries > vm.MaxPICEntries {
		return fmt.Errorf("[cache] max-entries must be between 1 and %d, got %d", vm.MaxPICEntries, m.Cache.MaxEntries)
	}
	switch m.Snapshot.Format {
	case "cbor", "yaml":
	default:
		return fmt.Errorf("[snapshot] format must be cbor or yaml, got %q", m.Snapshot.Format)
	}
	return nil
}

// Options converts the configuration into runtime options.
func (m *Manifest) Options() (vm.Options, error) {
	mode, err := vm.ParseCacheMode(m.Cache.Mode)
	if err != nil {
		return vm.Options{}, err
	}
	return vm.Options{
		Name:            m.Runtime.Name,
		CacheMode:       mode,
		MaxCacheEntries: m.Cache.MaxEntries,
	}, nil
}

// LogFilePath returns the log file resolved against Dir, or nil for
// stderr.
func (m *Manifest) LogFilePath() *string {
	if m.Log.File == "" {
		return nil
	}
	p := m.resolve(m.Log.File)
	return &p
}

// SnapshotPath returns the snapshot output resolved against Dir, or "".
func (m *Manifest) SnapshotPath() string {
	if m.Snapshot.Output == "" {
		return ""
	}
	return m.resolve(m.Snapshot.Output)
}

// HierarchyPaths returns the hierarchy files resolved against Dir.
func (m *Manifest) HierarchyPaths() []string {
	var paths []string
	for _, f := range m.Hierarchy.Files {
		paths = append(paths, m.resolve(f))
	}
	return paths
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
