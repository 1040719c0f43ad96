// dunder builds class hierarchies described in YAML and shows how the
// object model resolves them: MRO, best base, layout and slot origins.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/dunder/manifest"
	"github.com/chazu/dunder/vm"
	"github.com/chazu/dunder/vm/dist"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dunder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config", ".", "Directory to search upwards for dunder.toml")
	verbosity := fs.Int("v", -1, "Log verbosity (overrides [log] verbosity)")
	output := fs.String("o", "", "Write a snapshot of the built types to this file")
	format := fs.String("format", "", "Snapshot format: cbor or yaml")
	builtins := fs.Bool("builtins", false, "Include built-in types in output and snapshots")
	quiet := fs.Bool("q", false, "Do not describe types")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dunder [options] [hierarchy.yaml...]\n\n")
		fmt.Fprintf(stderr, "Builds the classes in each file and prints their resolution.\n")
		fmt.Fprintf(stderr, "Without files, [hierarchy] files from dunder.toml are used.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  dunder animals.yaml                  # Describe classes\n")
		fmt.Fprintf(stderr, "  dunder -o types.cbor animals.yaml    # Also write a CBOR snapshot\n")
		fmt.Fprintf(stderr, "  dunder -format yaml -o - animals.yaml  # YAML snapshot on stdout\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	m, err := manifest.FindAndLoad(*configDir)
	if err != nil {
		return fail(stderr, err)
	}
	if m == nil {
		m = manifest.Default()
	}

	level := m.Log.Verbosity
	if *verbosity >= 0 {
		level = *verbosity
	}
	commonlog.Configure(level, m.LogFilePath())

	opts, err := m.Options()
	if err != nil {
		return fail(stderr, err)
	}
	rt := vm.NewRuntime(opts)

	files := fs.Args()
	if len(files) == 0 {
		files = m.HierarchyPaths()
	}
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	status := 0
	site := 0
	for _, path := range files {
		h, err := LoadHierarchy(path)
		if err != nil {
			return fail(stderr, err)
		}
		types, err := Build(rt, h)
		if !*quiet {
			for _, t := range types {
				Describe(stdout, t)
			}
		}
		if err != nil {
			fail(stderr, fmt.Errorf("%s: %w", path, err))
			status = 1
			continue
		}
		for _, e := range h.Eval {
			site++
			r, err := Evaluate(rt, site, e)
			if err != nil {
				fail(stderr, fmt.Errorf("eval %s: %w", e.Op, err))
				status = 1
				continue
			}
			fmt.Fprintf(stdout, "%s -> %s\n", e.Op, r)
		}
	}

	if *builtins && !*quiet {
		for _, t := range rt.Types().All() {
			if t.IsBuiltin() {
				Describe(stdout, t)
			}
		}
	}

	path := *output
	if path == "" {
		path = m.SnapshotPath()
	}
	if path != "" {
		f := *format
		if f == "" {
			f = m.Snapshot.Format
		}
		if err := writeSnapshot(rt, path, f, *builtins, stdout); err != nil {
			return fail(stderr, err)
		}
	}
	return status
}

func writeSnapshot(rt *vm.Runtime, path, format string, builtins bool, stdout io.Writer) error {
	s := dist.Capture(rt, dist.Options{IncludeBuiltins: builtins})
	data, err := dist.Marshal(s, format)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write snapshot: %w", err)
	}
	digest, err := dist.Digest(s)
	if err != nil {
		return err
	}
	commonlog.GetLogger("dunder").Infof("wrote %d types to %s (sha256 %s)", len(s.Types), path, digest)
	return nil
}

// fail prints err, in red when stderr is a terminal.
func fail(stderr io.Writer, err error) int {
	msg := fmt.Sprintf("%s: %v", errorKind(err), err)
	if f, ok := stderr.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(stderr, msg)
	return 1
}
