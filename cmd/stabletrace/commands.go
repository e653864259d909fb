package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/wippyai/stabletrace"
	"github.com/wippyai/stabletrace/capture"
	"github.com/wippyai/stabletrace/stacktrace"
	"github.com/wippyai/stabletrace/symbolicate"
	"github.com/wippyai/stabletrace/symcache"
)

func runCapture(e *env, args []string) error {
	var (
		version string
		all     bool
	)
	flags := newFlagSet(e, "capture", "capture [--version V] [--all]")
	flags.StringVar(&version, "version", "0.0.0", "build version: MAJOR.MINOR.PATCH[-CANARY][+dev]")
	flags.BoolVar(&all, "all", false, "capture even when this binary carries debug info")
	if done, err := parse(flags, args); done || err != nil {
		return err
	}

	v, err := stacktrace.ParseVersion(version)
	if err != nil {
		return err
	}

	gate := capture.NewHost()
	if all {
		fmt.Fprintln(e.stdout, stabletrace.CaptureAll(gate, v))
		return nil
	}
	trace, ok := stabletrace.Capture(gate, v)
	if !ok {
		return fmt.Errorf("this binary carries debug info and can symbolicate locally; use --all to capture anyway")
	}
	fmt.Fprintln(e.stdout, trace)
	return nil
}

func runEncode(e *env, args []string) error {
	var osName, archName, version string
	flags := newFlagSet(e, "encode", "encode [--os OS] [--arch ARCH] [--version V] ADDR...")
	flags.StringVar(&osName, "os", string(stacktrace.HostOS()), "operating system name")
	flags.StringVar(&archName, "arch", string(stacktrace.HostArch()), "architecture name")
	flags.StringVar(&version, "version", "0.0.0", "build version: MAJOR.MINOR.PATCH[-CANARY][+dev]")
	if done, err := parse(flags, args); done || err != nil {
		return err
	}

	v, err := stacktrace.ParseVersion(version)
	if err != nil {
		return err
	}
	addrs := make([]uint64, 0, flags.NArg())
	for _, s := range flags.Args() {
		addr, err := parseAddr(s)
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	}

	t := stacktrace.New(addrs, stacktrace.Arch(archName), stacktrace.OS(osName), v)
	fmt.Fprintln(e.stdout, t.EncodeBase64URL())
	return nil
}

// parseAddr accepts decimal or 0x-prefixed hexadecimal.
func parseAddr(s string) (uint64, error) {
	var (
		v   uint64
		err error
	)
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err = strconv.ParseUint(hex, 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: want decimal or 0x-prefixed hex", s)
	}
	return v, nil
}

func runDecode(e *env, args []string) error {
	flags := newFlagSet(e, "decode", "decode TRACE")
	if done, err := parse(flags, args); done || err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("decode takes exactly one trace")
	}

	t, err := stacktrace.DecodeString(flags.Arg(0))
	if err != nil {
		return err
	}
	printHeader(e, t.Header)
	fmt.Fprintf(e.stdout, "Addresses:     %d\n", len(t.Addrs))
	for i, addr := range t.Addrs {
		fmt.Fprintf(e.stdout, "  #%-3d %s\n", i, symbolicate.FormatAddr(addr))
	}
	return nil
}

func printHeader(e *env, h stacktrace.Header) {
	fmt.Fprintf(e.stdout, "Trace version: %d\n", h.TraceVersion)
	fmt.Fprintf(e.stdout, "OS:            %s\n", h.OS)
	fmt.Fprintf(e.stdout, "Arch:          %s\n", h.Arch)
	fmt.Fprintf(e.stdout, "Version:       %s\n", h.Version)
	fmt.Fprintf(e.stdout, "Build key:     %s\n", h.BuildKey())
}

func runSymcache(e *env, args []string) error {
	if len(args) == 0 || args[0] != "build" {
		fmt.Fprintln(e.stderr, "Usage: stabletrace symcache build DEBUGFILE [-o OUT]")
		return fmt.Errorf("unknown symcache command")
	}

	var out string
	flags := newFlagSet(e, "symcache build", "symcache build DEBUGFILE [-o OUT]")
	flags.StringVarP(&out, "output", "o", "", "output file (default: DEBUGFILE"+symcache.Ext+")")
	if done, err := parse(flags, args[1:]); done || err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("symcache build takes exactly one debug info file")
	}

	in := flags.Arg(0)
	if out == "" {
		out = in + symcache.Ext
	}
	data, err := symcache.BuildFile(in)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	e.log.Info("symcache written",
		zap.String("path", out),
		zap.Int("size", len(data)))
	return nil
}

func runSymbolicate(e *env, args []string) error {
	var (
		cachePath   string
		debugPath   string
		asJSON      bool
		interactive bool
	)
	flags := newFlagSet(e, "symbolicate", "symbolicate (--symcache FILE | --debug-file FILE) [--json | -i] TRACE")
	flags.StringVar(&cachePath, "symcache", "", "symcache file")
	flags.StringVar(&debugPath, "debug-file", "", "debug info file to build a symcache from")
	flags.BoolVar(&asJSON, "json", false, "print JSON")
	flags.BoolVarP(&interactive, "interactive", "i", false, "browse frames in a terminal UI")
	if done, err := parse(flags, args); done || err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("symbolicate takes exactly one trace")
	}
	if (cachePath == "") == (debugPath == "") {
		return fmt.Errorf("exactly one of --symcache and --debug-file is required")
	}
	if interactive && !isTerminal(e.stdout) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	t, err := stacktrace.DecodeString(flags.Arg(0))
	if err != nil {
		return err
	}

	var data []byte
	if cachePath != "" {
		data, err = os.ReadFile(cachePath)
	} else {
		data, err = symcache.BuildFile(debugPath)
	}
	if err != nil {
		return err
	}
	s, err := symbolicate.Open(data)
	if err != nil {
		return err
	}
	st := s.Symbolicate(t)

	switch {
	case interactive:
		return runInteractive(st)
	case asJSON:
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	default:
		printHeader(e, st.Header)
		printFrames(e, st.Frames, isTerminal(e.stdout))
		return nil
	}
}

func printFrames(e *env, frames []symbolicate.Frame, color bool) {
	style := func(s string) string { return s }
	if color {
		style = func(s string) string { return funcStyle.Render(s) }
	}
	for i, f := range frames {
		fmt.Fprintf(e.stdout, "#%-3d %s\n", i, symbolicate.FormatAddr(f.Addr))
		if len(f.Locations) == 0 {
			fmt.Fprintln(e.stdout, "     ??")
			continue
		}
		for _, loc := range f.Locations {
			fmt.Fprintf(e.stdout, "     %s\n       at %s:%d\n", style(loc.DemangledName), loc.FullPath, loc.Line)
		}
	}
}

func runServe(e *env, args []string) error {
	var listen, debugDir, cacheDir string
	flags := newFlagSet(e, "serve", "serve --debug-dir DIR [--cache-dir DIR] [--listen ADDR]")
	flags.StringVar(&listen, "listen", "127.0.0.1:8080", "address to listen on")
	flags.StringVar(&debugDir, "debug-dir", "", "directory of <build>"+symbolicate.DebugInfoExt+" files")
	flags.StringVar(&cacheDir, "cache-dir", "", "symcache directory (default: user cache dir)")
	if done, err := parse(flags, args); done || err != nil {
		return err
	}
	if debugDir == "" {
		flags.Usage()
		return fmt.Errorf("--debug-dir is required")
	}
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve cache dir: %w", err)
		}
		cacheDir = filepath.Join(base, "stabletrace")
	}

	store, err := symcache.NewStore(cacheDir)
	if err != nil {
		return err
	}
	registry := symbolicate.NewRegistry(store, debugDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.log.Info("starting symbolication server",
		zap.String("listen", listen),
		zap.String("debug_dir", debugDir),
		zap.String("cache_dir", cacheDir))
	return symbolicate.ListenAndServe(ctx, listen, symbolicate.NewHandler(registry))
}
