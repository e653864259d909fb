// stabletrace captures, encodes, decodes and symbolicates stable stack
// traces.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/stabletrace/capture"
	"github.com/wippyai/stabletrace/symbolicate"
	"github.com/wippyai/stabletrace/symcache"
)

const usage = `Usage: stabletrace [--verbose] [--log-format console|json] <command> [flags]

Commands:
  capture      capture this process's own stack and print the encoded trace
  encode       build a trace from literal values
  decode       print the header and addresses of a trace
  symcache     build a symcache from a debug info file
  symbolicate  resolve a trace against a symcache or debug info file
  serve        run the HTTP symbolication endpoint

Run "stabletrace <command> --help" for command flags.
`

// command runs one subcommand with its arguments.
type command func(env *env, args []string) error

var commands = map[string]command{
	"capture":     runCapture,
	"encode":      runEncode,
	"decode":      runDecode,
	"symcache":    runSymcache,
	"symbolicate": runSymbolicate,
	"serve":       runServe,
}

// env is what every subcommand writes to.
type env struct {
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		verbose   bool
		logFormat string
	)
	flags := pflag.NewFlagSet("stabletrace", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	flags.StringVar(&logFormat, "log-format", "console", "log format: console or json")
	flags.Usage = func() { fmt.Fprint(stderr, usage) }

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("no command given")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", rest[0])
	}

	log, err := newLogger(verbose, logFormat, isTerminal(stderr))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	capture.SetLogger(log.Named("capture"))
	symcache.SetLogger(log.Named("symcache"))
	symbolicate.SetLogger(log.Named("symbolicate"))

	return cmd(&env{stdout: stdout, stderr: stderr, log: log}, rest[1:])
}

// newFlagSet creates a subcommand flag set that prints its defaults on
// --help.
func newFlagSet(e *env, name, synopsis string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(e.stderr)
	flags.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: stabletrace %s\n\nFlags:\n", synopsis)
		flags.PrintDefaults()
	}
	return flags
}

// parse parses subcommand flags. done is true when --help was handled.
func parse(flags *pflag.FlagSet, args []string) (done bool, err error) {
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
