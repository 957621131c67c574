// Command arkprofile inspects, repairs, and rebuilds ASA
// PlayerLocalData.arkprofile containers.
//
// Usage:
//
//	arkprofile <command> [flags] <file>
//
// Commands:
//
//	extract  Decode a container to editable JSON or YAML
//	build    Re-encode a JSON or YAML document to a container
//	verify   Check a container for corruption without modifying it
//	edit     Open an interactive repair shell on a container
//
// Examples:
//
//	# Dump a profile to JSON for hand editing
//	arkprofile extract -o profile.json PlayerLocalData.arkprofile
//
//	# Rebuild the container from the edited document
//	arkprofile build -o PlayerLocalData.arkprofile profile.json
//
//	# Check several backups at once
//	arkprofile verify *.arkprofile
//
//	# Clear the corrupted tribute item array interactively
//	arkprofile edit PlayerLocalData.arkprofile
//
// Every command accepts -trace-log to record the decode/encode walk to
// a binary trace file for later inspection.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ark-tools/arkprofile-go/cmd/arkprofile/commands"
	"github.com/ark-tools/arkprofile-go/cmd/arkprofile/interactive"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

const usage = `arkprofile - ASA profile container tool

Usage:
  arkprofile <command> [flags] <file>

Commands:
  extract  Decode a container to editable JSON or YAML
  build    Re-encode a JSON or YAML document to a container
  verify   Check a container for corruption without modifying it
  edit     Open an interactive repair shell on a container

Use "arkprofile <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "extract":
		runExtract(args)
	case "build":
		runBuild(args)
	case "verify":
		runVerify(args)
	case "edit":
		runEdit(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// openTraceLog wires the optional -trace-log flag. The returned close
// func is a no-op when the flag is unset.
func openTraceLog(path string) (tracelog.Logger, func(), error) {
	if path == "" {
		return tracelog.NoopLogger{}, func() {}, nil
	}
	fl, err := tracelog.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	return fl, func() { fl.Close() }, nil
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `arkprofile extract - Decode a container to editable JSON or YAML

Usage:
  arkprofile extract [flags] <file.arkprofile>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (default: stdout)")
	format := fs.String("format", "json", "Output format (json, yaml)")
	indent := fs.String("indent", "  ", "JSON indentation string")
	traceLog := fs.String("trace-log", "", "Write a binary decode trace to this file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: container path required")
		fs.Usage()
		os.Exit(1)
	}

	logger, closeLog, err := openTraceLog(*traceLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := commands.RunExtract(fs.Arg(0), *output, *format, *indent, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `arkprofile build - Re-encode a JSON or YAML document to a container

Usage:
  arkprofile build [flags] <file.json|file.yaml>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (default: document name with .arkprofile)")
	traceLog := fs.String("trace-log", "", "Write a binary encode trace to this file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: document path required")
		fs.Usage()
		os.Exit(1)
	}

	logger, closeLog, err := openTraceLog(*traceLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := commands.RunBuild(fs.Arg(0), *output, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `arkprofile verify - Check containers for corruption

Usage:
  arkprofile verify [flags] <file.arkprofile> [more files...]

Flags:
`)
		fs.PrintDefaults()
	}

	verbose := fs.Bool("v", false, "Show every finding instead of the first few")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: container path required")
		fs.Usage()
		os.Exit(1)
	}

	allOK := true
	for _, path := range fs.Args() {
		ok, err := commands.RunVerify(path, *verbose, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			allOK = false
			continue
		}
		if !ok {
			allOK = false
		}
	}
	if !allOK {
		os.Exit(1)
	}
}

func runEdit(args []string) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `arkprofile edit - Open an interactive repair shell on a container

Usage:
  arkprofile edit [flags] <file.arkprofile>

Flags:
`)
		fs.PrintDefaults()
	}

	traceLog := fs.String("trace-log", "", "Write a binary trace to this file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: container path required")
		fs.Usage()
		os.Exit(1)
	}

	logger, closeLog, err := openTraceLog(*traceLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	editor, err := interactive.New(fs.Arg(0), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := editor.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
