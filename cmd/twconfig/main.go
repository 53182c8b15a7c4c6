package main

import (
	"fmt"
	"io"
	"os"
)

var version = "0.1.0-dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches one command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	command, rest := args[0], args[1:]
	switch command {
	case "validate":
		return a.cmdValidate(rest)
	case "print":
		return a.cmdPrint(rest)
	case "tokens":
		return a.cmdTokens(rest)
	case "init":
		return a.cmdInit(rest)
	case "convert":
		return a.cmdConvert(rest)
	case "watch":
		return a.cmdWatch(rest)
	case "serve":
		return a.cmdServe(rest)
	case "setup":
		return a.cmdSetup(rest)
	case "version", "--version":
		fmt.Fprintf(stdout, "twconfig %s\n", version)
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", command)
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: twconfig <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate   Check a config file (or several) and report every problem")
	fmt.Fprintln(w, "  print      Print the loaded config as js, ts, json or yaml")
	fmt.Fprintln(w, "  tokens     List font-size tokens (--resolved adds the built-in scale)")
	fmt.Fprintln(w, "  init       Write a starter tailwind.config.js")
	fmt.Fprintln(w, "  convert    Rewrite the config in another format (--to <path>)")
	fmt.Fprintln(w, "  watch      Reload and report on every change")
	fmt.Fprintln(w, "  serve      Start the MCP server on stdio")
	fmt.Fprintln(w, "  setup      Register the MCP server with detected AI agents")
	fmt.Fprintln(w, "  version    Print version")
	fmt.Fprintln(w, "  help       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  --config <path>      Config file (default: .twconfig/config.yaml config_path, then discovery)")
	fmt.Fprintln(w, "  --log-level <level>  debug, info, warn or error")
	fmt.Fprintln(w, "  --allow-unknown      Skip unknown keys with a warning instead of failing")
}
