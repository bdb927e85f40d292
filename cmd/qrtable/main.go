package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch {
	case cmd == "render":
		err = runRender(ctx, rest, env)
	case cmd == "list":
		err = runList(ctx, rest, env)
	case cmd == "config":
		err = runConfig(rest, env)
	case cmd == "completion":
		err = runCompletion(rest, env)
	case cmd == "version" || cmd == "--version":
		fmt.Fprintf(env.Stdout, "qrtable %s\n", Version)
		return ExitSuccess
	case cmd == "help" || cmd == "-h" || cmd == "--help":
		runHelp(rest, env)
		return ExitSuccess
	case looksLikeMarkdown(cmd):
		// "qrtable doc.md" is shorthand for "qrtable render doc.md".
		err = runRender(ctx, args[1:], env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// isCommand reports whether s names a subcommand.
func isCommand(s string) bool {
	switch s {
	case "render", "list", "config", "completion", "version", "help":
		return true
	}
	return false
}

// looksLikeMarkdown reports whether s is a Markdown file argument.
func looksLikeMarkdown(s string) bool {
	if isCommand(s) || strings.HasPrefix(s, "-") {
		return false
	}
	lower := strings.ToLower(s)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
