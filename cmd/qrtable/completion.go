package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell names a shell that completion scripts can be generated for.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned for shells without a generator.
var ErrUnsupportedShell = errors.New("unsupported shell")

// completionHint refines how a flag's value is completed.
type completionHint struct {
	values []string // fixed choices
	glob   string   // file extensions, comma separated
	dir    bool
}

var flagHints = map[string]completionHint{
	"page-size":   {values: []string{"letter", "a4", "legal"}},
	"orientation": {values: []string{"portrait", "landscape"}},
	"config":      {glob: "yaml,yml"},
	"css":         {glob: "css"},
	"append-to":   {glob: "pdf"},
	"output":      {dir: true},
}

// completionFlag is one flag as seen by the script generators.
type completionFlag struct {
	long, short, usage string
	takesValue         bool
	hint               completionHint
}

// completionCommand is one subcommand with its flags and file arguments.
type completionCommand struct {
	name, desc string
	flags      []completionFlag
	argGlob    string
}

// completionFlags reads flag definitions off fs so completion stays in step
// with parsing.
func completionFlags(fs *flag.FlagSet) []completionFlag {
	var out []completionFlag
	fs.VisitAll(func(f *flag.Flag) {
		out = append(out, completionFlag{
			long:       f.Name,
			short:      f.Shorthand,
			usage:      f.Usage,
			takesValue: f.Value.Type() != "bool",
			hint:       flagHints[f.Name],
		})
	})
	return out
}

func completionCommands() []completionCommand {
	return []completionCommand{
		{name: "render", desc: "Render the reference table", flags: completionFlags(newRenderFlagSet(&renderFlags{})), argGlob: "md,markdown"},
		{name: "list", desc: "List footnote URLs", flags: completionFlags(newListFlagSet(&listFlags{})), argGlob: "md,markdown,docx"},
		{name: "config", desc: "Print the effective configuration", flags: completionFlags(newConfigFlagSet(&commonFlags{}))},
		{name: "version", desc: "Show version information"},
		{name: "help", desc: "Show help for a command"},
		{name: "completion", desc: "Generate a shell completion script"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := completionCommands()
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(cmds)
	case ShellZsh:
		script = zshScript(cmds)
	case ShellFish:
		script = fishScript(cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func commandNames(cmds []completionCommand) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.name
	}
	return strings.Join(names, " ")
}

func bashScript(cmds []completionCommand) string {
	var b strings.Builder
	b.WriteString("# bash completion for qrtable\n")
	b.WriteString("_qrtable() {\n")
	b.WriteString("  local cur prev cmd\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("  if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("    return\n  fi\n")

	b.WriteString("  case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.flags {
			if !f.takesValue || seen[f.long] {
				continue
			}
			seen[f.long] = true
			pattern := "--" + f.long
			if f.short != "" {
				pattern += "|-" + f.short
			}
			switch {
			case len(f.hint.values) > 0:
				fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", pattern, strings.Join(f.hint.values, " "))
			case f.hint.dir:
				fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", pattern)
			case f.hint.glob != "":
				fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\")); return ;;\n", pattern, strings.ReplaceAll(f.hint.glob, ",", "|"))
			default:
				fmt.Fprintf(&b, "    %s) return ;;\n", pattern)
			}
		}
	}
	b.WriteString("  esac\n")

	b.WriteString("  case \"$cmd\" in\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.flags {
			words = append(words, "--"+f.long)
		}
		if c.name == "help" {
			words = append(words, "render", "list", "config", "version")
		}
		if c.name == "completion" {
			words = append(words, string(ShellBash), string(ShellZsh), string(ShellFish))
		}
		fmt.Fprintf(&b, "    %s)\n", c.name)
		if c.argGlob != "" {
			fmt.Fprintf(&b, "      if [[ \"$cur\" != -* ]]; then COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\")); return; fi\n",
				strings.ReplaceAll(c.argGlob, ",", "|"))
		}
		fmt.Fprintf(&b, "      COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", strings.Join(words, " "))
	}
	b.WriteString("  esac\n")
	b.WriteString("}\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _qrtable qrtable\n")
	return b.String()
}

// zshEscape quotes text for use inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	return strings.ReplaceAll(s, ":", `\:`)
}

func zshAction(h completionHint) string {
	switch {
	case len(h.values) > 0:
		return "(" + strings.Join(h.values, " ") + ")"
	case h.dir:
		return "_files -/"
	case h.glob != "":
		return `_files -g "*.(` + strings.ReplaceAll(h.glob, ",", "|") + `)"`
	}
	return " "
}

func zshScript(cmds []completionCommand) string {
	var b strings.Builder
	b.WriteString("#compdef qrtable\n\n")
	b.WriteString("_qrtable() {\n")
	b.WriteString("  local -a commands\n  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.name, zshEscape(c.desc))
	}
	b.WriteString("  )\n")
	b.WriteString("  if (( CURRENT == 2 )); then\n    _describe 'command' commands\n    return\n  fi\n")
	b.WriteString("  case $words[2] in\n")
	for _, c := range cmds {
		if len(c.flags) == 0 && c.argGlob == "" {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n      _arguments \\\n", c.name)
		for _, f := range c.flags {
			spec := "--" + f.long + "[" + zshEscape(f.usage) + "]"
			if f.takesValue {
				spec += ":" + f.long + ":" + zshAction(f.hint)
			}
			fmt.Fprintf(&b, "        '%s' \\\n", spec)
		}
		if c.argGlob != "" {
			fmt.Fprintf(&b, "        '*:file:_files -g \"*.(%s)\"'\n", strings.ReplaceAll(c.argGlob, ",", "|"))
		} else {
			b.WriteString("        '*: :'\n")
		}
		b.WriteString("      ;;\n")
	}
	b.WriteString("  esac\n}\n\n")
	b.WriteString("_qrtable \"$@\"\n")
	return b.String()
}

func fishScript(cmds []completionCommand) string {
	var b strings.Builder
	b.WriteString("# fish completion for qrtable\n")
	b.WriteString("complete -c qrtable -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c qrtable -n '__fish_use_subcommand' -a %s -d '%s'\n", c.name, fishEscape(c.desc))
	}
	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.name
		for _, f := range c.flags {
			line := fmt.Sprintf("complete -c qrtable -n '%s' -l %s", cond, f.long)
			if f.short != "" {
				line += " -s " + f.short
			}
			if f.takesValue {
				line += " -r"
				switch {
				case len(f.hint.values) > 0:
					line += " -a '" + strings.Join(f.hint.values, " ") + "'"
				case f.hint.dir:
					line += " -a '(__fish_complete_directories)'"
				case f.hint.glob != "":
					line += " -F"
				}
			}
			line += " -d '" + fishEscape(f.usage) + "'"
			b.WriteString(line + "\n")
		}
		if c.argGlob != "" {
			fmt.Fprintf(&b, "complete -c qrtable -n '%s' -F\n", cond)
		}
	}
	fmt.Fprintf(&b, "complete -c qrtable -n '__fish_seen_subcommand_from completion' -a '%s %s %s'\n", ShellBash, ShellZsh, ShellFish)
	return b.String()
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrtable completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a completion script for bash, zsh or fish.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(qrtable completion bash)\"        # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(qrtable completion zsh)\"         # in ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:  qrtable completion fish > ~/.config/fish/completions/qrtable.fish")
}
