package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/xyproto/env/v2"

	cobalt "github.com/Everglades-Development/Cobalt"
)

const (
	appName    = "cobalt"
	promptMain = "==> "
	promptCont = "... "
)

var (
	historyFile = env.Str("COBALT_HISTORY", ".cobalt_history")
	entryName   = env.Str("COBALT_MAIN", "main")
	useColor    = !env.Bool("NO_COLOR")
)

func red(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println(cobalt.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Cobalt %s

Usage:
  %s run <file.cbt> [function]   Load a script and call a public void function (default %q).
  %s repl                        Interactively enter programs and run them.
  %s version                     Print the engine version.

`, cobalt.Version, appName, entryName, appName, appName)
}

func runProgram(caller cobalt.PublicFunctionCaller) int {
	if _, err := caller(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	return 0
}

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.cbt> [function]\n", appName)
		return 2
	}

	file := args[0]
	entry := entryName
	if len(args) > 1 {
		entry = args[1]
	}

	m := cobalt.NewModule()
	cobalt.AddStandardFunctions(m)

	caller := m.PublicCaller(entry, fmt.Sprintf("function void %s()", entry))

	if !m.TryLoad(file, os.Stderr) {
		return 1
	}
	return runProgram(caller)
}

func cmdRepl() int {
	fmt.Printf("Cobalt %s\nEnter a program, finish with an empty line. Type :quit to exit.\n", cobalt.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readProgram(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return 0
		}

		ln.AppendHistory(strings.ReplaceAll(trimmed, "\n", " "))

		m := cobalt.NewModule()
		cobalt.AddStandardFunctions(m)
		caller := m.PublicCaller(entryName, fmt.Sprintf("function void %s()", entryName))

		if err := m.LoadSource(code); err != nil {
			if compileErr, ok := err.(*cobalt.Error); ok {
				var out strings.Builder
				cobalt.FormatError(compileErr, sourceOf(code), &out)
				fmt.Fprint(os.Stderr, red(out.String()))
			} else {
				fmt.Fprintln(os.Stderr, red(err.Error()))
			}
			continue
		}

		runProgram(caller)
	}
}

func sourceOf(code string) cobalt.GetCharacter {
	i := 0
	return func() int {
		if i >= len(code) {
			return -1
		}
		c := code[i]
		i++
		return int(c)
	}
}

// readProgram accumulates lines until a blank line or end of input ends the
// program. The second return is false when input ends before any line was
// read.
func readProgram(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return b.String(), b.Len() > 0
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
}
