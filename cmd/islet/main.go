package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/livefir/islet/cmd/islet/commands"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error

	switch command {
	case "init":
		err = commands.Init(args)
	case "compile":
		err = commands.Compile(args)
	case "render":
		err = commands.Render(args)
	case "check":
		err = commands.Check(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, commands.ErrCheckFailed) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("islet version %s\n", version)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	revision := commit
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if revision == "unknown" {
				revision = setting.Value
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision != "unknown" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		fmt.Printf("commit: %s\n", revision)
	}
	if modified {
		fmt.Printf("modified: true (uncommitted changes)\n")
	}
	fmt.Printf("go: %s\n", info.GoVersion)
}

func printUsage() {
	fmt.Println("Islet component compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  islet init [<dir>]                        Write a default islet.yaml")
	fmt.Println("  islet compile [-o out.js] [-json] files   Compile components to a JS module")
	fmt.Println("  islet render [flags] <file>               Render a component to HTML")
	fmt.Println("  islet check [files]                       Report syntax errors with context")
	fmt.Println("  islet version                             Show version information")
	fmt.Println()
	fmt.Println("Render Flags:")
	fmt.Println("  -data <file>         YAML or JSON data for the root scope")
	fmt.Println("  -deps <a,b>          Extra component files for custom tags")
	fmt.Println("  -component <name>    Component to render (default: first in file)")
	fmt.Println("  -minify              Minify the output")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  islet compile components/card.html")
	fmt.Println("  islet compile -json card.html list.html")
	fmt.Println("  islet render -data page.yaml -deps card.html page.html")
	fmt.Println("  islet check")
}
