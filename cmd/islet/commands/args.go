package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/livefir/islet"
	"github.com/livefir/islet/cmd/islet/internal/config"
)

// flags is the result of parsing a command line: named values, switches and
// the remaining positional arguments
type flags struct {
	values map[string]string
	bools  map[string]bool
	files  []string
}

// parseArgs splits args into flags and files. Names in valued take the next
// argument; names in switches take none. Both "-x" and "--x" are accepted.
func parseArgs(args []string, valued, switches []string) (*flags, error) {
	f := &flags{values: map[string]string{}, bools: map[string]bool{}}
	has := func(list []string, name string) bool {
		for _, n := range list {
			if n == name {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			f.files = append(f.files, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if k, v, ok := strings.Cut(name, "="); ok && has(valued, k) {
			f.values[k] = v
			continue
		}
		switch {
		case has(valued, name):
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s requires a value", arg)
			}
			f.values[name] = args[i+1]
			i++
		case has(switches, name):
			f.bools[name] = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return f, nil
}

// project loads islet.yaml from the working directory
func project() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return config.LoadConfig(dir)
}

// engineOptions maps the project config and command switches to engine options
func engineOptions(cfg *config.Config, f *flags) []islet.Option {
	var opts []islet.Option
	if cfg.Minify || f.bools["minify"] {
		opts = append(opts, islet.WithMinify())
	}
	if cfg.Debug || f.bools["debug"] {
		opts = append(opts, islet.WithDebug(true))
	}
	return opts
}

// library parses the component directories of cfg followed by extra files
func library(cfg *config.Config, extra []string) (islet.Library, error) {
	files, err := cfg.ComponentFiles()
	if err != nil {
		return nil, err
	}
	return islet.ParseFiles(append(files, extra...)...)
}
