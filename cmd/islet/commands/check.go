package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/livefir/islet"
	"github.com/livefir/islet/cmd/islet/internal/report"
)

// ErrCheckFailed is returned when at least one file has errors
var ErrCheckFailed = errors.New("check failed")

// Check parses and compiles every component in files and reports each error
// with its source context.
//
//	islet check files...
//
// With no files the project's component directories are checked.
func Check(args []string) error {
	return check(os.Stdout, args)
}

func check(w io.Writer, args []string) error {
	f, err := parseArgs(args, nil, []string{"debug"})
	if err != nil {
		return err
	}

	files := f.files
	if len(files) == 0 {
		cfg, err := project()
		if err != nil {
			return err
		}
		if files, err = cfg.ComponentFiles(); err != nil {
			return err
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no component files to check")
	}

	var opts []islet.Option
	if f.bools["debug"] {
		opts = append(opts, islet.WithDebug(true))
	}

	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			failed++
			fmt.Fprint(w, report.Error(file, "", err))
			continue
		}
		if _, err := islet.CompileSource(string(data), opts...); err != nil {
			failed++
			fmt.Fprint(w, report.Error(file, string(data), err))
		}
	}

	fmt.Fprintln(w, report.Summary(len(files), failed))
	if failed > 0 {
		return ErrCheckFailed
	}
	return nil
}
