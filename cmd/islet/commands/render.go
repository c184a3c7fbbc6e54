package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/livefir/islet"
)

// Render renders a component on the server and prints the HTML.
//
//	islet render [-data file] [-deps a.html,b.html] [-component name] [-minify] file
//
// Data files are YAML or JSON. Dependencies are the project's component
// directories followed by -deps, then the other components of file itself.
func Render(args []string) error {
	return render(os.Stdout, args)
}

func render(w io.Writer, args []string) error {
	f, err := parseArgs(args, []string{"data", "deps", "component"}, []string{"minify", "debug"})
	if err != nil {
		return err
	}
	if len(f.files) != 1 {
		return fmt.Errorf("exactly one component file required")
	}

	cfg, err := project()
	if err != nil {
		return err
	}

	components, err := islet.ParseFiles(f.files[0])
	if err != nil {
		return err
	}
	if len(components) == 0 {
		return fmt.Errorf("%s: no components found", f.files[0])
	}

	target := components[0]
	if name := f.values["component"]; name != "" {
		if target = components.Resolve(name); target == nil {
			return fmt.Errorf("%s: no component named %q (have %s)", f.files[0], name, strings.Join(components.Names(), ", "))
		}
	}

	var extra []string
	if deps := f.values["deps"]; deps != "" {
		extra = strings.Split(deps, ",")
	}
	deps, err := library(cfg, extra)
	if err != nil {
		return err
	}
	for _, c := range components {
		if c != target {
			deps = append(deps, c)
		}
	}

	data, err := loadData(f.values["data"])
	if err != nil {
		return err
	}

	html, err := islet.Render(target, data, deps, engineOptions(cfg, f)...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, html)
	return err
}

// loadData reads a YAML or JSON data file; JSON is read as YAML
func loadData(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	return data, nil
}
