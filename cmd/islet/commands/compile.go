package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livefir/islet"
)

// Compile compiles component files into JavaScript modules.
//
//	islet compile [-o out.js] [-json] [-minify] files...
//
// With one input and no -o the module goes to the project's out_dir.
func Compile(args []string) error {
	f, err := parseArgs(args, []string{"o"}, []string{"json", "minify", "debug"})
	if err != nil {
		return err
	}
	if len(f.files) == 0 {
		return fmt.Errorf("at least one component file required")
	}

	cfg, err := project()
	if err != nil {
		return err
	}
	opts := engineOptions(cfg, f)

	var out strings.Builder
	var all []*islet.Compiled
	for _, file := range f.files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		if f.bools["json"] {
			compiled, err := islet.CompileSource(string(data), opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			all = append(all, compiled...)
			continue
		}

		module, err := islet.CompileLibrary(string(data), opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		out.WriteString(module)
	}

	if f.bools["json"] {
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode components: %w", err)
		}
		out.Write(data)
		out.WriteByte('\n')
	}

	target := f.values["o"]
	if target == "" && len(f.files) == 1 && !f.bools["json"] {
		base := strings.TrimSuffix(filepath.Base(f.files[0]), filepath.Ext(f.files[0]))
		target = filepath.Join(cfg.OutDir, base+".js")
	}
	if target == "" || target == "-" {
		_, err := fmt.Print(out.String())
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(out.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	fmt.Printf("✅ Compiled %s → %s\n", strings.Join(f.files, ", "), target)
	return nil
}
