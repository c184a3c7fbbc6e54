package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/livefir/islet/cmd/islet/internal/config"
)

// Init writes a default islet.yaml into the given directory, or the
// working directory when none is given. An existing file is left alone.
func Init(args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := config.SaveConfig(dir, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("✅ Created %s\n", path)
	return nil
}
