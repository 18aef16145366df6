package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside the XDG config directory.
const FileName = "config.yaml"

// FilePath returns the config file location. AIRCARE_CONFIG overrides the
// XDG default.
func FilePath() string {
	if v := os.Getenv("AIRCARE_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, "aircare", FileName)
}

// LoadFile overlays values from a YAML file onto c. A missing file is not an
// error. Keys absent from the file keep their current values.
func (c *RuntimeConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Marshal renders c as YAML, in the same shape LoadFile reads.
func (c *RuntimeConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
