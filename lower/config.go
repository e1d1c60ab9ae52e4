package lower

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/noreturn/internal"
)

// DefaultConfigPath is where init writes the configuration.
const DefaultConfigPath = ".noreturn.yaml"

// Config is the on-disk configuration of the tool.
type Config struct {
	Name string `yaml:"name"`
	// Parallel lowers the components of a document concurrently.
	Parallel bool `yaml:"parallel"`
	// Verify checks every rewrite with the evaluator.
	Verify bool `yaml:"verify"`
	// Strict fails a document whose output does not validate.
	Strict bool `yaml:"strict"`
	// MaxVerifyInputs caps the bool properties enumerated per component.
	MaxVerifyInputs int `yaml:"max_verify_inputs"`
	// OutputDir receives the rewritten documents. Empty prints reports only.
	OutputDir string `yaml:"output_dir,omitempty"`
	// CacheDir stores reports between runs. Empty disables the cache.
	CacheDir string `yaml:"cache_dir,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Name:            "noreturn",
		Verify:          true,
		Strict:          true,
		MaxVerifyInputs: 12,
	}
}

// Options converts c into engine options.
func (c Config) Options() internal.Options {
	return internal.Options{
		Parallel:        c.Parallel,
		Verify:          c.Verify,
		Strict:          c.Strict,
		MaxVerifyInputs: c.MaxVerifyInputs,
		CacheDir:        c.CacheDir,
	}
}

// LoadConfig reads the configuration at path. Fields missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return config, nil
}

// ResolveConfig returns the configuration at path, or the default one when
// path is empty or does not exist. loaded reports whether a file was read.
func ResolveConfig(path string) (config Config, loaded bool, err error) {
	if path == "" {
		return DefaultConfig(), false, nil
	}
	config, err = LoadConfig(path)
	switch {
	case err == nil:
		return config, true, nil
	case errors.Is(err, os.ErrNotExist):
		return DefaultConfig(), false, nil
	default:
		return config, false, err
	}
}

// WriteConfig writes config to path, replacing any existing file.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
