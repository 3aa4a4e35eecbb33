package workspacefinder

import (
	"os"
	"path/filepath"

	"github.com/aalvaropc/kipu/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads kipu.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, "kipu.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.Kipu.Artifacts.Save != nil {
		cfg.Artifacts.Save = *y.Kipu.Artifacts.Save
	}
	if y.Kipu.Masking.Enabled != nil {
		cfg.Masking.Enabled = *y.Kipu.Masking.Enabled
	}
	if y.Kipu.Defaults.Vars != "" {
		cfg.Defaults.VarSet = y.Kipu.Defaults.Vars
	}
	if y.Kipu.Paths.PipelinesDir != "" {
		cfg.Paths.PipelinesDir = y.Kipu.Paths.PipelinesDir
	}
	if y.Kipu.Paths.DocumentsDir != "" {
		cfg.Paths.DocumentsDir = y.Kipu.Paths.DocumentsDir
	}
	if y.Kipu.Paths.VarsDir != "" {
		cfg.Paths.VarsDir = y.Kipu.Paths.VarsDir
	}
	if y.Kipu.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.Kipu.Paths.RunsDir
	}

	return cfg, nil
}

type yamlConfig struct {
	Kipu struct {
		Artifacts struct {
			Save *bool `yaml:"save"`
		} `yaml:"artifacts"`

		Masking struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"masking"`

		Defaults struct {
			Vars string `yaml:"vars"`
		} `yaml:"defaults"`

		Paths struct {
			PipelinesDir string `yaml:"pipelines_dir"`
			DocumentsDir string `yaml:"documents_dir"`
			VarsDir      string `yaml:"vars_dir"`
			RunsDir      string `yaml:"runs_dir"`
		} `yaml:"paths"`
	} `yaml:"kipu"`
}
