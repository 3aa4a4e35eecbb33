package domain

// Config represents the minimal Kipu configuration loaded from kipu.yaml.
type Config struct {
	Artifacts ArtifactsConfig
	Defaults  DefaultsConfig
	Masking   MaskingConfig
	Paths     PathsConfig
}

type ArtifactsConfig struct {
	Save bool
}

// MaskingConfig controls redaction of sensitive plucked variables
// in persisted artifacts.
type MaskingConfig struct {
	Enabled bool
}

type DefaultsConfig struct {
	VarSet string
}

type PathsConfig struct {
	PipelinesDir string
	DocumentsDir string
	VarsDir      string
	RunsDir      string
}

// DefaultConfig provides sane defaults if kipu.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Artifacts: ArtifactsConfig{Save: true},
		Defaults:  DefaultsConfig{VarSet: ""},
		Masking:   MaskingConfig{Enabled: true},
		Paths: PathsConfig{
			PipelinesDir: "pipelines",
			DocumentsDir: "documents",
			VarsDir:      "vars",
			RunsDir:      "runs",
		},
	}
}

// WorkspaceSpec describes a workspace to initialize.
type WorkspaceSpec struct {
	Root string
}
