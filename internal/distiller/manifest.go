package distiller

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hollowoak/distill/internal/buildinfo"
)

// Manifest is the machine-readable record of one run, written as YAML when
// the caller asks for it.
type Manifest struct {
	GeneratedAt string         `yaml:"generated_at"`
	Tool        string         `yaml:"tool"`
	Version     string         `yaml:"version"`
	SourceDir   string         `yaml:"source_dir"`
	DestDir     string         `yaml:"destination_dir"`
	AICodingEnv string         `yaml:"ai_coding_env"`
	DryRun      bool           `yaml:"dry_run"`
	Counts      ManifestCounts `yaml:"counts"`
	SkipReasons []ReasonCount  `yaml:"skip_reasons"`
}

// ManifestCounts mirrors the run summary totals.
type ManifestCounts struct {
	Scanned int `yaml:"scanned"`
	Copied  int `yaml:"copied"`
	Sampled int `yaml:"sampled"`
	Skipped int `yaml:"skipped"`
	Errors  int `yaml:"errors"`
}

func writeManifest(path string, m Manifest) error {
	m.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	m.Tool = "distill"
	m.Version = buildinfo.Version

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
