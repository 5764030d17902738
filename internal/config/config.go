// Package config loads the optional YAML run file shared by the binaries.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"putransform/internal/data"
	"putransform/internal/transform"
)

type Settings struct {
	Seed        int64 `yaml:"seed"`
	Parallelism int   `yaml:"parallelism" validate:"gte=0"`

	Data struct {
		Path        string               `yaml:"path"`
		LabelColumn string               `yaml:"labelColumn"`
		Synthetic   data.SyntheticConfig `yaml:"synthetic" validate:"-"`
	} `yaml:"data"`

	// Sizes overrides the ensemble size or fold count of named transforms.
	Sizes map[string]int `yaml:"sizes" validate:"dive,gte=1"`

	Output struct {
		Scores     string `yaml:"scores"`
		Candidates string `yaml:"candidates"`
		ROCImage   string `yaml:"rocImage"`
		// Store is a BoltDB file that accumulates a summary of every run.
		Store string `yaml:"store"`
	} `yaml:"output"`
}

func Default() Settings {
	var s Settings
	s.Seed = 42
	s.Data.Synthetic = data.DefaultSynthetic()
	s.Output.Scores = "data/transform_scores.csv"
	s.Output.Candidates = "data/transform_candidates.csv"
	return s
}

// Load reads path over the defaults; an empty path returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var validate = validator.New()

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.Data.Path == "" {
		if err := validate.Struct(s.Data.Synthetic); err != nil {
			return fmt.Errorf("invalid synthetic data config: %w", err)
		}
	}
	known := map[string]bool{}
	for _, c := range transform.DefaultMenu() { known[c.Name] = true }
	for name := range s.Sizes {
		if !known[name] {
			return fmt.Errorf("invalid config: unknown transform %q in sizes", name)
		}
	}
	return nil
}

// Menu applies the size overrides to the default menu.
func (s Settings) Menu() []transform.Config {
	menu := transform.DefaultMenu()
	for i := range menu {
		if n, ok := s.Sizes[menu[i].Name]; ok { menu[i].Size = n }
	}
	return menu
}

// Options turns the settings into selector options.
func (s Settings) Options() []transform.Option {
	opts := []transform.Option{transform.WithSeed(s.Seed), transform.WithMenu(s.Menu())}
	if s.Parallelism > 0 { opts = append(opts, transform.WithParallelism(s.Parallelism)) }
	return opts
}
