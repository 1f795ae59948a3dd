// Package config resolves run configuration once at startup. Values come from
// three layers (process environment, ~/.gitmeup.env, ./.env) merged by a pure
// function, then CLI flags are applied on top.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Yates-Labs/gitmeup/internal/proposal"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const (
	// GlobalFileName lives in the user's home directory and usually holds secrets.
	GlobalFileName = ".gitmeup.env"

	// ProjectFileName lives in the directory gitmeup is run from.
	ProjectFileName = ".env"

	EnvModel    = "GITMEUP_MODEL"
	EnvProvider = "GITMEUP_PROVIDER"
)

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrMissingModel  = errors.New("missing model name")
	ErrInvalidFile   = errors.New("invalid env file")
)

// Layer is one set of KEY=VALUE settings.
type Layer map[string]string

// Sources are the three configuration layers in precedence order.
type Sources struct {
	Env     Layer
	Global  Layer
	Project Layer
}

// Overrides are values given on the command line. A nil field was not given;
// a non-nil field wins over every layer, even when it is empty.
type Overrides struct {
	Provider *string
	Model    *string
	APIKey   *string
}

// Config is the resolved configuration for one run.
type Config struct {
	Provider proposal.Provider
	Model    string
	APIKey   string

	// Apply executes the plan instead of only printing it
	Apply bool

	// Unrestricted disables the command allow-list
	Unrestricted bool

	Verbose    bool
	ExportPath string
}

// LLMConfig returns the provider configuration for this run.
func (c *Config) LLMConfig() proposal.LLMConfig {
	llm := proposal.DefaultLLMConfig(c.Provider)
	llm.Model = c.Model
	llm.APIKey = c.APIKey
	return llm
}

// Merge combines layers so that the first layer defining a key wins. A key
// set to an empty value still counts as defined.
func Merge(layers ...Layer) Layer {
	merged := make(Layer)
	for _, layer := range layers {
		for k, v := range layer {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged
}

// Merged applies the documented precedence: environment, then global file,
// then project file.
func (s Sources) Merged() Layer {
	return Merge(s.Env, s.Global, s.Project)
}

// Resolve builds a Config from the merged layers and CLI overrides. CLI values
// always win. A missing API key is an error.
func Resolve(sources Sources, overrides Overrides) (*Config, error) {
	values := sources.Merged()

	provider, err := proposal.ParseProvider(overrideOr(overrides.Provider, values[EnvProvider]))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider: provider,
		Model:    overrideOr(overrides.Model, values[EnvModel], provider.DefaultModel()),
		APIKey:   overrideOr(overrides.APIKey, values[provider.APIKeyEnv()]),
	}

	if cfg.Model == "" {
		return nil, errors.Mark(
			errors.Newf("Missing model name. Set %s or use --model.", EnvModel),
			ErrMissingModel)
	}

	if cfg.APIKey == "" {
		return nil, errors.Mark(
			errors.Newf("Missing %s API key. Set %s or use --api-key.", provider.DisplayName(), provider.APIKeyEnv()),
			ErrMissingAPIKey)
	}

	return cfg, nil
}

// overrideOr returns the CLI value when one was given, otherwise the first
// non-blank fallback.
func overrideOr(override *string, fallbacks ...string) string {
	if override != nil {
		return strings.TrimSpace(*override)
	}
	return firstNonEmpty(fallbacks...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// EnvironLayer converts os.Environ-style entries into a Layer.
func EnvironLayer(environ []string) Layer {
	layer := make(Layer, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		layer[k] = v
	}
	return layer
}

// ReadFile reads an env file with godotenv. A missing file is an empty layer.
func ReadFile(path string) (Layer, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layer{}, nil
		}
		return nil, errors.Mark(errors.Wrapf(err, "read %s", path), ErrInvalidFile)
	}
	return Layer(values), nil
}

// LoadSources reads all three layers. home may be empty when it cannot be
// determined, in which case the global file is skipped.
func LoadSources(home, dir string, environ []string) (Sources, error) {
	sources := Sources{Env: EnvironLayer(environ), Global: Layer{}}

	if home != "" {
		global, err := ReadFile(filepath.Join(home, GlobalFileName))
		if err != nil {
			return Sources{}, err
		}
		sources.Global = global
	}

	project, err := ReadFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		return Sources{}, err
	}
	sources.Project = project

	return sources, nil
}

// LoadDefaultSources reads the layers for the current process.
func LoadDefaultSources() (Sources, error) {
	home, _ := os.UserHomeDir()
	dir, err := os.Getwd()
	if err != nil {
		return Sources{}, errors.Wrap(err, "get working directory")
	}
	return LoadSources(home, dir, os.Environ())
}
