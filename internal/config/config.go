// Loads the notiondoc configuration file and credentials.

// Package config holds the notiondoc settings: a YAML file for generation
// options and the Notion token from the environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/maruel/notiondoc/internal/notion"
	"github.com/maruel/notiondoc/internal/render"
	"github.com/maruel/notiondoc/internal/tree"
)

// FileName is the name of the configuration file.
const FileName = "notiondoc.yaml"

// TokenEnv is the environment variable holding the integration token.
const TokenEnv = "NOTION_TOKEN"

// Root orders accepted in the configuration file.
const (
	RootOrderReverse   = "reverse"
	RootOrderDiscovery = "discovery"
)

// ErrNoToken is returned when no integration token is configured.
var ErrNoToken = errors.New(TokenEnv + " is not set; create an integration at https://www.notion.so/my-integrations and export its token")

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all notiondoc settings.
type Config struct {
	// WorkspaceName overrides the name reported by the integration.
	WorkspaceName string `yaml:"workspace_name" jsonschema:"description=Name used in titles and file names"`
	// OutputDir receives the generated documents.
	OutputDir string `yaml:"output_dir" jsonschema:"description=Directory receiving the generated documents"`
	// Formats lists the formats to generate.
	Formats       []string `yaml:"formats" jsonschema:"description=Formats to generate"`
	IncludeSchema bool     `yaml:"include_schema" jsonschema:"description=Document database properties and data sources"`
	IncludeItems  bool     `yaml:"include_items" jsonschema:"description=Document the pages of every database"`
	// APIVersion selects the legacy database API or the data source API.
	APIVersion        string  `yaml:"api_version" jsonschema:"enum=2022-06-28,enum=2025-09-03"`
	RequestsPerSecond float64 `yaml:"requests_per_second" jsonschema:"description=Request pacing; negative disables it"`
	Concurrency       int     `yaml:"concurrency" jsonschema:"minimum=1,maximum=32"`
	// RootOrder is "reverse" (last discovered first) or "discovery".
	RootOrder string `yaml:"root_order" jsonschema:"enum=reverse,enum=discovery"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:         ".",
		Formats:           []string{string(render.FormatMarkdown), string(render.FormatTree)},
		IncludeSchema:     true,
		APIVersion:        notion.APIVersionDataSources,
		RequestsPerSecond: notion.DefaultRequestsPerSecond,
		Concurrency:       notion.DefaultConcurrency,
		RootOrder:         RootOrderReverse,
	}
}

// Load reads FileName from dir, falling back to defaults when it does not
// exist.
func Load(dir string) (*Config, error) {
	return LoadFromPath(filepath.Join(dir, FileName))
}

// LoadFromPath reads the configuration at path over the defaults and
// validates the result. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the configuration file chosen by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that config values are valid.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Formats, validation.Required, validation.Each(validation.By(validFormat))),
		validation.Field(&c.APIVersion, validation.Required, validation.In(notion.APIVersionLegacy, notion.APIVersionDataSources)),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(32)),
		validation.Field(&c.RootOrder, validation.In(RootOrderReverse, RootOrderDiscovery)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validFormat(v any) error {
	s, _ := v.(string)
	_, err := render.ParseFormat(s)
	return err
}

// OutputFormats returns the parsed Formats.
func (c *Config) OutputFormats() ([]render.Format, error) {
	return render.ParseFormats(c.Formats)
}

// TreeOptions returns the forest options selected by RootOrder.
func (c *Config) TreeOptions() tree.Options {
	if c.RootOrder == RootOrderDiscovery {
		return tree.Options{RootOrder: tree.RootOrderDiscovery}
	}
	return tree.Options{RootOrder: tree.RootOrderReverse}
}

// ClientOptions returns the Notion client options.
func (c *Config) ClientOptions() notion.ClientOptions {
	return notion.ClientOptions{APIVersion: c.APIVersion, RequestsPerSecond: c.RequestsPerSecond}
}

// FetchOptions returns the fetch options. The API shape follows APIVersion
// through ClientOptions.
func (c *Config) FetchOptions() notion.FetchOptions {
	return notion.FetchOptions{
		IncludeSchema: c.IncludeSchema,
		IncludeItems:  c.IncludeItems,
		Concurrency:   c.Concurrency,
	}
}

// Token returns the integration token from the environment, then from the
// .env file in dir.
func Token(dir string) (string, error) {
	if t := strings.TrimSpace(os.Getenv(TokenEnv)); t != "" {
		return t, nil
	}
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read .env: %w", err)
	}
	if t := strings.TrimSpace(env[TokenEnv]); t != "" {
		return t, nil
	}
	return "", ErrNoToken
}
