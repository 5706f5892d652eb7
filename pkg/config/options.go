package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/ghostchat/pkg/logging"
)

// Options is the startup configuration of the process. It is read once from
// a YAML file and CLI flags; it is distinct from the persisted window state.
type Options struct {
	// Version of the running application, compared against update releases
	Version string `yaml:"version" json:"version"`

	// Persisted state file (default ~/.ghostchat/config.json)
	StorePath string `yaml:"store_path" json:"store_path"`

	// Watch the store file and reload on external edits
	WatchStore bool `yaml:"watch_store" json:"watch_store"`

	// Content entry points
	IndexHTML    string `yaml:"index_html" json:"index_html"`
	DevServerURL string `yaml:"dev_server_url" json:"dev_server_url"`

	// Update backend
	ForceDevUpdateConfig bool          `yaml:"force_dev_update_config" json:"force_dev_update_config"`
	Updates              UpdateOptions `yaml:"updates" json:"updates"`

	// CallStore access policy
	StoreAccess StoreAccessOptions `yaml:"store_access" json:"store_access"`

	// Tracing export
	Telemetry TelemetryOptions `yaml:"telemetry" json:"telemetry"`

	// Minimum severity written to the session log: debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// UpdateOptions configures the release backend.
type UpdateOptions struct {
	Owner       string `yaml:"owner" json:"owner"`
	Repo        string `yaml:"repo" json:"repo"`
	APIBaseURL  string `yaml:"api_base_url" json:"api_base_url"`
	DownloadDir string `yaml:"download_dir" json:"download_dir"`
}

// StoreAccessOptions lists glob patterns over dotted store keys.
type StoreAccessOptions struct {
	Allowed []string `yaml:"allowed" json:"allowed"`
	Denied  []string `yaml:"denied" json:"denied"`
}

// TelemetryOptions configures OTLP trace export. Empty endpoint disables it.
type TelemetryOptions struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// DefaultOptions returns the options used when no file is given.
func DefaultOptions() *Options {
	return &Options{
		Version:    "0.1.0",
		WatchStore: true,
		IndexHTML:  "dist/index.html",
		LogLevel:   "info",
		Updates: UpdateOptions{
			Owner:      "entrhq",
			Repo:       "ghostchat",
			APIBaseURL: "https://api.github.com",
		},
		Telemetry: TelemetryOptions{
			ServiceName: "ghostchat",
		},
	}
}

// LoadOptions reads a YAML options file over the defaults.
// An empty path returns the defaults.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse options file: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options in %s: %w", path, err)
	}

	return opts, nil
}

// Validate validates the options
func (o *Options) Validate() error {
	if o.Version == "" {
		return fmt.Errorf("version is required")
	}

	if o.IndexHTML == "" && o.DevServerURL == "" {
		return fmt.Errorf("either index_html or dev_server_url is required")
	}

	if _, err := o.AccessPolicy(); err != nil {
		return err
	}

	if _, err := o.Level(); err != nil {
		return err
	}

	return nil
}

// AccessPolicy compiles the store access patterns.
func (o *Options) AccessPolicy() (*AccessPolicy, error) {
	return NewAccessPolicy(o.StoreAccess.Allowed, o.StoreAccess.Denied)
}

// Level parses LogLevel. Empty means info.
func (o *Options) Level() (logging.Level, error) {
	if o.LogLevel == "" {
		return logging.LevelInfo, nil
	}
	return logging.ParseLevel(o.LogLevel)
}
