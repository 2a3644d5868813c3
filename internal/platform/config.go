package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/forge/pkg/adapters/s3"
	"github.com/aretw0/forge/pkg/core"
)

// Config mirrors forge.yaml. Every field is optional.
type Config struct {
	Backend      string       `yaml:"backend"`
	DataDir      string       `yaml:"data_dir"`
	StorageKey   string       `yaml:"storage_key"`
	Locale       string       `yaml:"locale"`
	PreviewStyle string       `yaml:"preview_style"`
	DSN          string       `yaml:"dsn"`
	Quota        int          `yaml:"quota"`
	CopyCommand  string       `yaml:"copy_command"`
	S3           S3Config     `yaml:"s3"`
	Export       ExportConfig `yaml:"export"`
}

// S3Config is the s3 section of forge.yaml.
// Credentials are never read from the file; they come from the AWS chain.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"path_style"`
}

// ExportConfig holds the defaults of `forge export`.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Match  string `yaml:"match"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Backend:      string(BackendFS),
		DataDir:      DefaultDataDir,
		StorageKey:   core.DefaultStorageKey,
		Locale:       "en",
		PreviewStyle: "auto",
		Export:       ExportConfig{Dir: "use-cases", Format: "md"},
	}
}

// LoadConfig reads forge.yaml from root over the defaults.
// A missing file is not an error.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := decodeConfig(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from FORGE_* environment variables.
func (c *Config) ApplyEnv() error {
	setString := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	setString(&c.Backend, "FORGE_BACKEND")
	setString(&c.DataDir, "FORGE_DATA_DIR")
	setString(&c.StorageKey, "FORGE_STORAGE_KEY")
	setString(&c.Locale, "FORGE_LOCALE")
	setString(&c.PreviewStyle, "FORGE_PREVIEW_STYLE")
	setString(&c.DSN, "FORGE_DSN")
	setString(&c.CopyCommand, "FORGE_COPY_COMMAND")
	setString(&c.Export.Dir, "FORGE_EXPORT_DIR")

	if v := os.Getenv("FORGE_QUOTA"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORGE_QUOTA: %w", err)
		}
		c.Quota = n
	}

	env := s3.ConfigFromEnv()
	if env.Bucket != "" {
		c.S3.Bucket = env.Bucket
	}
	if env.Region != "" {
		c.S3.Region = env.Region
	}
	if env.Endpoint != "" {
		c.S3.Endpoint = env.Endpoint
	}
	if env.Prefix != "" {
		c.S3.Prefix = env.Prefix
	}
	if os.Getenv("FORGE_S3_PATH_STYLE") != "" {
		c.S3.PathStyle = env.PathStyle
	}
	return nil
}

// Validate checks the backend name.
func (c Config) Validate() error {
	_, err := ParseBackend(c.Backend)
	return err
}

// Options converts the configuration into functional options.
// Relative directories are resolved against root.
func (c Config) Options(root string) []Option {
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(root, dataDir)
	}

	opts := []Option{
		WithDataDir(dataDir),
		WithLocale(c.Locale),
		WithDSN(c.DSN),
		WithQuota(c.Quota),
		WithS3(s3.Config{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			Prefix:    c.S3.Prefix,
			PathStyle: c.S3.PathStyle,
		}),
	}
	if c.Backend != "" {
		opts = append(opts, WithBackend(Backend(strings.ToLower(c.Backend))))
	}
	if c.StorageKey != "" {
		opts = append(opts, WithStorageKey(c.StorageKey))
	}
	return opts
}

// ExportDir returns the export directory resolved against root.
func (c Config) ExportDir(root string) string {
	if c.Export.Dir == "" || filepath.IsAbs(c.Export.Dir) {
		return c.Export.Dir
	}
	return filepath.Join(root, c.Export.Dir)
}

// ParseBackend validates a backend name.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if b == "" {
		return BackendFS, nil
	}
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q", name)
}
