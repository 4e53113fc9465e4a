// Package config loads the command line tool's settings from an optional
// YAML file and SLIDEKIT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SLIDEKIT_ELASTIC_INDEX.
const EnvPrefix = "SLIDEKIT"

// Config holds all settings.
type Config struct {
	Elastic Elastic `mapstructure:"elastic"`
	Editor  Editor  `mapstructure:"editor"`
	Minio   Minio   `mapstructure:"minio"`
	Log     Log     `mapstructure:"log"`
}

// Elastic configures the search index client.
type Elastic struct {
	Addresses      []string      `mapstructure:"addresses"`
	CloudID        string        `mapstructure:"cloud_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Index          string        `mapstructure:"index"`
	BatchSize      int           `mapstructure:"batch_size"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Editor configures presentation editing.
type Editor struct {
	TemplateSlide      int  `mapstructure:"template_slide"`
	MaxContentChars    int  `mapstructure:"max_content_chars"`
	PropagateTransform bool `mapstructure:"propagate_transform"`
}

// Minio locates the bucket documents are read from.
type Minio struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// Log configures logging.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"elastic.addresses":          []string{"http://localhost:9200"},
	"elastic.cloud_id":           "",
	"elastic.username":           "",
	"elastic.password":           "",
	"elastic.index":              "ppt",
	"elastic.batch_size":         1000,
	"elastic.max_retries":        10,
	"elastic.request_timeout":    "900s",
	"editor.template_slide":      1,
	"editor.max_content_chars":   2250,
	"editor.propagate_transform": true,
	"minio.endpoint":             "",
	"minio.access_key":           "",
	"minio.secret_key":           "",
	"minio.secure":               false,
	"minio.region":               "",
	"minio.bucket":               "",
	"minio.prefix":               "",
	"log.level":                  "info",
	"log.format":                 "text",
}

// Names accepted without the prefix, for compatibility with existing
// deployments.
var legacyEnv = map[string]string{
	"elastic.cloud_id": "ELASTIC_CLOUD_ID",
	"elastic.username": "ELASTIC_USER",
	"elastic.password": "ELASTIC_PASSWORD",
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, name)
	}
	return v
}

// Load reads path when non-empty and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Elastic.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("elastic.batch_size must be positive, got %d", c.Elastic.BatchSize))
	}
	if c.Elastic.Index == "" {
		errs = append(errs, errors.New("elastic.index is empty"))
	}
	if c.Editor.TemplateSlide < 0 {
		errs = append(errs, fmt.Errorf("editor.template_slide must not be negative, got %d", c.Editor.TemplateSlide))
	}
	if c.Editor.MaxContentChars <= 0 {
		errs = append(errs, fmt.Errorf("editor.max_content_chars must be positive, got %d", c.Editor.MaxContentChars))
	}
	return errors.Join(errs...)
}
