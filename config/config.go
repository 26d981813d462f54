package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/view"
	"gopkg.in/yaml.v2"
)

const DefaultPath = "~/.flowview.yaml"

// namespacePattern accepts an XML NCName prefix or the empty string.
var namespacePattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.-]*)?$`)

type Config struct {
	// Namespace is the element prefix the extractor scans for.
	Namespace string `yaml:"namespace"`
	// AutoNamespace uses the prefix declared by each document instead.
	AutoNamespace bool          `yaml:"auto_namespace"`
	MatchTimeout  time.Duration `yaml:"match_timeout"`

	Mode string `yaml:"mode"`
	Zoom int    `yaml:"zoom"`

	Listen      string        `yaml:"listen"`
	MaxSessions int           `yaml:"max_sessions"`
	MaxBody     int64         `yaml:"max_body"`
	SessionTTL  time.Duration `yaml:"session_ttl"`

	Workers   int    `yaml:"workers"`
	ExportDir string `yaml:"export_dir"`
	LogLevel  string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Namespace:    bpmn.DefaultNamespace,
		MatchTimeout: bpmn.DefaultMatchTimeout,
		Mode:         view.Visual.String(),
		Zoom:         view.DefaultZoom,
		Listen:       "127.0.0.1:8620",
		MaxSessions:  1024,
		MaxBody:      4 << 20,
		SessionTTL:   30 * time.Minute,
		Workers:      8,
		ExportDir:    ".",
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. A missing file at DefaultPath is not an
// error; any other missing path is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", expanded, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", expanded, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Namespace, validation.Match(namespacePattern)),
		validation.Field(&c.MatchTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Mode, validation.Required, validation.In("visual", "source", "xml")),
		validation.Field(&c.Zoom, validation.Required, validation.By(validZoom)),
		validation.Field(&c.Listen, validation.Required),
		validation.Field(&c.MaxSessions, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxBody, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.SessionTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "fatal")),
	)
}

func validZoom(value interface{}) error {
	zoom, _ := value.(int)
	if !view.ValidZoom(zoom) {
		return fmt.Errorf("must be a multiple of %d between %d and %d", view.ZoomStep, view.MinZoom, view.MaxZoom)
	}
	return nil
}

// ViewState returns the initial view state described by the config.
func (c *Config) ViewState() *view.State {
	st := view.NewState()
	if mode, err := view.ParseMode(c.Mode); err == nil {
		st.SetMode(mode)
	}
	st.SetZoom(c.Zoom)
	return st
}

func (c *Config) ExtractorOptions() []bpmn.Option {
	return []bpmn.Option{
		bpmn.WithNamespace(c.Namespace),
		bpmn.WithMatchTimeout(c.MatchTimeout),
	}
}
