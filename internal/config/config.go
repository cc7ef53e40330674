package config

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/formstate/internal/errors"
	"github.com/vango-dev/formstate/pkg/form"
	"github.com/vango-dev/formstate/pkg/rules"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "formstate.yaml"

	// DefaultAddr is the default listen address of the host.
	DefaultAddr = "localhost:8080"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultBufferSize is the default WebSocket read and write buffer size.
	DefaultBufferSize = 1024

	// EnvAddr overrides Server.Addr when set.
	EnvAddr = "FORMSTATE_ADDR"
)

// ErrInvalidConfig matches every configuration error with errors.Is.
var ErrInvalidConfig = errors.New(errors.CodeInvalidConfig)

// Validator kinds.
const (
	KindFieldsEqual = "fields_equal"
	KindAnyRequired = "any_required"
	KindNoneInvalid = "none_invalid"
)

// Config is a form definition plus the settings of the host serving it.
type Config struct {
	// Name identifies the form in logs and metrics.
	Name string `yaml:"name,omitempty"`

	// Fields are registered in order.
	Fields []FieldConfig `yaml:"fields"`

	// Validators are global validators, registered after the fields.
	Validators []ValidatorConfig `yaml:"validators,omitempty"`

	// Server contains host settings.
	Server ServerConfig `yaml:"server,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// FieldConfig describes one control.
type FieldConfig struct {
	// Key is the control key. Dotted keys nest in ReadNested.
	Key string `yaml:"key"`

	// Initial is the initial value.
	Initial any `yaml:"initial,omitempty"`

	// Rules is a rule list in rules.Parse syntax, e.g. "required,email".
	Rules string `yaml:"rules,omitempty"`
}

// ValidatorConfig describes one global validator.
type ValidatorConfig struct {
	Key string `yaml:"key"`

	// Kind is one of fields_equal, any_required or none_invalid.
	Kind string `yaml:"kind"`

	// Fields are the controls the validator reads. Ignored by none_invalid,
	// which reads every control.
	Fields []string `yaml:"fields,omitempty"`

	// Rule is the rule none_invalid applies to every control.
	Rule string `yaml:"rule,omitempty"`

	// Message replaces the default message.
	Message string `yaml:"message,omitempty"`
}

// ServerConfig contains host settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`

	// MetricsPath is where metrics are served. Empty uses the default.
	MetricsPath string `yaml:"metrics_path,omitempty"`

	// ReadBufferSize and WriteBufferSize size WebSocket buffers.
	ReadBufferSize  int `yaml:"read_buffer,omitempty"`
	WriteBufferSize int `yaml:"write_buffer,omitempty"`

	// AsyncRate limits asynchronous validations per second. Zero means no
	// limit.
	AsyncRate float64 `yaml:"async_rate,omitempty"`

	// AsyncBurst is the burst allowed above AsyncRate.
	AsyncBurst int `yaml:"async_burst,omitempty"`
}

// New returns an empty configuration with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads ConfigFileName from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads a configuration file, applies defaults and environment
// overrides, and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeInvalidConfig).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass its path with --config")
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes YAML, applies defaults and environment overrides, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that the file is valid YAML")
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path the config was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "form"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = DefaultBufferSize
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = DefaultBufferSize
	}
	if c.Server.AsyncRate > 0 && c.Server.AsyncBurst == 0 {
		c.Server.AsyncBurst = 1
	}
}

func (c *Config) applyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks keys, rule syntax and validator references.
func (c *Config) Validate() error {
	fields := make(map[string]struct{}, len(c.Fields))
	for i, f := range c.Fields {
		if f.Key == "" {
			return invalid(fmt.Sprintf("fields[%d]: key is required", i))
		}
		if _, dup := fields[f.Key]; dup {
			return invalid(fmt.Sprintf("fields[%d]: duplicate key %q", i, f.Key))
		}
		fields[f.Key] = struct{}{}
		if _, err := rules.Parse(f.Rules); err != nil {
			return invalid(fmt.Sprintf("field %q: %v", f.Key, err))
		}
	}

	seen := make(map[string]struct{}, len(c.Validators))
	for i, v := range c.Validators {
		if v.Key == "" {
			return invalid(fmt.Sprintf("validators[%d]: key is required", i))
		}
		if _, dup := seen[v.Key]; dup {
			return invalid(fmt.Sprintf("validators[%d]: duplicate key %q", i, v.Key))
		}
		seen[v.Key] = struct{}{}

		switch v.Kind {
		case KindFieldsEqual, KindAnyRequired:
			if len(v.Fields) == 0 {
				return invalid(fmt.Sprintf("validator %q: fields are required", v.Key))
			}
			for _, k := range v.Fields {
				if _, ok := fields[k]; !ok {
					return invalid(fmt.Sprintf("validator %q: unknown field %q", v.Key, k))
				}
			}
		case KindNoneInvalid:
			rs, err := rules.Parse(v.Rule)
			if err != nil {
				return invalid(fmt.Sprintf("validator %q: %v", v.Key, err))
			}
			if len(rs) != 1 {
				return invalid(fmt.Sprintf("validator %q: exactly one rule is required", v.Key))
			}
			if rules.ReadsControls(rs...) {
				return invalid(fmt.Sprintf("validator %q: rule %q reads other fields and cannot check every field", v.Key, v.Rule))
			}
		default:
			return invalid(fmt.Sprintf("validator %q: unknown kind %q", v.Key, v.Kind))
		}
	}

	if c.Server.ReadBufferSize < 0 || c.Server.WriteBufferSize < 0 {
		return invalid("server: buffer sizes must not be negative")
	}
	if c.Server.AsyncRate < 0 {
		return invalid("server: async_rate must not be negative")
	}
	return nil
}

func invalid(detail string) error {
	return errors.New(errors.CodeInvalidConfig).WithDetail(detail)
}

// Options returns form options derived from the server settings.
func (c *Config) Options() []form.Option {
	var opts []form.Option
	if c.Server.AsyncRate > 0 {
		opts = append(opts, form.WithAsyncBudget(rate.Limit(c.Server.AsyncRate), c.Server.AsyncBurst))
	}
	return opts
}

// Build creates a form from the definition. opts are applied after the
// options from Options.
func (c *Config) Build(opts ...form.Option) (*form.Form, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	f := form.New(append(c.Options(), opts...)...)
	for _, fc := range c.Fields {
		var v form.Validator
		if fc.Rules != "" {
			v = rules.Validator(rules.MustParse(fc.Rules)...)
		}
		f.Register(fc.Key, fc.Initial, v)
	}

	for _, vc := range c.Validators {
		var gv form.GlobalValidator
		switch vc.Kind {
		case KindFieldsEqual:
			gv = rules.FieldsEqual(vc.Message, vc.Fields...)
		case KindAnyRequired:
			gv = rules.AnyRequired(vc.Message, vc.Fields...)
		case KindNoneInvalid:
			gv = rules.NoneInvalid(rules.MustParse(vc.Rule)[0], vc.Message)
		}
		if _, err := f.RegisterValidator(vc.Key, gv); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
