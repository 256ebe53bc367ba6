// Package config loads schreiber.toml.
//
// Lookup order, later wins: built-in defaults, schreiber.toml found by
// walking up from the start directory, a .env file next to it, the
// process environment (SCHREIBER_*). Command-line flags are applied by the
// caller on top of the returned Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// FileName is the manifest schreiber looks for.
const FileName = "schreiber.toml"

// ErrNotFound is returned by LoadFile when the manifest does not exist.
var ErrNotFound = errors.New("config: " + FileName + " not found")

type Config struct {
	// Path of the manifest that was read; empty when only defaults apply.
	Path string `toml:"-"`

	Check  CheckConfig  `toml:"check"`
	Output OutputConfig `toml:"output"`
	Trace  TraceConfig  `toml:"trace"`
}

type CheckConfig struct {
	Index            string `toml:"index"`
	Format           string `toml:"format" validate:"oneof=pretty short json sarif"`
	MaxDiagnostics   int    `toml:"max_diagnostics" validate:"gte=0"`
	WarningsAsErrors bool   `toml:"warnings_as_errors"`
	NoWarnings       bool   `toml:"no_warnings"`
	WithNotes        bool   `toml:"with_notes"`
	TabWidth         int    `toml:"tab_width" validate:"min=1,max=16"`
	Undocumented     bool   `toml:"undocumented"`
	Jobs             int    `toml:"jobs" validate:"gte=0"`
}

type OutputConfig struct {
	PathMode string `toml:"path_mode" validate:"oneof=auto absolute relative basename"`
	Color    string `toml:"color" validate:"oneof=auto on off"`
}

type TraceConfig struct {
	Level  string `toml:"level" validate:"oneof=off phase detail debug"`
	Mode   string `toml:"mode" validate:"oneof=stream ring both"`
	Format string `toml:"format" validate:"oneof=auto text ndjson"`
	Output string `toml:"output"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Check: CheckConfig{
			Format:         "pretty",
			MaxDiagnostics: 100,
			WithNotes:      true,
			TabWidth:       8,
			Undocumented:   true,
		},
		Output: OutputConfig{
			PathMode: "auto",
			Color:    "auto",
		},
		Trace: TraceConfig{
			Level:  "off",
			Mode:   "stream",
			Format: "auto",
		},
	}
}

// Find walks up from startDir to locate schreiber.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load resolves the configuration for startDir. A missing manifest is not
// an error; defaults and the environment still apply.
func Load(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	envDir := startDir
	if ok {
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
		envDir = filepath.Dir(path)
	}

	env, err := Environ(envDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes one manifest over the defaults. Keys that are absent
// keep their default value.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	cfg := Default()
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	// index paths in the manifest are relative to the manifest
	if meta.IsDefined("check", "index") && cfg.Check.Index != "" && !filepath.IsAbs(cfg.Check.Index) {
		cfg.Check.Index = filepath.Join(filepath.Dir(path), filepath.FromSlash(cfg.Check.Index))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Environ collects SCHREIBER_* variables from dir/.env and the process
// environment; the process environment wins.
func Environ(dir string) (map[string]string, error) {
	env := make(map[string]string)
	dotenv := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		vars, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dotenv, err)
		}
		for k, v := range vars {
			if strings.HasPrefix(k, envPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

const envPrefix = "SCHREIBER_"

type envBinding struct {
	key string
	set func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"SCHREIBER_INDEX", func(c *Config, v string) error { c.Check.Index = v; return nil }},
	{"SCHREIBER_FORMAT", func(c *Config, v string) error { c.Check.Format = v; return nil }},
	{"SCHREIBER_MAX_DIAGNOSTICS", intVar(func(c *Config) *int { return &c.Check.MaxDiagnostics })},
	{"SCHREIBER_WARNINGS_AS_ERRORS", boolVar(func(c *Config) *bool { return &c.Check.WarningsAsErrors })},
	{"SCHREIBER_NO_WARNINGS", boolVar(func(c *Config) *bool { return &c.Check.NoWarnings })},
	{"SCHREIBER_WITH_NOTES", boolVar(func(c *Config) *bool { return &c.Check.WithNotes })},
	{"SCHREIBER_TAB_WIDTH", intVar(func(c *Config) *int { return &c.Check.TabWidth })},
	{"SCHREIBER_UNDOCUMENTED", boolVar(func(c *Config) *bool { return &c.Check.Undocumented })},
	{"SCHREIBER_JOBS", intVar(func(c *Config) *int { return &c.Check.Jobs })},
	{"SCHREIBER_PATH_MODE", func(c *Config, v string) error { c.Output.PathMode = v; return nil }},
	{"SCHREIBER_COLOR", func(c *Config, v string) error { c.Output.Color = v; return nil }},
	{"SCHREIBER_TRACE_LEVEL", func(c *Config, v string) error { c.Trace.Level = v; return nil }},
	{"SCHREIBER_TRACE_MODE", func(c *Config, v string) error { c.Trace.Mode = v; return nil }},
	{"SCHREIBER_TRACE_FORMAT", func(c *Config, v string) error { c.Trace.Format = v; return nil }},
	{"SCHREIBER_TRACE_OUTPUT", func(c *Config, v string) error { c.Trace.Output = v; return nil }},
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolVar(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// ApplyEnv overrides fields from SCHREIBER_* variables. Unknown variables
// with the prefix are ignored.
func (c *Config) ApplyEnv(env map[string]string) error {
	for _, b := range envBindings {
		v, ok := env[b.key]
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("config: %s=%q: %w", b.key, v, err)
		}
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		// Namespace is "Config.check.tab_width"
		_, key, _ := strings.Cut(ve.Namespace(), ".")
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s)", key, ve.Value(), describeTag(ve)))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "want one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "want at least " + fe.Param()
	case "max":
		return "want at most " + fe.Param()
	case "gte":
		return "want " + fe.Param() + " or more"
	}
	return fe.Tag()
}
