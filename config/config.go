// Package config assembles the CLI configuration from defaults, an optional
// JSON file, the environment and flags, in that order of precedence.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caio-sobreiro/bidsheuristic/flywheel"
	"github.com/caio-sobreiro/bidsheuristic/sessions"
)

// Environment variables read by EnvOverlay.
const (
	EnvAPIKey   = "FW_API_KEY"
	EnvAPIURL   = "FW_API_URL"
	EnvProject  = "HEURISTIC_PROJECT"
	EnvDICOMDir = "HEURISTIC_DICOM_DIR"
	EnvLogLevel = "HEURISTIC_LOG_LEVEL"
)

// Config is the CLI configuration.
type Config struct {
	Project  string `json:"project"`
	DICOMDir string `json:"dicom_dir"`
	APIURL   string `json:"api_url"`
	APIKey   string `json:"api_key"`
	LogLevel string `json:"log_level"`

	// SkipIndex disables the session index (no data service calls).
	SkipIndex bool `json:"skip_index"`

	// Index overrides the project's built-in session index options field by
	// field; empty fields keep the built-in value.
	Index *sessions.Options `json:"index,omitempty"`
}

// Defaults returns the base configuration.
func Defaults() Config {
	return Config{LogLevel: "info"}
}

// LoadJSON parses a config from path or from raw bytes. Unknown fields are
// rejected.
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("config: no source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// EnvOverlay builds a partial config from KEY=VALUE pairs such as os.Environ().
func EnvOverlay(env []string) Config {
	var cfg Config
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch k {
		case EnvAPIKey:
			cfg.APIKey = v
		case EnvAPIURL:
			cfg.APIURL = v
		case EnvProject:
			cfg.Project = v
		case EnvDICOMDir:
			cfg.DICOMDir = v
		case EnvLogLevel:
			cfg.LogLevel = v
		}
	}
	return cfg
}

// Merge overlays over onto base. Empty strings do not override; SkipIndex
// can only be switched on.
func Merge(base, over Config) Config {
	out := base
	if over.Project != "" {
		out.Project = over.Project
	}
	if over.DICOMDir != "" {
		out.DICOMDir = over.DICOMDir
	}
	if over.APIURL != "" {
		out.APIURL = over.APIURL
	}
	if over.APIKey != "" {
		out.APIKey = over.APIKey
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	if over.SkipIndex {
		out.SkipIndex = true
	}
	if over.Index != nil {
		idx := *over.Index
		out.Index = &idx
	}
	return out
}

// ResolveAPI returns the API base URL and bare key. A site-qualified key
// ("host:secret") supplies the URL when none is configured.
func (c Config) ResolveAPI() (baseURL, key string) {
	baseURL, key = flywheel.SplitAPIKey(c.APIKey)
	if c.APIURL != "" {
		baseURL = c.APIURL
	}
	return baseURL, key
}

// IndexOptions overlays the configured index overrides onto builtin.
func (c Config) IndexOptions(builtin sessions.Options) sessions.Options {
	out := builtin
	if c.Index == nil {
		return out
	}
	o := c.Index
	if o.Project != "" {
		out.Project = o.Project
	}
	if o.Prefix != "" {
		out.Prefix = o.Prefix
	}
	if o.SortKey != "" {
		out.SortKey = o.SortKey
	}
	if o.FirstOrdinal != 0 {
		out.FirstOrdinal = o.FirstOrdinal
	}
	if o.Subjects != "" {
		out.Subjects = o.Subjects
	}
	if o.SubjectPad != 0 {
		out.SubjectPad = o.SubjectPad
	}
	return out
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: bad log level %q", s)
	}
	return lvl, nil
}

// Validate checks that the configuration can drive a run.
func Validate(c Config) error {
	var problems []string
	if c.Project == "" {
		problems = append(problems, "project is required")
	}
	if c.DICOMDir == "" {
		problems = append(problems, "dicom_dir is required")
	}
	if !c.SkipIndex {
		baseURL, key := c.ResolveAPI()
		if key == "" {
			problems = append(problems, "api_key is required unless skip_index is set")
		}
		if baseURL == "" {
			problems = append(problems, "api_url is required when the api key has no site prefix")
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
