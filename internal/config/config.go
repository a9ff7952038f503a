package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shopcart-console/internal/form"
	"shopcart-console/internal/formstate"
	"shopcart-console/lib/configutil"
	"shopcart-console/lib/telemetry"
)

const (
	FileName       = "shopcart.json5"
	EnvBaseUrl     = "SHOPCART_BASE_URL"
	DefaultBaseUrl = "http://127.0.0.1:8080"
)

type Config struct {
	BaseUrl  string `json:"base_url"`
	Resource string `json:"resource"`
	// Timeout is a Go duration string; empty keeps the HTTP client default.
	Timeout   string           `json:"timeout"`
	StateFile string           `json:"state_file"`
	DumpHttp  string           `json:"dump_http"`
	Telemetry telemetry.Config `json:"telemetry"`
}

// Load reads the config at path, or searches for shopcart.json5 upwards from
// the working directory when path is empty. A missing file is not an error.
// Defaults and SHOPCART_BASE_URL are applied on top. The result is not
// validated; callers apply their own overrides first and then call Validate.
func Load(path string) (Config, error) {
	var (
		cfg Config
		dir string
		err error
	)
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
		dir = filepath.Dir(path)
	} else {
		cfg, dir, err = configutil.ReadRecursively[Config](FileName)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if errors.Is(err, os.ErrNotExist) && path != "" {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	if baseUrl, ok := os.LookupEnv(EnvBaseUrl); ok && baseUrl != "" {
		cfg.BaseUrl = baseUrl
	}
	if cfg.BaseUrl == "" {
		cfg.BaseUrl = DefaultBaseUrl
	}
	if cfg.Resource == "" {
		cfg.Resource = form.Shopcarts.Name
	}
	if cfg.StateFile == "" {
		cfg.StateFile, err = formstate.DefaultPath()
		if err != nil {
			return Config{}, err
		}
	} else if !filepath.IsAbs(cfg.StateFile) && dir != "" {
		cfg.StateFile = filepath.Join(dir, cfg.StateFile)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := form.Lookup(c.Resource); !ok {
		return fmt.Errorf("unknown resource %q, expected one of: %s", c.Resource, strings.Join(form.Names(), ", "))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

func (c Config) Schema() form.Schema {
	s, _ := form.Lookup(c.Resource)
	return s
}

func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}
