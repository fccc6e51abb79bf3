package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultWebAddr    = "127.0.0.1:3335"
	DefaultServerAddr = "127.0.0.1:8000"
	DefaultDBPath     = "./todos.db"
)

type Config struct {
	API    APIConfig    `yaml:"api" json:"api"`
	Web    WebConfig    `yaml:"web" json:"web"`
	Server ServerConfig `yaml:"server" json:"server"`
	TUI    TUIConfig    `yaml:"tui" json:"tui"`
}

// APIConfig points the client side (store, chat) at the task API.
type APIConfig struct {
	BaseURL string `yaml:"base_url" json:"baseUrl"`
}

type WebConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// ServerConfig configures the bundled reference API server.
type ServerConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	DBPath string `yaml:"db_path" json:"dbPath"`
	Mode   string `yaml:"mode" json:"mode"` // debug, release
}

type TUIConfig struct {
	Theme string `yaml:"theme" json:"theme"` // auto, light, dark
}

func Default() *Config {
	return &Config{
		API:    APIConfig{BaseURL: DefaultAPIBaseURL},
		Web:    WebConfig{Addr: DefaultWebAddr},
		Server: ServerConfig{Addr: DefaultServerAddr, DBPath: DefaultDBPath, Mode: "release"},
		TUI:    TUIConfig{Theme: "auto"},
	}
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.todo-dashboard).
	if v := strings.TrimSpace(os.Getenv("TODO_DASHBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".todo-dashboard"), nil
}

// Path returns the config file location. TODO_DASHBOARD_CONFIG names the file directly.
func Path() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TODO_DASHBOARD_CONFIG")); v != "" {
		return v, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path (or the default location when path is empty),
// then applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(cfg)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TODO_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TODO_WEB_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	if v := os.Getenv("TODO_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TODO_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("TODO_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	c.Web.Addr = strings.TrimSpace(c.Web.Addr)
	if c.Web.Addr == "" {
		c.Web.Addr = DefaultWebAddr
	}
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	c.Server.DBPath = strings.TrimSpace(c.Server.DBPath)
	if c.Server.DBPath == "" {
		c.Server.DBPath = DefaultDBPath
	}
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	c.TUI.Theme = strings.ToLower(strings.TrimSpace(c.TUI.Theme))
	if c.TUI.Theme == "" {
		c.TUI.Theme = "auto"
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid api.base_url %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: api.base_url must be http or https, got %q", u.Scheme)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: invalid server.mode %q (expected debug|release|test)", c.Server.Mode)
	}
	switch c.TUI.Theme {
	case "auto", "light", "dark":
	default:
		return fmt.Errorf("config: invalid tui.theme %q (expected auto|light|dark)", c.TUI.Theme)
	}
	return nil
}

// Save writes cfg to path (or the default location) atomically.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
