package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/vitrinelabs/vitrine/internal/util"
)

type Config struct {
	Server  Server  `json:"server"`
	Paths   Paths   `json:"paths"`
	Preview Preview `json:"preview"`
	Session Session `json:"session"`
	Dev     Dev     `json:"dev"`
}

type Server struct {
	// Listen address, e.g. ":8080" or "127.0.0.1:8080".
	HTTPAddr string `json:"http_addr"`

	// Public base URL used when building absolute links. Empty means
	// links stay relative.
	BaseURL string `json:"base_url"`
}

type Paths struct {
	// Directory for the SQLite database. Relative to the working directory.
	DataDir string `json:"data_dir"`

	// Directory for uploaded logo files. Relative to the working directory.
	UploadsDir string `json:"uploads_dir"`
}

type Preview struct {
	// Interval between selection attach attempts, in milliseconds.
	AttachRetryMS int `json:"attach_retry_ms"`

	// How many attach attempts before giving up on a preview.
	AttachRetryMax int `json:"attach_retry_max"`

	// When true, stores with no products are padded with demo catalog
	// data so the editor has something to show.
	DemoData bool `json:"demo_data"`
}

type Session struct {
	// Name of the login cookie.
	CookieName string `json:"cookie_name"`

	// Login token lifetime in hours.
	TTLHours int `json:"ttl_hours"`
}

type Dev struct {
	// When true, watch AssetsDir and reload open previews on changes.
	WatchAssets bool `json:"watch_assets"`

	// Directory with on-disk asset overrides. Empty means embedded only.
	AssetsDir string `json:"assets_dir"`
}

// Default returns a config with sensible values for a local install.
func Default() Config {
	return Config{
		Server: Server{
			HTTPAddr: ":8080",
			BaseURL:  "",
		},
		Paths: Paths{
			DataDir:    "data",
			UploadsDir: "data/uploads",
		},
		Preview: Preview{
			AttachRetryMS:  500,
			AttachRetryMax: 10,
			DemoData:       true,
		},
		Session: Session{
			CookieName: "vitrine_session",
			TTLHours:   24,
		},
		Dev: Dev{
			WatchAssets: false,
			AssetsDir:   "",
		},
	}
}

// Validate checks the config for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr is empty")
	}
	_, port, err := net.SplitHostPort(c.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("server.http_addr %q: %w", c.Server.HTTPAddr, err)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("server.http_addr %q: invalid port", c.Server.HTTPAddr)
	}
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server.base_url %q: must be an http(s) URL", c.Server.BaseURL)
		}
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir is empty")
	}
	if strings.TrimSpace(c.Paths.UploadsDir) == "" {
		return errors.New("paths.uploads_dir is empty")
	}
	if c.Preview.AttachRetryMS < 50 {
		return errors.New("preview.attach_retry_ms must be at least 50")
	}
	if c.Preview.AttachRetryMax < 1 {
		return errors.New("preview.attach_retry_max must be at least 1")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("session.cookie_name is empty")
	}
	if c.Session.TTLHours < 1 {
		return errors.New("session.ttl_hours must be at least 1")
	}
	if c.Dev.WatchAssets && strings.TrimSpace(c.Dev.AssetsDir) == "" {
		return errors.New("dev.watch_assets requires dev.assets_dir")
	}
	return nil
}

// Load reads and validates a config file. Missing fields keep their
// defaults, so old config files survive new releases.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	b = stripBOM(b)

	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// Save validates and writes the config as indented JSON.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return util.WriteJSONFile(path, cfg)
}

// Ensure loads the config at path, creating it with defaults when it
// does not exist yet. The second return value reports whether a new
// file was written.
func Ensure(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !os.IsNotExist(err) {
		return Config{}, false, err
	}

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("write default config: %w", err)
	}
	return cfg, true, nil
}
