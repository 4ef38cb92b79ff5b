package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	MinPollingInterval     = 30
	DefaultPollingInterval = 60
)

var (
	ErrDuplicatePipeline = errors.New("pipeline already monitored")
	ErrIntervalTooShort  = fmt.Errorf("polling interval must be at least %d seconds", MinPollingInterval)
)

type Config struct {
	Username           string                     `yaml:"username,omitempty"`
	MonitoredPipelines []domain.MonitoredPipeline `yaml:"monitored_pipelines"`
	PollingInterval    int                        `yaml:"polling_interval_seconds,omitempty"`

	Bitbucket struct {
		BaseURL string        `yaml:"base_url,omitempty"`
		Timeout time.Duration `yaml:"timeout,omitempty"`
	} `yaml:"bitbucket"`

	Poll struct {
		PauseFile string `yaml:"pause_file,omitempty"`
	} `yaml:"poll"`

	Cache struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"cache"`

	History struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"history"`

	Server struct {
		Addr string `yaml:"addr,omitempty"`
	} `yaml:"server"`

	Notify struct {
		Disabled bool `yaml:"disabled,omitempty"`
	} `yaml:"notify"`

	// AppPassword comes from the environment or the credentials file, never from config.yaml.
	AppPassword string `yaml:"-"`
}

type env struct {
	Username    string        `env:"BITBUCKET_USERNAME"`
	AppPassword string        `env:"BITBUCKET_APP_PASSWORD"`
	BaseURL     string        `env:"BITBUCKET_BASE_URL"`
	Timeout     time.Duration `env:"BITBUCKET_TIMEOUT"`
	Interval    int           `env:"POLL_INTERVAL_SECONDS"`
	CachePath   string        `env:"CACHE_PATH"`
	PauseFile   string        `env:"PAUSE_FILE"`
	ControlAddr string        `env:"CONTROL_ADDR"`
}

// DefaultPath is config.yaml in the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "pipeline-watcher", "config.yaml")
}

// LoadFile returns only what config.yaml holds: no defaults, no environment.
// Commands that modify and Save the config start from this.
func LoadFile(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return c, err
	}
	return c, nil
}

// Load is the effective runtime view: the file, defaults and environment
// overrides. Never pass its result to Save.
func Load(path string) (Config, error) {
	c, err := LoadFile(path)
	if err != nil {
		return c, err
	}

	if c.PollingInterval == 0 {
		c.PollingInterval = DefaultPollingInterval
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "~/.cache/pipeline_status.json"
	}
	if c.Poll.PauseFile == "" {
		c.Poll.PauseFile = "~/.cache/pipeline-watcher.paused"
	}
	if c.History.Path == "" {
		c.History.Path = "~/.local/share/pipeline-watcher/history.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:7389"
	}

	var e env
	if err := envconfig.Process(context.Background(), &e); err != nil {
		return c, fmt.Errorf("environment: %w", err)
	}

	if e.Username != "" {
		c.Username = e.Username
	}
	if e.BaseURL != "" {
		c.Bitbucket.BaseURL = e.BaseURL
	}
	if e.Timeout > 0 {
		c.Bitbucket.Timeout = e.Timeout
	}
	if e.Interval != 0 {
		c.PollingInterval = e.Interval
	}
	if e.CachePath != "" {
		c.Cache.Path = e.CachePath
	}
	if e.PauseFile != "" {
		c.Poll.PauseFile = e.PauseFile
	}
	if e.ControlAddr != "" {
		c.Server.Addr = e.ControlAddr
	}

	if e.AppPassword != "" {
		c.AppPassword = e.AppPassword
	} else if path != "" {
		pw, err := LoadAppPassword(filepath.Dir(path))
		if err != nil {
			return c, err
		}
		c.AppPassword = pw
	}

	if c.PollingInterval < MinPollingInterval {
		c.PollingInterval = DefaultPollingInterval
	}
	if c.Bitbucket.Timeout <= 0 {
		c.Bitbucket.Timeout = 30 * time.Second
	}

	c.Cache.Path = expandHome(c.Cache.Path)
	c.Poll.PauseFile = expandHome(c.Poll.PauseFile)
	c.History.Path = expandHome(c.History.Path)

	return c, nil
}

// Credentials returns nil until a username has been configured.
func (c Config) Credentials() *domain.Credentials {
	if c.Username == "" {
		return nil
	}
	return &domain.Credentials{Username: c.Username, AppPassword: c.AppPassword}
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.PollingInterval) * time.Second
}

func (c *Config) SetPollingInterval(seconds int) error {
	if seconds < MinPollingInterval {
		return ErrIntervalTooShort
	}
	c.PollingInterval = seconds
	return nil
}

func (c *Config) AddPipeline(p domain.MonitoredPipeline) error {
	if p.Workspace == "" || p.RepoSlug == "" {
		return errors.New("workspace and repo slug are required")
	}
	for _, m := range c.MonitoredPipelines {
		if m.SameTarget(p) {
			return ErrDuplicatePipeline
		}
	}
	c.MonitoredPipelines = append(c.MonitoredPipelines, p)
	return nil
}

// RemovePipeline deletes the target with the same identity and reports whether one was found.
func (c *Config) RemovePipeline(p domain.MonitoredPipeline) bool {
	for i, m := range c.MonitoredPipelines {
		if m.SameTarget(p) {
			c.MonitoredPipelines = append(c.MonitoredPipelines[:i], c.MonitoredPipelines[i+1:]...)
			return true
		}
	}
	return false
}

func Save(path string, c Config) error {
	if path == "" {
		return errors.New("empty config path")
	}

	b, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}
	return writeLocked(path, b, 0o644)
}

// writeLocked replaces path atomically while holding an exclusive lock on path.lock.
func writeLocked(path string, b []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lockFile := path + ".lock"
	lf, err := os.OpenFile(lockFile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = lf.Close() }()

	if runtime.GOOS != "windows" {
		if err := syscall.Flock(int(lf.Fd()), syscall.LOCK_EX); err != nil {
			return err
		}
		defer func() { _ = syscall.Flock(int(lf.Fd()), syscall.LOCK_UN) }()
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	if _, err := f.Write(b); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}
