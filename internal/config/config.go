package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/domkit/internal/errors"
	"github.com/vango-dev/domkit/pkg/render"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "domkit.json"

	// DefaultPort is the default demo server port.
	DefaultPort = 3000

	// DefaultHost is the default demo server host.
	DefaultHost = "localhost"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultContainerID is the default toast container id.
	DefaultContainerID = "toast-container"
)

// Config represents the complete domkit.json configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// Toast contains toast timing configuration.
	Toast ToastConfig `json:"toast"`

	// Fetch contains request client configuration.
	Fetch FetchConfig `json:"fetch"`

	// Server contains demo server configuration.
	Server ServerConfig `json:"server"`

	// Head adds meta, link and script elements to rendered pages.
	Head render.Head `json:"head"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ToastConfig contains toast timings.
type ToastConfig struct {
	// Short is how long a regular toast stays visible.
	Short Duration `json:"short,omitempty"`

	// Long is how long a long toast stays visible.
	Long Duration `json:"long,omitempty"`

	// FadeIn is the delay before a new toast becomes opaque.
	FadeIn Duration `json:"fadeIn,omitempty"`

	// FadeOut is the delay between fading out and detaching a toast.
	FadeOut Duration `json:"fadeOut,omitempty"`

	// ContainerID is the id of the toast container element.
	ContainerID string `json:"containerId,omitempty"`
}

// FetchConfig contains request client settings.
type FetchConfig struct {
	// BaseURL resolves relative endpoints.
	BaseURL string `json:"baseURL,omitempty"`

	// Timeout bounds each request, including reading the failure body.
	Timeout Duration `json:"timeout,omitempty"`

	// Headers are sent with every request.
	Headers map[string]string `json:"headers,omitempty"`
}

// ServerConfig contains demo server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Page is an optional description JSON file rendered at "/".
	Page string `json:"page,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("3s",
// "300ms"). A bare JSON number is read as milliseconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("duration must be a string like \"3s\" or a number of milliseconds")
	}
	*d = Duration(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

// Default creates a Config with default values.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Toast: ToastConfig{
			Short:       Duration(3 * time.Second),
			Long:        Duration(6 * time.Second),
			FadeIn:      Duration(10 * time.Millisecond),
			FadeOut:     Duration(300 * time.Millisecond),
			ContainerID: DefaultContainerID,
		},
		Fetch: FetchConfig{
			Timeout: Duration(DefaultTimeout),
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
	}
}

// Load reads domkit.json from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFromFile(filepath.Join(dir, ConfigFileName))
}

// LoadFromFile reads configuration from the specified file path. Fields
// missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without one to use defaults")
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON and durations are strings like \"3s\"")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads domkit.json from dir, returning defaults when the
// file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.HasCode(err, "E100") {
		return Default(), nil
	}
	return cfg, err
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E101").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for fields set to zero.
func (c *Config) applyDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Toast.Short == 0 {
		c.Toast.Short = def.Toast.Short
	}
	if c.Toast.Long == 0 {
		c.Toast.Long = def.Toast.Long
	}
	if c.Toast.ContainerID == "" {
		c.Toast.ContainerID = def.Toast.ContainerID
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = def.Fetch.Timeout
	}
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E102").WithDetail(detail)
	}

	if _, ok := parseLevel(c.LogLevel); !ok {
		return invalid("logLevel must be one of debug, info, warn, error; got " + strconv.Quote(c.LogLevel))
	}
	if c.Toast.Short <= 0 || c.Toast.Long <= 0 {
		return invalid("toast.short and toast.long must be positive")
	}
	if c.Toast.FadeIn < 0 || c.Toast.FadeOut < 0 {
		return invalid("toast.fadeIn and toast.fadeOut must not be negative")
	}
	if c.Fetch.Timeout < 0 {
		return invalid("fetch.timeout must not be negative")
	}
	if c.Fetch.BaseURL != "" {
		u, err := url.Parse(c.Fetch.BaseURL)
		if err != nil || !u.IsAbs() {
			return invalid("fetch.baseURL must be an absolute URL; got " + strconv.Quote(c.Fetch.BaseURL))
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port must be between 0 and 65535")
	}
	for i, link := range c.Head.Links {
		if link.Rel == "" || link.Href == "" {
			return invalid(fmt.Sprintf("head.links[%d] needs rel and href", i))
		}
	}
	for i, script := range c.Head.Scripts {
		if script.Src == "" && script.Inline == "" {
			return invalid(fmt.Sprintf("head.scripts[%d] needs src or inline", i))
		}
	}
	return nil
}

// Address returns the host:port the demo server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the demo server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// PagePath returns the page description path, resolved against the config
// directory when relative.
func (c *Config) PagePath() string {
	if c.Server.Page == "" || filepath.IsAbs(c.Server.Page) {
		return c.Server.Page
	}
	return filepath.Join(c.Dir(), c.Server.Page)
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// domkit.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest domkit.json at
// or above the working directory, or defaults if there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if errors.HasCode(err, "E100") {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(root)
}
