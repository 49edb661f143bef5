// Package settings provides storage for draftkit user settings.
//
// Settings live in the XDG config directory:
//
//	$XDG_CONFIG_HOME/draftkit/config.json  (default: ~/.config/draftkit/config.json)
//
// The file is a flat JSON object:
//
//	{
//	  "root_dir": "/home/me/project",
//	  "provider": "google-translate",
//	  "source_lang": "ko",
//	  "target_lang": "en"
//	}
//
// Every key can be overridden with a DRAFTKIT_ environment variable
// (DRAFTKIT_ROOT_DIR, DRAFTKIT_PROVIDER, ...). File permissions are 0600
// since the file may hold an API key.
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. Provider environment variable (GOOGLE_API_KEY, GROQ_API_KEY, OPENAI_API_KEY)
//  3. This settings file
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appDirName = "draftkit"
	fileName   = "config.json"
	envPrefix  = "DRAFTKIT"
)

// ErrNotDirectory is returned by ValidateDir for paths that are not directories.
var ErrNotDirectory = errors.New("not a directory")

// Config is the persisted user configuration.
type Config struct {
	// RootDir is the reference directory used for file autocompletion.
	RootDir string `json:"root_dir" mapstructure:"root_dir"`
	// Provider is the translation provider ID.
	Provider string `json:"provider,omitempty" mapstructure:"provider"`
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty" mapstructure:"model"`
	// BaseURL overrides the provider's endpoint.
	BaseURL string `json:"base_url,omitempty" mapstructure:"base_url"`
	// APIKey is the provider API key.
	APIKey string `json:"api_key,omitempty" mapstructure:"api_key"`
	// SourceLang is the language answers are typed in.
	SourceLang string `json:"source_lang,omitempty" mapstructure:"source_lang"`
	// TargetLang is the language drafts are written in.
	TargetLang string `json:"target_lang,omitempty" mapstructure:"target_lang"`
}

// Defaults returns the configuration used when nothing is stored.
func Defaults() Config {
	return Config{
		Provider:   "google-translate",
		SourceLang: "ko",
		TargetLang: "en",
	}
}

// ---------------------------------------------------------------------------
// File paths
// ---------------------------------------------------------------------------

// configDir returns the XDG config directory for draftkit.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// DefaultPath returns the settings file path.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// StateDir returns the directory for logs.
// Default: ~/.local/state/draftkit (or $XDG_STATE_HOME/draftkit).
func StateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", appDirName), nil
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the settings file at path and applies DRAFTKIT_ environment
// overrides. A missing or invalid file yields the defaults.
func Load(path string) Config {
	def := Defaults()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("root_dir", def.RootDir)
	v.SetDefault("provider", def.Provider)
	v.SetDefault("model", def.Model)
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("api_key", def.APIKey)
	v.SetDefault("source_lang", def.SourceLang)
	v.SetDefault("target_lang", def.TargetLang)

	// A broken file is treated like a missing one.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def
	}
	return cfg
}

// Save writes cfg to path with 0600 permissions.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// readFile returns the settings stored on disk, without environment
// overrides, so that updating one key never persists an env value.
func readFile(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// SetRootDir stores dir as the reference directory (upsert).
func SetRootDir(path, dir string) error {
	cfg := readFile(path)
	cfg.RootDir = dir
	return Save(path, cfg)
}

// ---------------------------------------------------------------------------
// Directory helpers
// ---------------------------------------------------------------------------

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ValidateDir expands and absolutizes dir and checks that it is an
// existing directory.
func ValidateDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("empty path: %w", ErrNotDirectory)
	}
	abs, err := filepath.Abs(ExpandHome(dir))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}
	return abs, nil
}

// ---------------------------------------------------------------------------
// API keys
// ---------------------------------------------------------------------------

// EnvVarForProvider returns the environment variable holding the API key
// for a provider, or "" for keyless providers.
func EnvVarForProvider(providerID string) string {
	switch providerID {
	case "google":
		return "GOOGLE_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	case "custom-openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// ResolveAPIKey picks the API key for a provider: flag, then environment,
// then the settings file.
func ResolveAPIKey(providerID, flagKey string, cfg Config) string {
	if flagKey != "" {
		return flagKey
	}
	if env := EnvVarForProvider(providerID); env != "" {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return cfg.APIKey
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
