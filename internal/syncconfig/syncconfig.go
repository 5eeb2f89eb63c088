// Package syncconfig manages the client-side configuration and credentials
// for the bt-sync server, stored under ~/.config/bt/.
package syncconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Config is the global bt config stored at ~/.config/bt/config.json.
type Config struct {
	ServerURL string `json:"server_url,omitempty"`
	// Premium marks the account tier; premium accounts are not metered on
	// program resets.
	Premium bool `json:"premium,omitempty"`
	// SyncIntervalMinutes overrides the rollover timer cadence. Zero
	// means the default (one minute).
	SyncIntervalMinutes int `json:"sync_interval_minutes,omitempty"`
}

// AuthCredentials stores authentication state at ~/.config/bt/auth.json.
type AuthCredentials struct {
	APIKey    string `json:"api_key"`
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	ServerURL string `json:"server_url,omitempty"`
	DeviceID  string `json:"device_id"`
}

const defaultServerURL = "http://localhost:8080"

// ConfigDir returns the bt config directory, creating it if necessary.
// BT_CONFIG_DIR overrides the default ~/.config/bt (used by tests).
func ConfigDir() (string, error) {
	if v := os.Getenv("BT_CONFIG_DIR"); v != "" {
		if err := os.MkdirAll(v, 0755); err != nil {
			return "", fmt.Errorf("create config dir: %w", err)
		}
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "bt")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// CacheDir returns the directory holding the local record mirror.
func CacheDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// LoadConfig reads the global config from config.json.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the global config with an atomic replace.
func SaveConfig(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "config.json"), cfg, 0644)
}

// LoadAuth reads auth credentials from auth.json; nil when logged out.
func LoadAuth() (*AuthCredentials, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds AuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveAuth writes auth credentials (0600 perms).
func SaveAuth(creds *AuthCredentials) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "auth.json"), creds, 0600)
}

// ClearAuth removes the auth.json file.
func ClearAuth() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetServerURL returns the sync server URL.
// Priority: BT_SYNC_URL env > auth.json > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("BT_SYNC_URL"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil && creds.ServerURL != "" {
		return creds.ServerURL
	}
	if cfg, err := LoadConfig(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// GetAPIKey returns the API key. Priority: BT_AUTH_KEY env > auth.json.
func GetAPIKey() string {
	if v := os.Getenv("BT_AUTH_KEY"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil {
		return creds.APIKey
	}
	return ""
}

// IsAuthenticated returns true if an API key is available.
func IsAuthenticated() bool {
	return GetAPIKey() != ""
}

// GetDeviceID returns this device's stable ID, generating and persisting
// one on first use.
func GetDeviceID() (string, error) {
	creds, err := LoadAuth()
	if err != nil {
		return "", err
	}
	if creds != nil && creds.DeviceID != "" {
		return creds.DeviceID, nil
	}
	id := uuid.NewString()
	if creds != nil {
		creds.DeviceID = id
		if err := SaveAuth(creds); err != nil {
			return "", err
		}
	}
	return id, nil
}

// atomicWrite marshals v and replaces path via a temp file + rename so a
// crash never leaves a half-written config behind.
func atomicWrite(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
