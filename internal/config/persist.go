package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix is the prefix for environment variable overrides (SLURMPY_*)
const EnvPrefix = "SLURMPY"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (SLURMPY_*)
// 3. User config file (~/.config/slurmpy/config.yaml)
// 4. System config file (/etc/slurmpy/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// Set config search paths (order matters)
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "slurmpy"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".slurmpy"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/slurmpy")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; will use defaults and auto-detect
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("scripts_dir", "slurm-scripts")
	viper.SetDefault("logs_dir", "logs")
	viper.SetDefault("sbatch_bin", "")
	viper.SetDefault("date_in_name", true)
	viper.SetDefault("bash_strict", true)
	viper.SetDefault("default_time", "")
	viper.SetDefault("tries", 1)
}

// ConfigKeys returns the known configuration keys in sorted order.
func ConfigKeys() []string {
	keys := []string{
		"scripts_dir",
		"logs_dir",
		"sbatch_bin",
		"date_in_name",
		"bash_strict",
		"default_time",
		"tries",
	}
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key is one of the standard config keys.
func IsKnownKey(key string) bool {
	for _, k := range ConfigKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// EnvVarForKey returns the environment variable that overrides a config key,
// e.g. "scripts_dir" → "SLURMPY_SCRIPTS_DIR".
func EnvVarForKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".slurmpy", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "slurmpy", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	// If it's a full path, check directly
	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		// Check if it's executable (unix-style check)
		return info.Mode()&0111 != 0
	}

	// Otherwise, try to find it in PATH
	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectSbatchBin attempts to find the sbatch binary in PATH.
// Returns the full absolute path if found, empty string otherwise.
func DetectSbatchBin() string {
	if path, err := exec.LookPath("sbatch"); err == nil {
		return path
	}
	return ""
}

// AutoDetectAndSave auto-detects the sbatch binary and saves to config if needed
// Returns true if config was updated
func AutoDetectAndSave() (bool, error) {
	sbatchBin := viper.GetString("sbatch_bin")
	if ValidateBinary(sbatchBin) {
		return false, nil
	}

	detected := DetectSbatchBin()
	if detected == "" {
		return false, nil
	}
	viper.Set("sbatch_bin", detected)

	if err := SaveConfig(); err != nil {
		return false, err
	}
	return true, nil
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if dir := viper.GetString("scripts_dir"); dir != "" {
		Global.ScriptsDir = dir
	}
	if dir := viper.GetString("logs_dir"); dir != "" {
		Global.LogsDir = dir
	}
	if bin := viper.GetString("sbatch_bin"); bin != "" {
		Global.SbatchBin = bin
	}
	Global.DateInName = viper.GetBool("date_in_name")
	Global.BashStrict = viper.GetBool("bash_strict")
	Global.DefaultTime = viper.GetString("default_time")
	if tries := viper.GetInt("tries"); tries > 0 {
		Global.Tries = tries
	}
}
