package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const appName = "lazyreminder"

type Config struct {
	TasksPath        string `toml:"tasks_path" env:"LAZYREMINDER_TASKS"`
	GroceryTypesPath string `toml:"grocery_types_path" env:"LAZYREMINDER_GROCERY_TYPES"`
	GroceryListPath  string `toml:"grocery_list_path" env:"LAZYREMINDER_GROCERY_LIST"`
	DBPath           string `toml:"db_path" env:"LAZYREMINDER_DB"`
	Snapshots        bool   `toml:"snapshots" env:"LAZYREMINDER_SNAPSHOTS"`
	WebEnabled       bool   `toml:"web_enabled" env:"LAZYREMINDER_WEB"`
	WebPort          int    `toml:"web_port" env:"LAZYREMINDER_WEB_PORT"`
	LogLevel         string `toml:"log_level" env:"LAZYREMINDER_LOG_LEVEL"`
	LogFormat        string `toml:"log_format" env:"LAZYREMINDER_LOG_FORMAT"`
	LogPath          string `toml:"log_path" env:"LAZYREMINDER_LOG_PATH"`
}

func Default() Config {
	return Config{
		Snapshots: true,
		WebPort:   8080,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName, "config.toml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the TOML file at path on top of Default. A missing file is not
// an error.
func Load(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Resolve fills empty file locations with defaults inside dir and makes
// relative ones absolute against dir.
func (c *Config) Resolve(dir string) {
	c.TasksPath = resolvePath(dir, c.TasksPath, "tasks.txt")
	c.GroceryTypesPath = resolvePath(dir, c.GroceryTypesPath, "grocery_types.txt")
	c.GroceryListPath = resolvePath(dir, c.GroceryListPath, "grocery_list.txt")
	c.DBPath = resolvePath(dir, c.DBPath, appName+".db")
	c.LogPath = resolvePath(dir, c.LogPath, appName+".log")
	if c.WebPort == 0 {
		c.WebPort = 8080
	}
}

func resolvePath(dir, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if value == ":memory:" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(dir, value)
}
