package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ApplyEnv overrides cfg with LAZYREMINDER_* variables. The given dotenv
// files are loaded first when they exist; variables already present in the
// environment win over them.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

// Layered loads the config file at path and returns two resolved views of
// it. stored holds the file plus overrides and is what may be written back.
// effective additionally carries the environment and is what the program
// runs with. overrides is applied last in both, so flags win over env.
func Layered(path string, overrides func(*Config), envFiles ...string) (stored, effective Config, err error) {
	stored, err = Load(path)
	if err != nil {
		return Config{}, Config{}, err
	}

	effective = stored
	if err := ApplyEnv(&effective, envFiles...); err != nil {
		return Config{}, Config{}, err
	}
	if overrides != nil {
		overrides(&stored)
		overrides(&effective)
	}

	dir := filepath.Dir(path)
	stored.Resolve(dir)
	effective.Resolve(dir)
	return stored, effective, nil
}
