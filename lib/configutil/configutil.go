package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the override file for a config path,
// "shopcart.json5" -> "shopcart.local.json5".
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readInto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a json5 config file and merges its local override over
// it, where the override wins:
//  1. <name>.<ext>
//  2. <name>.local.<ext>
//
// If neither file exists the error is os.ErrNotExist.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readInto(name, &out)
	if err != nil {
		return out, err
	}

	localPath := LocalPath(name)
	var override T
	foundLocal, err := readInto(localPath, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localPath)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig, walking up from the working directory until
// a directory holding the config (or its local override) is found. It
// returns the directory it was found in.
func ReadRecursively[T any](name string) (T, string, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, "", err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, current, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return empty, "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return empty, "", os.ErrNotExist
		}
		current = parent
	}
}
