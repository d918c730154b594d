package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL = "STUDYDESK_API_URL"
	EnvDebug  = "STUDYDESK_DEBUG"
)

// LoadDotEnv loads projectRoot/.env into the process environment. Variables
// that are already set win. A missing file is not an error.
func LoadDotEnv(projectRoot string) error {
	if projectRoot == "" {
		return nil
	}
	err := godotenv.Load(filepath.Join(projectRoot, ".env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overlays environment variables on a resolved config. Values that
// do not parse are ignored.
func ApplyEnv(cfg ResolvedConfig, lookup func(string) (string, bool)) ResolvedConfig {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDebug); ok {
		if debug, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Debug = debug
		}
	}
	return cfg
}
