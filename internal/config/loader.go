package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".studydesk"
	fileName = "config.yaml"
)

var userHomeDir = os.UserHomeDir

// OverrideHomeDir swaps the home directory lookup used for the global config
// and the default log path. Call the returned func to restore it.
func OverrideHomeDir(fn func() (string, error)) (restore func()) {
	orig := userHomeDir
	userHomeDir = fn
	return func() { userHomeDir = orig }
}

// LoadConfig reads global and project configs, then the environment, and
// returns the resolved config.
// Precedence per key: environment > project > global > defaults.
func LoadConfig(projectRoot string) (ResolvedConfig, error) {
	settings, err := ResolveSettings(projectRoot, os.LookupEnv)
	if err != nil {
		return ResolvedConfig{}, err
	}
	return settings.Resolved, nil
}

// loadConfigFileDetailed reports malformed files and unknown schema versions
// as warnings so a bad file never blocks startup.
func loadConfigFileDetailed(path string) (RawConfig, bool, *LayerWarningKind, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil, nil
		}
		return RawConfig{}, false, nil, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var cfg RawConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return RawConfig{}, true, nil, nil
		}
		return RawConfig{}, false, warningPtr(LayerWarningInvalidYAML), nil
	}
	if !isSupportedSchemaVersion(cfg.SchemaVersion) {
		return RawConfig{}, false, warningPtr(LayerWarningUnsupportedSchema), nil
	}
	return cfg, true, nil, nil
}

func isSupportedSchemaVersion(version *int) bool {
	if version == nil {
		return true
	}
	return *version == SchemaVersion
}

func projectConfigPath(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return filepath.Join(projectRoot, dirName, fileName)
}

func globalConfigPath() (string, bool) {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, dirName, fileName), true
}

func defaultLogPath() string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, dirName, "logs", "studydesk.log")
}

func warningPtr(kind LayerWarningKind) *LayerWarningKind {
	return &kind
}
