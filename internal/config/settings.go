package config

import (
	"os"
	"strconv"
)

type ConfigSource string

const (
	ConfigSourceEnv     ConfigSource = "env"
	ConfigSourceLocal   ConfigSource = "local"
	ConfigSourceGlobal  ConfigSource = "global"
	ConfigSourceDefault ConfigSource = "default"
)

type LayerWarningKind string

const (
	LayerWarningInvalidYAML       LayerWarningKind = "invalid_yaml"
	LayerWarningUnsupportedSchema LayerWarningKind = "unsupported_schema"
)

type LayerWarning struct {
	Source ConfigSource
	Path   string
	Kind   LayerWarningKind
}

type AppliedOption struct {
	Option OptionMetadata
	Value  string
	Source ConfigSource
}

type SettingsResolution struct {
	Resolved      ResolvedConfig
	Applied       []AppliedOption
	LayerWarnings []LayerWarning
}

// ResolveSettings resolves the config like LoadConfig and records where each
// applied value came from.
func ResolveSettings(projectRoot string, lookup func(string) (string, bool)) (SettingsResolution, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var warnings []LayerWarning
	load := func(source ConfigSource, path string) (RawConfig, error) {
		if path == "" {
			return RawConfig{}, nil
		}
		cfg, present, warning, err := loadConfigFileDetailed(path)
		if err != nil {
			return RawConfig{}, err
		}
		if warning != nil {
			warnings = append(warnings, LayerWarning{Source: source, Path: path, Kind: *warning})
			return RawConfig{}, nil
		}
		if !present {
			return RawConfig{}, nil
		}
		return cfg, nil
	}

	projectRaw, err := load(ConfigSourceLocal, projectConfigPath(projectRoot))
	if err != nil {
		return SettingsResolution{}, err
	}
	globalPath, _ := globalConfigPath()
	globalRaw, err := load(ConfigSourceGlobal, globalPath)
	if err != nil {
		return SettingsResolution{}, err
	}

	resolved := ApplyEnv(ResolveConfig(projectRaw, globalRaw), lookup)
	if resolved.Log.Path == "" {
		resolved.Log.Path = defaultLogPath()
	}

	projectValues := RawOptionValues(projectRaw)
	globalValues := RawOptionValues(globalRaw)
	resolvedValues := ResolvedOptionValues(resolved)

	var applied []AppliedOption
	for _, option := range OptionRegistry() {
		source := ConfigSourceDefault
		if _, ok := projectValues[option.KeyPath]; ok {
			source = ConfigSourceLocal
		} else if _, ok := globalValues[option.KeyPath]; ok {
			source = ConfigSourceGlobal
		}
		if option.EnvVar != "" {
			if v, ok := lookup(option.EnvVar); ok && v != "" {
				source = ConfigSourceEnv
			}
		}
		applied = append(applied, AppliedOption{
			Option: option,
			Value:  resolvedValues[option.KeyPath],
			Source: source,
		})
	}

	return SettingsResolution{
		Resolved:      resolved,
		Applied:       applied,
		LayerWarnings: warnings,
	}, nil
}

// RawOptionValues lists the keys a layer sets, formatted for display.
func RawOptionValues(cfg RawConfig) map[string]string {
	values := map[string]string{}
	if cfg.API != nil {
		putString(values, "api.base_url", cfg.API.BaseURL)
		putInt(values, "api.timeout_seconds", cfg.API.TimeoutSeconds)
	}
	if cfg.Chat != nil {
		putBool(values, "chat.streaming", cfg.Chat.Streaming)
		putInt(values, "chat.max_dropped_frames", cfg.Chat.MaxDroppedFrames)
	}
	if cfg.Quiz != nil {
		putInt(values, "quiz.num_questions", cfg.Quiz.NumQuestions)
	}
	if cfg.Summary != nil {
		putInt(values, "summary.cache_ttl_minutes", cfg.Summary.CacheTTLMinutes)
	}
	if cfg.Log != nil {
		putString(values, "log.path", cfg.Log.Path)
	}
	putBool(values, "debug", cfg.Debug)
	return values
}

func ResolvedOptionValues(cfg ResolvedConfig) map[string]string {
	return map[string]string{
		"api.base_url":              cfg.API.BaseURL,
		"api.timeout_seconds":       strconv.Itoa(cfg.API.TimeoutSeconds),
		"chat.streaming":            strconv.FormatBool(cfg.Chat.Streaming),
		"chat.max_dropped_frames":   strconv.Itoa(cfg.Chat.MaxDroppedFrames),
		"quiz.num_questions":        strconv.Itoa(cfg.Quiz.NumQuestions),
		"summary.cache_ttl_minutes": strconv.Itoa(cfg.Summary.CacheTTLMinutes),
		"log.path":                  cfg.Log.Path,
		"debug":                     strconv.FormatBool(cfg.Debug),
	}
}

func putString(values map[string]string, key string, v *string) {
	if s := normalizeString(v); s != "" {
		values[key] = s
	}
}

func putInt(values map[string]string, key string, v *int) {
	if v != nil {
		values[key] = strconv.Itoa(*v)
	}
}

func putBool(values map[string]string, key string, v *bool) {
	if v != nil {
		values[key] = strconv.FormatBool(*v)
	}
}
