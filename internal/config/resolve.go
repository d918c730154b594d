package config

import "strings"

// ResolveConfig merges project/global configs with built-in defaults.
// Precedence per key: project > global > defaults, then clamp ints to bounds.
func ResolveConfig(project RawConfig, global RawConfig) ResolvedConfig {
	defaults := DefaultResolvedConfig()

	baseURL := resolveString(
		valueFromAPI(project, func(api RawAPI) *string { return api.BaseURL }),
		valueFromAPI(global, func(api RawAPI) *string { return api.BaseURL }),
		defaults.API.BaseURL,
	)
	timeout := resolveIntWithBounds(
		intFromAPI(project, func(api RawAPI) *int { return api.TimeoutSeconds }),
		intFromAPI(global, func(api RawAPI) *int { return api.TimeoutSeconds }),
		defaults.API.TimeoutSeconds,
		MinAPITimeoutSeconds,
		MaxAPITimeoutSeconds,
	)
	streaming := resolveBool(
		boolFromChat(project, func(chat RawChat) *bool { return chat.Streaming }),
		boolFromChat(global, func(chat RawChat) *bool { return chat.Streaming }),
		defaults.Chat.Streaming,
	)
	maxDropped := resolveIntWithBounds(
		intFromChat(project, func(chat RawChat) *int { return chat.MaxDroppedFrames }),
		intFromChat(global, func(chat RawChat) *int { return chat.MaxDroppedFrames }),
		defaults.Chat.MaxDroppedFrames,
		MinMaxDroppedFrames,
		MaxMaxDroppedFrames,
	)
	numQuestions := resolveIntWithBounds(
		intFromQuiz(project),
		intFromQuiz(global),
		defaults.Quiz.NumQuestions,
		MinQuizNumQuestions,
		MaxQuizNumQuestions,
	)
	cacheTTL := resolveIntWithBounds(
		intFromSummary(project),
		intFromSummary(global),
		defaults.Summary.CacheTTLMinutes,
		MinSummaryCacheMinutes,
		MaxSummaryCacheMinutes,
	)
	logPath := resolveString(stringFromLog(project), stringFromLog(global), defaults.Log.Path)
	debug := resolveBool(project.Debug, global.Debug, defaults.Debug)

	return ResolvedConfig{
		SchemaVersion: SchemaVersion,
		API: ResolvedAPI{
			BaseURL:        baseURL,
			TimeoutSeconds: timeout,
		},
		Chat: ResolvedChat{
			Streaming:        streaming,
			MaxDroppedFrames: maxDropped,
		},
		Quiz:    ResolvedQuiz{NumQuestions: numQuestions},
		Summary: ResolvedSummary{CacheTTLMinutes: cacheTTL},
		Log:     ResolvedLog{Path: logPath},
		Debug:   debug,
	}
}

func valueFromAPI(cfg RawConfig, pick func(RawAPI) *string) *string {
	if cfg.API == nil {
		return nil
	}
	return pick(*cfg.API)
}

func intFromAPI(cfg RawConfig, pick func(RawAPI) *int) *int {
	if cfg.API == nil {
		return nil
	}
	return pick(*cfg.API)
}

func boolFromChat(cfg RawConfig, pick func(RawChat) *bool) *bool {
	if cfg.Chat == nil {
		return nil
	}
	return pick(*cfg.Chat)
}

func intFromChat(cfg RawConfig, pick func(RawChat) *int) *int {
	if cfg.Chat == nil {
		return nil
	}
	return pick(*cfg.Chat)
}

func intFromQuiz(cfg RawConfig) *int {
	if cfg.Quiz == nil {
		return nil
	}
	return cfg.Quiz.NumQuestions
}

func intFromSummary(cfg RawConfig) *int {
	if cfg.Summary == nil {
		return nil
	}
	return cfg.Summary.CacheTTLMinutes
}

func stringFromLog(cfg RawConfig) *string {
	if cfg.Log == nil {
		return nil
	}
	return cfg.Log.Path
}

func resolveString(projectVal *string, globalVal *string, defaultVal string) string {
	if value := normalizeString(projectVal); value != "" {
		return value
	}
	if value := normalizeString(globalVal); value != "" {
		return value
	}
	return strings.TrimSpace(defaultVal)
}

func resolveBool(projectVal *bool, globalVal *bool, defaultVal bool) bool {
	if projectVal != nil {
		return *projectVal
	}
	if globalVal != nil {
		return *globalVal
	}
	return defaultVal
}

func resolveIntWithBounds(projectVal *int, globalVal *int, defaultVal int, min int, max int) int {
	if projectVal != nil {
		return clampInt(*projectVal, min, max)
	}
	if globalVal != nil {
		return clampInt(*globalVal, min, max)
	}
	return clampInt(defaultVal, min, max)
}

func clampInt(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func normalizeString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
