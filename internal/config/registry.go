package config

type OptionType string

const (
	OptionTypeBool   OptionType = "bool"
	OptionTypeInt    OptionType = "int"
	OptionTypeString OptionType = "string"
)

type IntBounds struct {
	Min int
	Max int
}

type OptionMetadata struct {
	KeyPath     string
	Type        OptionType
	Bounds      *IntBounds
	EnvVar      string
	Description string
}

// OptionRegistry returns the known config options in display order.
func OptionRegistry() []OptionMetadata {
	return []OptionMetadata{
		{KeyPath: "api.base_url", Type: OptionTypeString, EnvVar: EnvAPIURL, Description: "Generation service base URL"},
		newIntOption("api.timeout_seconds", MinAPITimeoutSeconds, MaxAPITimeoutSeconds, "Timeout for non-streaming requests"),
		{KeyPath: "chat.streaming", Type: OptionTypeBool, Description: "Stream chat replies as they are generated"},
		newIntOption("chat.max_dropped_frames", MinMaxDroppedFrames, MaxMaxDroppedFrames, "Malformed stream frames tolerated per reply (0 = unlimited)"),
		newIntOption("quiz.num_questions", MinQuizNumQuestions, MaxQuizNumQuestions, "Questions per generated quiz"),
		newIntOption("summary.cache_ttl_minutes", MinSummaryCacheMinutes, MaxSummaryCacheMinutes, "How long generated summaries are reused"),
		{KeyPath: "log.path", Type: OptionTypeString, Description: "Log file location"},
		{KeyPath: "debug", Type: OptionTypeBool, EnvVar: EnvDebug, Description: "Verbose logging"},
	}
}

func newIntOption(keyPath string, min int, max int, description string) OptionMetadata {
	return OptionMetadata{
		KeyPath:     keyPath,
		Type:        OptionTypeInt,
		Bounds:      &IntBounds{Min: min, Max: max},
		Description: description,
	}
}
