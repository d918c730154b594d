package config

const (
	SchemaVersion = 1

	DefaultAPIBaseURL          = "http://localhost:8000/api"
	DefaultAPITimeoutSeconds   = 120
	DefaultChatStreaming       = true
	DefaultMaxDroppedFrames    = 0
	DefaultQuizNumQuestions    = 5
	DefaultSummaryCacheMinutes = 60
	DefaultDebug               = false

	MinAPITimeoutSeconds   = 5
	MaxAPITimeoutSeconds   = 600
	MinMaxDroppedFrames    = 0
	MaxMaxDroppedFrames    = 1000
	MinQuizNumQuestions    = 1
	MaxQuizNumQuestions    = 20
	MinSummaryCacheMinutes = 1
	MaxSummaryCacheMinutes = 24 * 60
)

type RawConfig struct {
	SchemaVersion *int        `yaml:"schema_version,omitempty"`
	API           *RawAPI     `yaml:"api,omitempty"`
	Chat          *RawChat    `yaml:"chat,omitempty"`
	Quiz          *RawQuiz    `yaml:"quiz,omitempty"`
	Summary       *RawSummary `yaml:"summary,omitempty"`
	Log           *RawLog     `yaml:"log,omitempty"`
	Debug         *bool       `yaml:"debug,omitempty"`
}

type RawAPI struct {
	BaseURL        *string `yaml:"base_url,omitempty"`
	TimeoutSeconds *int    `yaml:"timeout_seconds,omitempty"`
}

type RawChat struct {
	Streaming        *bool `yaml:"streaming,omitempty"`
	MaxDroppedFrames *int  `yaml:"max_dropped_frames,omitempty"`
}

type RawQuiz struct {
	NumQuestions *int `yaml:"num_questions,omitempty"`
}

type RawSummary struct {
	CacheTTLMinutes *int `yaml:"cache_ttl_minutes,omitempty"`
}

type RawLog struct {
	Path *string `yaml:"path,omitempty"`
}

type ResolvedConfig struct {
	SchemaVersion int             `yaml:"schema_version"`
	API           ResolvedAPI     `yaml:"api"`
	Chat          ResolvedChat    `yaml:"chat"`
	Quiz          ResolvedQuiz    `yaml:"quiz"`
	Summary       ResolvedSummary `yaml:"summary"`
	Log           ResolvedLog     `yaml:"log"`
	Debug         bool            `yaml:"debug"`
}

type ResolvedAPI struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ResolvedChat struct {
	Streaming        bool `yaml:"streaming"`
	MaxDroppedFrames int  `yaml:"max_dropped_frames"`
}

type ResolvedQuiz struct {
	NumQuestions int `yaml:"num_questions"`
}

type ResolvedSummary struct {
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
}

type ResolvedLog struct {
	// Path is empty until resolved against the home directory.
	Path string `yaml:"path"`
}

func DefaultResolvedConfig() ResolvedConfig {
	return ResolvedConfig{
		SchemaVersion: SchemaVersion,
		API: ResolvedAPI{
			BaseURL:        DefaultAPIBaseURL,
			TimeoutSeconds: DefaultAPITimeoutSeconds,
		},
		Chat: ResolvedChat{
			Streaming:        DefaultChatStreaming,
			MaxDroppedFrames: DefaultMaxDroppedFrames,
		},
		Quiz: ResolvedQuiz{
			NumQuestions: DefaultQuizNumQuestions,
		},
		Summary: ResolvedSummary{
			CacheTTLMinutes: DefaultSummaryCacheMinutes,
		},
		Debug: DefaultDebug,
	}
}
