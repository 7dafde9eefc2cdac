package config

const (
	defaultOutputDir            = "~/.local/share/enrich/output"
	defaultLogDir               = "~/.local/share/enrich/logs"
	defaultStateDir             = "~/.local/share/enrich/state"
	defaultChunkSize            = 128
	defaultWorkers              = 2
	defaultEngineBaseURL        = "http://127.0.0.1:8710"
	defaultEngineModel          = "en_core_web_lg"
	defaultEngineLanguage       = "en"
	defaultEngineConcurrency    = 10
	defaultEngineTimeoutSeconds = 300
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:       defaultOutputDir,
			CreateOutputDir: true,
			LogDir:          defaultLogDir,
			StateDir:        defaultStateDir,
		},
		Pipeline: Pipeline{
			ChunkSize: defaultChunkSize,
			Workers:   defaultWorkers,
		},
		Engine: Engine{
			BaseURL:        defaultEngineBaseURL,
			Model:          defaultEngineModel,
			Language:       defaultEngineLanguage,
			Concurrency:    defaultEngineConcurrency,
			TimeoutSeconds: defaultEngineTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
