package spec

type Config struct {
	Version int    `yaml:"version"`
	Model   string `yaml:"model"`
	// Evaluator is the judge model used by evaluation tasks.
	Evaluator   string            `yaml:"evaluator"`
	Oracle      OracleConfig      `yaml:"oracle"`
	Metadata    MetadataConfig    `yaml:"metadata"`
	Data        DataConfig        `yaml:"data"`
	Run         RunConfig         `yaml:"run"`
	RateLimiter RateLimiterConfig `yaml:"rate_limiter"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
	Export      ExportConfig      `yaml:"export"`
}

type OracleConfig struct {
	Backend               string            `yaml:"backend"`
	BaseURL               string            `yaml:"base_url"`
	APIKeyEnv             string            `yaml:"api_key_env"`
	Temperature           *float64          `yaml:"temperature"`
	MaxTokens             int               `yaml:"max_tokens"`
	RequestTimeoutSeconds int               `yaml:"request_timeout_seconds"`
	CallTimeoutSeconds    int               `yaml:"call_timeout_seconds"`
	MaxImageSide          int               `yaml:"max_image_side"`
	ResponseSchemas       map[string]string `yaml:"response_schemas"`
}

type MetadataConfig struct {
	Kind          string `yaml:"kind"`
	Dir           string `yaml:"dir"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	KeyPrefix     string `yaml:"key_prefix"`
	Language      string `yaml:"language"`
}

type DataConfig struct {
	ImageDir  string         `yaml:"image_dir"`
	OutputDir string         `yaml:"output_dir"`
	Datasets  DatasetsConfig `yaml:"datasets"`
}

type DatasetsConfig struct {
	VQA            string `yaml:"vqa"`
	Classification string `yaml:"classification"`
	Captioning     string `yaml:"captioning"`
}

type RunConfig struct {
	Task       string `yaml:"task"`
	Subtask    string `yaml:"subtask"`
	Start      int    `yaml:"start"`
	End        int    `yaml:"end"`
	Workers    int    `yaml:"workers"`
	OnExisting string `yaml:"on_existing"`
	// HaltOnInconsistency stops the run at the first id whose label has no
	// info record instead of failing only that id.
	HaltOnInconsistency bool `yaml:"halt_on_inconsistency"`
}

type RateLimiterConfig struct {
	Mode              string `yaml:"mode"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	MaxConcurrency    int    `yaml:"max_concurrency"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ExportConfig struct {
	DuckDBPath string `yaml:"duckdb_path"`
}
