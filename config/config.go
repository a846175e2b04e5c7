package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host        string `envconfig:"HOST"`
	Port        string `envconfig:"PORT"`
	Domain      string `envconfig:"DOMAIN"`
	Prefix      string `envconfig:"PREFIX"`
	Mode        Mode   `envconfig:"MODE"`
	Database    Database
	Redis       Redis
	JWT         JWT
	Log         Log `mapstructure:"Log"`
	Sentry      Sentry
	OTel        OTel
	Storage     Storage
	Leaderboard Leaderboard
	Notify      Notify
}

type Database struct {
	Driver   string `envconfig:"DRIVER"` // mysql 或 postgres
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DBName   string `envconfig:"DB_NAME" mapstructure:"db_name"`
}

type Redis struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET" mapstructure:"access_secret"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE" mapstructure:"access_expire"` // 秒
}

type Log struct {
	FilePath   string `envconfig:"LOG_FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LOG_LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"LOG_MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"LOG_MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"LOG_COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string  `envconfig:"DSN"`
	Environment string  `envconfig:"ENVIRONMENT"`
	SampleRate  float64 `envconfig:"SAMPLE_RATE" mapstructure:"sample_rate"` // 性能追踪采样率
	Tracing     SentryTracing
}

type SentryTracing struct {
	DBSlowThresholdMs    int  `envconfig:"DB_SLOW_THRESHOLD_MS" mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int  `envconfig:"REDIS_SLOW_THRESHOLD_MS" mapstructure:"redis_slow_threshold_ms"`
	TraceHTTPCalls       bool `envconfig:"TRACE_HTTP_CALLS" mapstructure:"trace_http_calls"`
}

type OTel struct {
	Enable      bool   `envconfig:"ENABLE"`
	ServiceName string `envconfig:"SERVICE_NAME" mapstructure:"service_name"`
	AgentHost   string `envconfig:"AGENT_HOST" mapstructure:"agent_host"`
	AgentPort   string `envconfig:"AGENT_PORT" mapstructure:"agent_port"`
}

type Storage struct {
	Driver      string `envconfig:"DRIVER"`                                     // local 或 s3
	Home        string `envconfig:"HOME"`                                       // 本地存储目录
	BaseURL     string `envconfig:"BASE_URL" mapstructure:"base_url"`           // 本地文件访问前缀
	MaxFileSize int64  `envconfig:"MAX_FILE_SIZE" mapstructure:"max_file_size"` // 字节，0 表示不限制
	S3          S3
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	BaseURL         string `mapstructure:"base_url"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKey       string `mapstructure:"access_key" envconfig:"ACCESS_KEY"`
	SecretAccessKey string `mapstructure:"secret_key" envconfig:"SECRET_KEY"`
	Prefix          string `mapstructure:"prefix"`
	UsePathStyle    bool   `mapstructure:"path_style" envconfig:"PATH_STYLE"`
}

type Leaderboard struct {
	CacheTTL int `envconfig:"CACHE_TTL" mapstructure:"cache_ttl"` // 秒，0 表示不缓存
}

type Notify struct {
	WebhookURL string `envconfig:"WEBHOOK_URL" mapstructure:"webhook_url"`
	TimeoutMs  int    `envconfig:"TIMEOUT_MS" mapstructure:"timeout_ms"`
}
