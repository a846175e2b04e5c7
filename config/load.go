package config

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "HACKATHON"

var current atomic.Pointer[Config]

func init() {
	current.Store(Default())
}

// Default 返回未加载配置文件时使用的默认配置
func Default() *Config {
	return &Config{
		Host:   "0.0.0.0",
		Port:   "8080",
		Prefix: "api",
		Mode:   ModeDebug,
		Database: Database{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   "3306",
			DBName: "hackathon",
		},
		Redis: Redis{Host: "127.0.0.1", Port: "6379"},
		JWT:   JWT{AccessExpire: 7 * 24 * 3600},
		Log:   Log{Level: "info", MaxSize: 100, MaxBackups: 7, MaxAge: 30},
		Storage: Storage{
			Driver:      "local",
			Home:        "./upload",
			BaseURL:     "/static",
			MaxFileSize: 50 << 20,
		},
		Leaderboard: Leaderboard{CacheTTL: 30},
		Notify:      Notify{TimeoutMs: 3000},
	}
}

// Get 获取当前生效的配置
func Get() *Config {
	return current.Load()
}

// Set 替换当前配置，主要供测试使用
func Set(cfg *Config) {
	current.Store(cfg)
}

// Init 读取配置文件，再用环境变量覆盖
func Init() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	current.Store(cfg)
}

// Load 从指定文件加载配置；文件不存在时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(errors.Cause(err)) && !isNotFound(err) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}

	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && os.IsNotExist(pathErr)
}
