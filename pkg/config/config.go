package config

import (
	"os"
	"strconv"
	"time"
)

// Config 是 api 服务和 portal 客户端共用的配置
type Config struct {
	Env     string        `yaml:"env"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	DB      DBConfig      `yaml:"db"`
	Redis   RedisConfig   `yaml:"redis"`
	MQ      MQConfig      `yaml:"mq"`
	Admin   AdminConfig   `yaml:"admin"`
	API     APIConfig     `yaml:"api"`
	Worker  WorkerConfig  `yaml:"worker"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the repository backend: "postgres" or "memory".
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// RedisConfig Redis配置，Addr 为空时不启用列表缓存
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// MQConfig 消息队列配置，URL 为空时不发布事件
type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// AdminConfig is the account seeded on startup so a fresh database can be
// administered.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// APIConfig is read by the portal client.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WorkerConfig 审计 worker 配置
type WorkerConfig struct {
	Queue      string        `yaml:"queue"`
	RoutingKey string        `yaml:"routing_key"`
	DedupTTL   time.Duration `yaml:"dedup_ttl"`
	// 超过 MaxRetries 次失败的消息进入 DLQ
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Default returns the values used when a key is missing from every layer.
func Default() Config {
	return Config{
		Env:     "local",
		Log:     LogConfig{Level: "info"},
		Server:  ServerConfig{Port: ":5000", ShutdownTimeout: 30 * time.Second},
		Storage: StorageConfig{Driver: "memory"},
		DB:      DBConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "taskportal"},
		Redis:   RedisConfig{CacheTTL: 30 * time.Second},
		MQ:      MQConfig{Exchange: "portal.events"},
		API:     APIConfig{BaseURL: "http://localhost:5000/api", Timeout: 10 * time.Second},
		Worker:  WorkerConfig{
			Queue:      "portal.activity.q",
			RoutingKey: "#",
			DedupTTL:   time.Hour,
			MaxRetries: 5,
			RetryDelay: 2 * time.Second,
		},
	}
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideStorageFromEnv 从环境变量覆盖存储配置
func OverrideStorageFromEnv(cfg *StorageConfig) {
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Driver = driver
	}
}

// OverrideAdminFromEnv 从环境变量覆盖管理员种子账号
func OverrideAdminFromEnv(cfg *AdminConfig) {
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		cfg.Email = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideAPIFromEnv 从环境变量覆盖客户端 API 地址
func OverrideAPIFromEnv(cfg *APIConfig) {
	if url := os.Getenv("PORTAL_API_URL"); url != "" {
		cfg.BaseURL = url
	}
}
