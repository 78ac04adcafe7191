package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig            `mapstructure:"database"`  // 数据库配置
	Import    ImportConfig              `mapstructure:"import"`    // 导入流水线配置
	Redis     RedisConfig               `mapstructure:"redis"`     // Redis配置（自然键锁、变更流）
	Feed      FeedConfig                `mapstructure:"feed"`      // 导入完成事件投递
	Relay     RelayConfig               `mapstructure:"relay"`     // 平台中转函数
	Admin     AdminConfig               `mapstructure:"admin"`     // 管理接口
	Platforms map[string]PlatformConfig `mapstructure:"platforms"` // 多平台独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // postgres / sqlite
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
}

// ImportConfig 导入流水线配置
type ImportConfig struct {
	Workers  int           `mapstructure:"workers"`   // 单次导入并发处理的游戏数
	LockTTL  time.Duration `mapstructure:"lock_ttl"`  // 自然键锁过期时间
	LockWait time.Duration `mapstructure:"lock_wait"` // 获取自然键锁的最长等待
}

// RedisConfig Redis配置，Address 为空时使用进程内锁
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FeedConfig 导入完成事件投递配置
type FeedConfig struct {
	Type    string   `mapstructure:"type"`    // kafka / redis / noop
	Brokers []string `mapstructure:"brokers"` // Kafka broker 列表
	Topic   string   `mapstructure:"topic"`   // Kafka topic 或 Redis stream 名
	MaxLen  int64    `mapstructure:"max_len"` // Redis stream 近似最大长度
}

// RelayConfig 平台中转函数配置（平台凭据只在中转侧持有）
type RelayConfig struct {
	BaseURL   string `mapstructure:"base_url"`   // 中转函数基础地址
	AuthToken string `mapstructure:"auth_token"` // 调用中转函数的令牌
	Timeout   int    `mapstructure:"timeout"`    // 请求超时（秒）
	Proxy     string `mapstructure:"proxy"`      // 代理地址
}

// AdminConfig 管理接口配置，UserIDs 为空时任何人都不能调用管理接口
type AdminConfig struct {
	UserIDs []string `mapstructure:"user_ids"` // 管理员用户ID（UUID）
}

// PlatformConfig 单个平台的独立配置
type PlatformConfig struct {
	DisplayName string `mapstructure:"display_name"` // 展示名称
	Enabled     bool   `mapstructure:"enabled"`      // 是否启用
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	cfg.applyDefaults()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("import.workers", 4)
	v.SetDefault("import.lock_ttl", 10*time.Second)
	v.SetDefault("import.lock_wait", 5*time.Second)
	v.SetDefault("feed.type", "noop")
	v.SetDefault("feed.topic", "trophysync.imports")
	v.SetDefault("relay.timeout", 30)
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RELAY_AUTH_TOKEN"); v != "" {
		cfg.Relay.AuthToken = v
	}
	if v := os.Getenv("RELAY_PROXY"); v != "" {
		cfg.Relay.Proxy = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.Feed.Brokers = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_USER_IDS")); v != "" {
		cfg.Admin.UserIDs = strings.Split(v, ",")
	}
}

// applyDefaults 兜底非法取值（yaml 里写了 0 或负数时）
func (c *Config) applyDefaults() {
	if c.Import.Workers <= 0 {
		c.Import.Workers = 1
	}
	if c.Import.LockTTL <= 0 {
		c.Import.LockTTL = 10 * time.Second
	}
	if c.Import.LockWait <= 0 {
		c.Import.LockWait = 5 * time.Second
	}
	if c.Platforms == nil {
		c.Platforms = map[string]PlatformConfig{}
	}
}
