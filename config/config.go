package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort  int
	LogLevel string
	LogFile  LogFileConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Order    OrderConfig
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int // 单个文件最大大小，单位MB
	MaxBackups int // 最大保留旧文件数量
	MaxAge     int // 最大保留天数
	Compress   bool
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OrderConfig 订单相关配置
type OrderConfig struct {
	ExpireAfter   time.Duration // 待支付订单过期时间
	SweepInterval time.Duration // 过期订单扫描间隔
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 加载.env文件
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		APIPort:  intEnv("API_PORT", 8080),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogFile: LogFileConfig{
			Enabled:    os.Getenv("LOG_FILE_ENABLED") == "true",
			Path:       os.Getenv("LOG_FILE_PATH"),
			MaxSize:    intEnv("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: intEnv("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     intEnv("LOG_FILE_MAX_AGE", 30),
			Compress:   os.Getenv("LOG_FILE_COMPRESS") == "true",
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     intEnv("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     intEnv("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intEnv("REDIS_DB", 0),
		},
		Order: OrderConfig{
			ExpireAfter:   time.Duration(intEnv("ORDER_EXPIRE_HOURS", 24)) * time.Hour,
			SweepInterval: time.Duration(intEnv("ORDER_SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		},
	}, nil
}

// intEnv 解析整数环境变量，解析失败时使用默认值
func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
