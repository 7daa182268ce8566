package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Enabled    bool
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Enabled   bool
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("ARENA_PORT", "8080")
	viper.SetDefault("ARENA_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("ARENA_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("ARENA_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("ARENA_JWT_SECRET", "secret")
	viper.SetDefault("ARENA_JWT_EXPIRE", "24h")
	viper.SetDefault("MYSQL_DSN", "arena:password@tcp(127.0.0.1:3306)/arena?charset=utf8mb4&parseTime=True&loc=Local")
	viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.SetDefault("KAFKA_BROKERS", []string{"127.0.0.1:9092"})
	viper.SetDefault("KAFKA_AUDIT_TOPIC", "arena.chat.events")
	viper.SetDefault("KAFKA_ENABLED", false)
	viper.SetDefault("MINIO_ENDPOINT", "127.0.0.1:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "arena-attachments")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("MINIO_ENABLED", false)
	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Host:         viper.GetString("ARENA_HOST"),
			Port:         viper.GetString("ARENA_PORT"),
			ReadTimeout:  viper.GetDuration("ARENA_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("ARENA_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("ARENA_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			DSN: viper.GetString("MYSQL_DSN"),
		},
		Redis: RedisConfig{
			URI:          viper.GetString("REDIS_URL"),
			MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		Kafka: KafkaConfig{
			Brokers:    viper.GetStringSlice("KAFKA_BROKERS"),
			AuditTopic: viper.GetString("KAFKA_AUDIT_TOPIC"),
			Enabled:    viper.GetBool("KAFKA_ENABLED"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Enabled:   viper.GetBool("MINIO_ENABLED"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("ARENA_JWT_SECRET"),
			ExpirationTime: viper.GetDuration("ARENA_JWT_EXPIRE"),
		},
	}, nil
}
