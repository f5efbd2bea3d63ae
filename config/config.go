package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"gopkg.in/yaml.v3"
)

var ctx = context.Background()

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

// AuthConfig 鉴权相关配置：会话令牌签名密钥、口令加密盐、会话有效期（秒）。
// Salt 是全局静态盐，改动会导致已有用户无法登录。
type AuthConfig struct {
	Secret        string `yaml:"secret"`
	Salt          string `yaml:"salt"`
	SessionExpire int64  `yaml:"session_expire"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
}

var GlobalConfig *Config
var RedisClient *redis.Client

func InitConfig(path string) {
	data, err := os.ReadFile(path + "/config.yaml")
	if err != nil {
		log.Fatalf("Read config failed: %v", err)
	}
	if err := yaml.Unmarshal(data, &GlobalConfig); err != nil {
		log.Fatalf("Parse config failed: %v", err)
	}
	applyEnvOverrides()
}

func InitRedis() {
	opt := &redis.Options{
		Addr:     GlobalConfig.Redis.Addr,
		Password: GlobalConfig.Redis.Password,
		DB:       GlobalConfig.Redis.DB,
	}
	if GlobalConfig.Redis.TLS {
		opt.TLSConfig = &tls.Config{}
	}
	RedisClient = redis.NewClient(opt)
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		panic(fmt.Sprintf("Redis connect failed: %v", err))
	}
	fmt.Println("Redis connected!")
}

func applyEnvOverrides() {
	if GlobalConfig == nil {
		return
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		GlobalConfig.MySQL.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		GlobalConfig.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		GlobalConfig.Redis.Password = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		GlobalConfig.Server.Port = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		GlobalConfig.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_SALT"); v != "" {
		GlobalConfig.Auth.Salt = v
	}
	if v := os.Getenv("SESSION_EXPIRE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			GlobalConfig.Auth.SessionExpire = parsed
		}
	}
}
