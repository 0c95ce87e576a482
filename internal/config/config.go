package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultFallbackSalt 是未登录场景下备份密钥派生使用的公开盐值。
// 它不是机密：知道该值的人可以对未登录用户的备份做离线字典攻击，
// 这是从产品设计上有意保留的取舍，部署方可通过 BACKUP_FALLBACK_SALT 覆盖。
const DefaultFallbackSalt = "daypulse-public-fallback"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabasePath       string
	SessionSecret      string
	GinMode            string
	BackupFallbackSalt string
	SuperRootUserName  string
	SuperRootPassword  string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "daypulse.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "daypulse-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	fallbackSalt := strings.TrimSpace(os.Getenv("BACKUP_FALLBACK_SALT"))
	if fallbackSalt == "" {
		fallbackSalt = DefaultFallbackSalt
	}

	superRootUserName := strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME"))
	superRootPassword := strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD"))

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabasePath:       databasePath,
		SessionSecret:      sessionSecret,
		GinMode:            ginMode,
		BackupFallbackSalt: fallbackSalt,
		SuperRootUserName:  superRootUserName,
		SuperRootPassword:  superRootPassword,
	}
}
