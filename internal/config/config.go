package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret     string
	JWTExpiration time.Duration

	// 搜索索引（Algolia）
	SearchAppID    string
	SearchAdminKey string

	// 对象存储（MinIO）
	MinioEndpoint  string
	MinioPublicURL string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string

	CORSOrigins []string
}

// Load reads configuration from the environment. Defaults cover local
// development; production is expected to set everything explicitly.
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "4000"),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=snipnet port=5432 sslmode=disable"),
		JWTSecret:      getEnv("JWT_SECRET", "secret_key_change_me"),
		JWTExpiration:  24 * time.Hour,
		SearchAppID:    os.Getenv("SEARCH_APP_ID"),
		SearchAdminKey: os.Getenv("SEARCH_ADMIN_KEY"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "profile-pictures"),
	}

	origins := getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
