package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Delivery DeliveryConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	DeliveryLogPath    string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type JWTConfig struct {
	AccessSecret      string
	RefreshSecret     string
	ResetSecret       string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
	ResetTTLMinutes   int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type DeliveryConfig struct {
	// PushTimeoutMillis bounds how long a single recipient push may block
	// before the fan-out gives up on that connection.
	PushTimeoutMillis int
	MailTopic         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			DeliveryLogPath:    getEnv("DELIVERY_LOG_PATH", "delivery.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		JWT: JWTConfig{
			AccessSecret:      getEnv("JWT_ACCESS_SECRET", "dev_access_secret"),
			RefreshSecret:     getEnv("JWT_REFRESH_SECRET", "dev_refresh_secret"),
			ResetSecret:       getEnv("JWT_RESET_SECRET", "dev_reset_secret"),
			AccessTTLMinutes:  getEnvAsInt("JWT_ACCESS_TTL_MINUTES", 30),
			RefreshTTLMinutes: getEnvAsInt("JWT_REFRESH_TTL_MINUTES", 60*24*7),
			ResetTTLMinutes:   getEnvAsInt("JWT_RESET_TTL_MINUTES", 15),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Chat"),
		},
		Delivery: DeliveryConfig{
			PushTimeoutMillis: getEnvAsInt("DELIVERY_PUSH_TIMEOUT_MS", 5000),
			MailTopic:         getEnv("MAIL_TOPIC_NAME", "AUTH_MAIL"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
