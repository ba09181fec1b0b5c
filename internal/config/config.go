package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Google Sheets export
	GoogleCredentialsPath string
	SpreadsheetID         string
	ExportHour            int
	ExportMinute          int
	Timezone              string
	ExportOnStartup       bool

	// Opsiyonel entegrasyonlar
	RabbitMQURL  string // boşsa sipariş eventi yayınlanmaz
	KeepaliveURL string // boşsa self-ping kapalı
}

func Load() *Config {
	// .env varsa yüklenir; yoksa ortam değişkenleri yeterli
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=kafe port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		GoogleCredentialsPath: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		SpreadsheetID:         getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		ExportHour:            getEnvInt("EXPORT_HOUR", 23),
		ExportMinute:          getEnvInt("EXPORT_MINUTE", 55),
		Timezone:              getEnv("TIMEZONE", "Europe/Istanbul"),
		ExportOnStartup:       getEnv("EXPORT_ON_STARTUP", "true") == "true",

		RabbitMQURL:  getEnv("RABBITMQ_URL", ""),
		KeepaliveURL: getEnv("KEEPALIVE_URL", ""),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.SpreadsheetID == "" || cfg.GoogleCredentialsPath == "" {
		log.Println("[WARN] GOOGLE_SHEETS_SPREADSHEET_ID / GOOGLE_APPLICATION_CREDENTIALS tanımlı değil, Sheets export devre dışı.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
