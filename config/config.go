package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Threshold used when a course has no quiz definition yet
	DefaultPassingPercent int
	ShufflePostTest       bool

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	CertificateWebhookURL string

	ReconcileEnabled bool
	ReconcileCron    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "coursesi"),
		DBPort:     getEnv("DB_PORT", "5432"),

		DefaultPassingPercent: getEnvInt("DEFAULT_PASSING_PERCENT", 70),
		ShufflePostTest:       getEnvBool("SHUFFLE_POST_TEST", true),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", ""),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "CourseSi"),

		CertificateWebhookURL: getEnv("CERTIFICATE_WEBHOOK_URL", ""),

		ReconcileEnabled: getEnvBool("RECONCILE_ENABLED", true),
		ReconcileCron:    getEnv("RECONCILE_CRON", "0 2 * * *"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DefaultPassingPercent < 0 || AppConfig.DefaultPassingPercent > 100 {
		log.Printf("Warning: DEFAULT_PASSING_PERCENT %d out of range, falling back to 70", AppConfig.DefaultPassingPercent)
		AppConfig.DefaultPassingPercent = 70
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Certificate emails are disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
