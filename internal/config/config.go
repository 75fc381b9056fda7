package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port      string
	StaticDir string
	MaxBodyMB int
	Timezone  string
	LogLevel  string
	LogFormat string // "console" or "json"

	MongoURI      string
	MongoDatabase string

	// Access control
	AuthSecret          string
	TokenTTL            time.Duration
	ManagerUsernames    []string
	SupervisorUsernames []string

	// Urgency thresholds
	UrgentLikertBelow float64
	UrgentNPSBelow    float64

	// Speech to text
	STTTimeout      time.Duration
	OpenAIBaseURL   string
	OpenAISTTModel  string
	GroqBaseURL     string
	GroqSTTModel    string
	TalkBotBaseURL  string
	TalkBotSTTModel string
	IOTypeURL       string
	GeminiBaseURL   string
	GeminiModel     string

	// Audio storage
	AudioStorage string // "local" or "s3"
	UploadsDir   string
	S3Bucket     string
	S3Prefix     string
	S3PublicURL  string

	// Urgent notifications
	SlackWebhookURL string
	KafkaBrokers    []string
	KafkaTopic      string

	AuditDatabaseURL string

	// EnvFileLoaded reports whether a .env file was read
	EnvFileLoaded bool
}

// LoadConfig loads configuration from environment variables, after an optional .env file
func LoadConfig() *Config {
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		EnvFileLoaded: envFileLoaded,

		Port:      getEnv("PORT", "4000"),
		StaticDir: getEnv("STATIC_DIR", "dist"),
		MaxBodyMB: getEnvInt("MAX_BODY_MB", 500),
		Timezone:  getEnv("TIMEZONE", "Asia/Tehran"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "crm_db"),

		AuthSecret:          getEnv("AUTH_SECRET", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 72*time.Hour),
		ManagerUsernames:    getEnvList("MANAGER_USERNAMES", []string{"matlabi", "kand", "mahlouji"}),
		SupervisorUsernames: getEnvList("SUPERVISOR_USERNAMES", []string{"mostafavi"}),

		UrgentLikertBelow: getEnvFloat("URGENT_LIKERT_BELOW", 3),
		UrgentNPSBelow:    getEnvFloat("URGENT_NPS_BELOW", 5),

		STTTimeout:      getEnvDuration("STT_TIMEOUT", 2*time.Minute),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAISTTModel:  getEnv("OPENAI_STT_MODEL", "whisper-1"),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqSTTModel:    getEnv("GROQ_STT_MODEL", "whisper-large-v3"),
		TalkBotBaseURL:  getEnv("TALKBOT_BASE_URL", "https://api.talkbot.ir/v1"),
		TalkBotSTTModel: getEnv("TALKBOT_STT_MODEL", "whisper-1"),
		IOTypeURL:       getEnv("IOTYPE_URL", "https://www.iotype.com/developer/transcription"),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AudioStorage: getEnv("AUDIO_STORAGE", "local"),
		UploadsDir:   getEnv("UPLOADS_DIR", "uploads"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Prefix:     getEnv("S3_PREFIX", "audio"),
		S3PublicURL:  getEnv("S3_PUBLIC_URL", ""),

		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		KafkaBrokers:    getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "urgent-feedback"),

		AuditDatabaseURL: getEnv("AUDIT_DATABASE_URL", ""),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvInt gets an int environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration parses values like "90s" or "2m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blank items
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
