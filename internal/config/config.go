package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds every environment-driven setting of the service
type Config struct {
	HTTPPort        string
	SubmissionsPath string
	QuestionnaireID string
	QuestionsFile   string
	// SubmitEndpoint, when set, sends session submissions to a remote /v1/apply instead of this process
	SubmitEndpoint  string

	RedisAddr  string
	MongoURI   string
	MongoDB    string
	SessionTTL time.Duration
	// SessionSecret signs session tokens
	SessionSecret string

	Mail   MailConfig
	Twilio TwilioConfig

	ApplyRatePerMinute int
	CORSAllowedOrigins string

	LogLevel  string
	LogFormat string
}

// MailConfig configures the Resend email relay
type MailConfig struct {
	APIKey  string
	From    string
	To      string
	Subject string
}

// Enabled reports whether email relay is configured
func (m MailConfig) Enabled() bool {
	return m.APIKey != "" && m.To != ""
}

// TwilioConfig configures the SMS/WhatsApp relay
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// Enabled reports whether Twilio relay is configured
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != "" && t.To != ""
}

// Load reads configuration from the environment, after applying a .env file if present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	return &Config{
		HTTPPort:        getEnv("PORT", "8080"),
		SubmissionsPath: getEnv("SUBMISSIONS_PATH", "submissions.json"),
		QuestionnaireID: getEnv("QUESTIONNAIRE_ID", "default"),
		QuestionsFile:   getEnv("QUESTIONS_FILE", ""),
		SubmitEndpoint:  getEnv("SUBMIT_ENDPOINT", ""),

		RedisAddr:     getEnv("REDIS_URI", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDB:       getEnv("MONGO_DB", "syntexapply"),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production"),

		Mail: MailConfig{
			APIKey:  getEnv("RESEND_API_KEY", ""),
			From:    getEnv("MAIL_FROM", "onboarding@resend.dev"),
			To:      getEnv("MAIL_TO", ""),
			Subject: getEnv("MAIL_SUBJECT", "New Syntex Job Application"),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_FROM_NUMBER", ""),
			To:         getEnv("TWILIO_TO_NUMBER", ""),
		},

		ApplyRatePerMinute: getInt("APPLY_RATE_PER_MINUTE", 10),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": val}).Warn("invalid integer, using default")
		return defaultVal
	}
	return n
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": val}).Warn("invalid duration, using default")
		return defaultVal
	}
	return d
}
