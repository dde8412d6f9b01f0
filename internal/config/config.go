package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Agents   AgentConfig
	Ranking  RankingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertEmail string // Ops recipient for session failure alerts; empty disables alerts
}

// AgentConfig carries the runner tuning and the per-agent-type dispatch
// table. The table is injected into the dispatcher at construction, never
// read from ambient state.
type AgentConfig struct {
	BatchSize       int
	PollInterval    time.Duration
	SessionTimeout  time.Duration
	DispatchTimeout time.Duration
	Targets         map[string]string
}

type RankingConfig struct {
	AutoAccept  float64
	Conditional float64
	Waitlist    float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Admissions"),
			AlertEmail: getEnv("OPS_ALERT_EMAIL", ""),
		},
		Agents: AgentConfig{
			BatchSize:       getEnvAsInt("RUNNER_BATCH_SIZE", 5),
			PollInterval:    getEnvAsDuration("RUNNER_POLL_INTERVAL", 2*time.Second),
			SessionTimeout:  getEnvAsDuration("RUNNER_SESSION_TIMEOUT", 10*time.Minute),
			DispatchTimeout: getEnvAsDuration("DISPATCH_TIMEOUT", 120*time.Second),
			Targets: map[string]string{
				"document_reviewer":   getEnv("AGENT_DOCUMENT_REVIEWER_URL", "http://localhost:8091/execute"),
				"aps_ranking":         getEnv("AGENT_APS_RANKING_URL", "http://localhost:8092/execute"),
				"reviewer_assistant":  getEnv("AGENT_REVIEWER_ASSISTANT_URL", "http://localhost:8093/execute"),
				"analytics":           getEnv("AGENT_ANALYTICS_URL", "http://localhost:8094/execute"),
				"notification_sender": getEnv("AGENT_NOTIFICATION_SENDER_URL", "http://localhost:8095/execute"),
			},
		},
		Ranking: RankingConfig{
			AutoAccept:  getEnvAsFloat("RANKING_AUTO_ACCEPT", 0.80),
			Conditional: getEnvAsFloat("RANKING_CONDITIONAL", 1.00),
			Waitlist:    getEnvAsFloat("RANKING_WAITLIST", 1.50),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
