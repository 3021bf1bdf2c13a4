package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	MatchCacheTTL time.Duration

	RabbitMQURL string

	WhatsAppToken   string
	WhatsAppPhoneID string
	WhatsAppBaseURL string

	MailHost    string
	MailPort    int
	MailUser    string
	MailPass    string
	MailFrom    string
	LeadAlertTo string

	TaskSweepInterval time.Duration
	StoreIdleTTL      time.Duration
}

// Load lê o .env (se existir) e depois as variáveis do processo.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Arquivo .env não encontrado, usando variáveis do sistema")
	}

	cfg := &Config{
		Port:        GetString("PORT", "8080"),
		DatabaseURL: GetString("DATABASE_URL"),
		CORSOrigins: splitList(GetString("CORS_ORIGINS", "*")),

		RedisAddr:     GetString("REDIS_ADDR"),
		RedisPassword: GetString("REDIS_PASSWORD"),
		MatchCacheTTL: GetDuration("MATCH_CACHE_TTL", 10*time.Minute),

		RabbitMQURL: GetString("RABBITMQ_URL"),

		WhatsAppToken:   GetString("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneID: GetString("WHATSAPP_PHONE_ID"),
		WhatsAppBaseURL: GetString("WHATSAPP_BASE_URL", "https://graph.facebook.com/v21.0"),

		MailHost:    GetString("MAIL_HOST"),
		MailPort:    GetInt("MAIL_PORT", 587),
		MailUser:    GetString("MAIL_USER"),
		MailPass:    GetString("MAIL_PASS"),
		MailFrom:    GetString("MAIL_FROM"),
		LeadAlertTo: GetString("LEAD_ALERT_TO"),

		TaskSweepInterval: GetDuration("TASK_SWEEP_INTERVAL", time.Minute),
		StoreIdleTTL:      GetDuration("STORE_IDLE_TTL", 30*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// MailEnabled indica se há SMTP configurado para os alertas de lead novo.
func (c *Config) MailEnabled() bool {
	return c.MailHost != "" && c.LeadAlertTo != ""
}

func GetString(name string, defaultValue ...string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" && len(defaultValue) > 0 {
		value = defaultValue[0]
	}
	return value
}

func GetInt(name string, defaultValue ...int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name)))
	if err != nil && len(defaultValue) > 0 {
		value = defaultValue[0]
	}
	return value
}

func GetBool(name string, defaultValue ...bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(name)))
	if err != nil && len(defaultValue) > 0 {
		value = defaultValue[0]
	}
	return value
}

// GetDuration aceita "90s", "10m" ou um número puro de segundos.
func GetDuration(name string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️ %s inválido (%q), usando %s", name, raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
