package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppURL                 string
	BaseURL                string
	DatabaseDSN            string
	RedisAddr              string
	DedupeKeyPrefix        string
	RateLimit              int
	ShutdownTimeoutSeconds int

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	TimeZone         *time.Location
	TickInterval     time.Duration
	ReminderWindow   time.Duration
	StaleAfter       time.Duration
	RecurrenceMonths int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	appURL := fmt.Sprintf("%s:%s", appHost, appPort)
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 appURL,
		BaseURL:                getEnv("PUBLIC_BASE_URL", "http://"+appURL),
		DatabaseDSN:            getEnv("DATABASE_DSN", "household_tasks.db"),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		DedupeKeyPrefix:        getEnv("REDIS_DEDUPE_PREFIX", "delivery_callback"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
		TwilioAccountSID:       getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:        getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:      getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioWhatsAppNumber:   getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		TimeZone:               getEnvAsLocation("APP_TIMEZONE", "Asia/Jerusalem"),
		TickInterval:           getEnvAsSeconds("REMINDER_TICK_SECONDS", 60),
		ReminderWindow:         getEnvAsSeconds("REMINDER_WINDOW_SECONDS", 120),
		StaleAfter:             getEnvAsSeconds("REMINDER_STALE_SECONDS", 300),
		RecurrenceMonths:       getEnvAsInt("RECURRENCE_HORIZON_MONTHS", 3),
	}

	validate(cfg)
	return cfg
}

// validate enforces system-level invariants. A violation is fatal at startup,
// never per-message.
func validate(cfg Config) {
	if !strings.HasPrefix(cfg.TwilioAccountSID, "AC") {
		log.Fatal("TWILIO_ACCOUNT_SID must be set and start with AC")
	}
	if cfg.TwilioAuthToken == "" {
		log.Fatal("TWILIO_AUTH_TOKEN must not be empty")
	}
	if !strings.HasPrefix(cfg.TwilioPhoneNumber, "+") {
		log.Fatal("TWILIO_PHONE_NUMBER must be set in E.164 form (leading +)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.TickInterval <= 0 {
		log.Fatal("REMINDER_TICK_SECONDS must be greater than 0")
	}
	if cfg.ReminderWindow <= 0 {
		log.Fatal("REMINDER_WINDOW_SECONDS must be greater than 0")
	}
	if cfg.StaleAfter < cfg.ReminderWindow {
		log.Fatal("REMINDER_STALE_SECONDS must not be shorter than the reminder window")
	}
	if cfg.RecurrenceMonths <= 0 {
		log.Fatal("RECURRENCE_HORIZON_MONTHS must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsSeconds(key string, defaultVal int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultVal)) * time.Second
}

func getEnvAsLocation(key, defaultVal string) *time.Location {
	name := getEnv(key, defaultVal)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid IANA time zone for %s: %q", key, name)
	}
	return loc
}
