package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	EventBroker      string
	KafkaBrokers     []string
	KafkaGroupPrefix string
	APIToken         string
	RulesFile        string
	QuestionsFile    string
	Thresholds       string
	MergePolicy      string
	SessionTTL       time.Duration
	SlackToken       string
	SlackChannel     string
}

func Load() Config {
	return Config{
		Port:             envInt("QUALIFIER_PORT", 8760),
		NatsURL:          envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		EventBroker:      envStr("EVENT_BROKER", "nats"),
		KafkaBrokers:     envList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupPrefix: envStr("KAFKA_GROUP_PREFIX", "qualifier"),
		APIToken:         envStr("QUALIFIER_API_TOKEN", ""),
		RulesFile:        envStr("QUALIFIER_RULES_FILE", ""),
		QuestionsFile:    envStr("QUALIFIER_QUESTIONS_FILE", ""),
		Thresholds:       envStr("QUALIFIER_THRESHOLDS", "basic"),
		MergePolicy:      envStr("QUALIFIER_MERGE_POLICY", "prefer_existing"),
		SessionTTL:       time.Duration(envInt("QUALIFIER_SESSION_TTL_MINUTES", 240)) * time.Minute,
		SlackToken:       envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:     envStr("SLACK_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
