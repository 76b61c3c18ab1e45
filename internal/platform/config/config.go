package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Heuristic thresholds and
// weights live in the YAML file named by HeuristicsConfig, not here.
type Server struct {
	Addr             string
	DatabaseURL      string
	HeuristicsConfig string
	// JWTSigningKey enables bearer auth when non-empty.
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	SweepSchedule string
	Redis         RedisConfig
	Kafka         KafkaConfig
	Log           LogConfig
}

// RedisConfig configures the notification acknowledgement store.
type RedisConfig struct {
	URL string
	// Addrs lists cluster nodes and takes precedence over URL.
	Addrs        []string
	Password     string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AckTTL bounds how long an acknowledgement is remembered.
	AckTTL time.Duration
}

// KafkaConfig configures the audit outbox relay.
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	Partitions        int32
	ReplicationFactor int16
	RelayInterval     time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultSweepSchedule runs the SLA sweep every 15 minutes.
const DefaultSweepSchedule = "*/15 * * * *"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:             envOr("OPSDESK_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HeuristicsConfig: os.Getenv("HEURISTICS_CONFIG"),
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:        envOr("JWT_ISSUER", "opsdesk"),
		JWTAudience:      envOr("JWT_AUDIENCE", "opsdesk-api"),
		SweepSchedule:    envOr("SWEEP_SCHEDULE", DefaultSweepSchedule),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Addrs:        splitList(os.Getenv("REDIS_ADDRS")),
			Password:     os.Getenv("REDIS_PASSWORD"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			AckTTL:       envDuration("NOTIFICATION_ACK_TTL", 30*24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:        envOr("KAFKA_AUDIT_TOPIC", "opsdesk.audit"),
			Partitions:        int32(envInt("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(envInt("KAFKA_AUDIT_REPLICATION", 1)),
			RelayInterval:     envDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}
}

// AuthEnabled reports whether bearer tokens are required.
func (s Server) AuthEnabled() bool {
	return s.JWTSigningKey != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
