package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	WhatsApp     WhatsAppConfig
	Campaigns    CampaignsConfig
	Notifier     NotifierConfig
	Certificates CertificatesConfig
	Dashboard    DashboardConfig
	Availability AvailabilityConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WhatsAppConfig points at the message gateway used for campaigns and reminders.
type WhatsAppConfig struct {
	BaseURL     string
	APIKey      string
	InstanceKey string
	Timeout     time.Duration
}

// CampaignsConfig tunes the marketing dispatch workers.
type CampaignsConfig struct {
	Enabled           bool
	WorkerConcurrency int
	WorkerRetries     int
	SendDelay         time.Duration
	FinalizeLockTTL   time.Duration
}

// NotifierConfig tunes the appointment notification workers.
type NotifierConfig struct {
	Enabled           bool
	WorkerConcurrency int
	WorkerRetries     int
}

// CertificatesConfig controls medical certificate rendering.
type CertificatesConfig struct {
	ClinicName string
	CityName   string
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// AvailabilityConfig tunes the free-slot computation.
type AvailabilityConfig struct {
	DefaultSlotMinutes int
	CacheTTL           time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.WhatsApp = WhatsAppConfig{
		BaseURL:     v.GetString("WHATSAPP_BASE_URL"),
		APIKey:      v.GetString("WHATSAPP_API_KEY"),
		InstanceKey: v.GetString("WHATSAPP_INSTANCE_KEY"),
		Timeout:     parseDuration(v.GetString("WHATSAPP_TIMEOUT"), 15*time.Second),
	}

	cfg.Campaigns = CampaignsConfig{
		Enabled:           v.GetBool("ENABLE_CAMPAIGNS"),
		WorkerConcurrency: v.GetInt("CAMPAIGNS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("CAMPAIGNS_WORKER_RETRIES"),
		SendDelay:         parseDuration(v.GetString("CAMPAIGNS_SEND_DELAY"), time.Second),
		FinalizeLockTTL:   parseDuration(v.GetString("CAMPAIGNS_FINALIZE_LOCK_TTL"), 10*time.Second),
	}

	cfg.Notifier = NotifierConfig{
		Enabled:           v.GetBool("ENABLE_NOTIFICATIONS"),
		WorkerConcurrency: v.GetInt("NOTIFICATIONS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFICATIONS_WORKER_RETRIES"),
	}

	cfg.Certificates = CertificatesConfig{
		ClinicName: v.GetString("CERTIFICATES_CLINIC_NAME"),
		CityName:   v.GetString("CERTIFICATES_CITY_NAME"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Availability = AvailabilityConfig{
		DefaultSlotMinutes: v.GetInt("AVAILABILITY_DEFAULT_SLOT_MINUTES"),
		CacheTTL:           parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "managerclin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WHATSAPP_BASE_URL", "http://localhost:8088")
	v.SetDefault("WHATSAPP_API_KEY", "")
	v.SetDefault("WHATSAPP_INSTANCE_KEY", "default")
	v.SetDefault("WHATSAPP_TIMEOUT", "15s")

	v.SetDefault("ENABLE_CAMPAIGNS", false)
	v.SetDefault("CAMPAIGNS_WORKER_CONCURRENCY", 2)
	v.SetDefault("CAMPAIGNS_WORKER_RETRIES", 3)
	v.SetDefault("CAMPAIGNS_SEND_DELAY", "1s")
	v.SetDefault("CAMPAIGNS_FINALIZE_LOCK_TTL", "10s")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("NOTIFICATIONS_WORKER_CONCURRENCY", 1)
	v.SetDefault("NOTIFICATIONS_WORKER_RETRIES", 3)

	v.SetDefault("CERTIFICATES_CLINIC_NAME", "ManagerClin")
	v.SetDefault("CERTIFICATES_CITY_NAME", "")

	v.SetDefault("ENABLE_DASHBOARD", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("AVAILABILITY_DEFAULT_SLOT_MINUTES", 30)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
