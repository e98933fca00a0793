package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   LoggerConfig   `yaml:"logger"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Blog     BlogConfig     `yaml:"blog"`
	Director DirectorConfig `yaml:"director"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Personas PersonasConfig `yaml:"personas"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	Env             string        `yaml:"env"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	TablePrefix     string        `yaml:"table_prefix"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN returns the postgres connection string.
// DATABASE_URL style urls take precedence over discrete fields.
func (d DatabaseConfig) GetDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Addr returns host:port for the redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether any redis endpoint is configured
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

type AuthConfig struct {
	InternalAPIKey string `yaml:"internal_api_key"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type BlogConfig struct {
	BaseURL    string        `yaml:"base_url"`
	SitemapURL string        `yaml:"sitemap_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type DirectorConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	MaxCommentRunes int    `yaml:"max_comment_runes"`
	StrictParsing   bool   `yaml:"strict_parsing"`
	DefaultAvatar   string `yaml:"default_avatar"`
}

type ScheduleConfig struct {
	MinDelayMinutes int           `yaml:"min_delay_minutes"`
	MaxDelayMinutes int           `yaml:"max_delay_minutes"`
	SweepSpec       string        `yaml:"sweep_spec"`
	SweepEnabled    bool          `yaml:"sweep_enabled"`
	LeaseDuration   time.Duration `yaml:"lease_duration"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
	BatchLimit      int           `yaml:"batch_limit"`
}

type PersonasConfig struct {
	SeedFile string `yaml:"seed_file"`
}

// IsProduction reports whether the service runs in the production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Load reads configuration from the yaml file (if present) and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	// 운영 환경이 아니면 dev_ 접두사 테이블을 사용
	if cfg.Database.TablePrefix == "" && !cfg.IsProduction() {
		cfg.Database.TablePrefix = "dev_"
	}
	if cfg.Database.TablePrefix == "-" {
		cfg.Database.TablePrefix = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as runtime failures
func (c *Config) Validate() error {
	if c.Schedule.MinDelayMinutes < 0 {
		return fmt.Errorf("schedule.min_delay_minutes must be >= 0, got %d", c.Schedule.MinDelayMinutes)
	}
	if c.Schedule.MaxDelayMinutes < c.Schedule.MinDelayMinutes {
		return fmt.Errorf("schedule.max_delay_minutes (%d) must be >= min_delay_minutes (%d)",
			c.Schedule.MaxDelayMinutes, c.Schedule.MinDelayMinutes)
	}
	if c.Director.MaxCommentRunes <= 0 {
		return fmt.Errorf("director.max_comment_runes must be positive")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			Env:             "dev",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Logger: LoggerConfig{Level: "info"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "blog",
			SSLMode:         "disable",
			AutoMigrate:     true,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-pro",
			Timeout: 2 * time.Minute,
		},
		Blog: BlogConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 15 * time.Second,
		},
		Director: DirectorConfig{
			DefaultLanguage: "ko",
			MaxCommentRunes: 1000,
			DefaultAvatar:   "https://api.dicebear.com/7.x/identicon/svg?seed=",
		},
		Schedule: ScheduleConfig{
			MinDelayMinutes: 1,
			MaxDelayMinutes: 180,
			SweepSpec:       "@every 5m",
			SweepEnabled:    true,
			LeaseDuration:   10 * time.Minute,
			LockTTL:         15 * time.Minute,
			BatchLimit:      50,
		},
		Personas: PersonasConfig{SeedFile: "configs/personas.yaml"},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Server.Env, "ENV")
	setString(&cfg.Server.BasePath, "SERVER_BASE_PATH")
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}

	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Database.TablePrefix, "DB_TABLE_PREFIX")
	setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE")

	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Auth.InternalAPIKey, "INTERNAL_API_KEY")

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")

	setString(&cfg.Blog.BaseURL, "BLOG_BASE_URL")
	setString(&cfg.Blog.SitemapURL, "BLOG_SITEMAP_URL")

	setString(&cfg.Director.DefaultLanguage, "DIRECTOR_DEFAULT_LANGUAGE")
	setBool(&cfg.Director.StrictParsing, "DIRECTOR_STRICT_PARSING")

	setInt(&cfg.Schedule.MinDelayMinutes, "SCHEDULE_MIN_DELAY_MINUTES")
	setInt(&cfg.Schedule.MaxDelayMinutes, "SCHEDULE_MAX_DELAY_MINUTES")
	setString(&cfg.Schedule.SweepSpec, "SWEEP_SPEC")
	setBool(&cfg.Schedule.SweepEnabled, "SWEEP_ENABLED")

	setString(&cfg.Personas.SeedFile, "PERSONAS_SEED_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}
