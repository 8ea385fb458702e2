package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/logger"
)

const (
	BackendHuggingFace = "huggingface"
	BackendRekognition = "rekognition"

	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
	TraceExporterOTLP   = "otlp"

	defaultClassifierURL = "https://api-inference.huggingface.co/models/Maheentouqeer1/food-classifier-efficientnet"
	defaultPortionURL    = "https://api-inference.huggingface.co/models/Maheentouqeer1/glycocare-portion-estimator"
	defaultRegressionURL = "https://api-inference.huggingface.co/models/Maheentouqeer1/glycocare-glucose-regression"
)

type Config struct {
	HTTP      HTTPConfig
	DB        DBConfig
	Redis     RedisConfig
	Inference InferenceConfig
	AWS       AWSConfig
	Auth      AuthConfig
	Chat      ChatConfig
	Telegram  TelegramConfig
	Logger    LoggerConfig
	Tracing   TracingConfig
}

type HTTPConfig struct {
	Port string
}

// ListenAddr returns the address the HTTP server binds to.
func (c HTTPConfig) ListenAddr() string {
	return ":" + c.Port
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN returns the key/value connection string understood by both gorm and pgx.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

// RedisConfig is optional; an empty Host keeps bot state in memory.
type RedisConfig struct {
	Host string
	Port string
}

type InferenceConfig struct {
	Backend          string
	HuggingFaceToken string
	ClassifierURL    string
	PortionURL       string
	RegressionURL    string
	CallTimeout      time.Duration
}

type AWSConfig struct {
	Region   string
	S3Bucket string
}

type AuthConfig struct {
	JWTSecret string
}

type ChatConfig struct {
	Provider     string // "groq", "openai" or "gemini"
	OpenAIAPIKey string
	GroqAPIKey   string
	GeminiAPIKey string
	Model        string
	BaseURL      string
}

// TelegramConfig is optional; an empty token disables the bot.
type TelegramConfig struct {
	Token string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

// TracingConfig selects where pipeline spans are exported. An empty
// OTLPEndpoint leaves the exporter to the standard OTEL_EXPORTER_OTLP_* variables.
type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	ServiceName  string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return d, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func defaultChatModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return "llama-3.3-70b-versatile"
	}
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	timeout, err := getDurationOrDefault("INFERENCE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", "groq"))

	cfg := &Config{
		HTTP: HTTPConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "glycocare"),
		},
		Redis: RedisConfig{
			Host: os.Getenv("REDIS_HOST"),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Inference: InferenceConfig{
			Backend:          strings.ToLower(getEnvOrDefault("CLASSIFIER_BACKEND", BackendHuggingFace)),
			HuggingFaceToken: os.Getenv("HUGGINGFACE_TOKEN"),
			ClassifierURL:    getEnvOrDefault("HF_CLASSIFIER_URL", defaultClassifierURL),
			PortionURL:       getEnvOrDefault("HF_PORTION_URL", defaultPortionURL),
			RegressionURL:    getEnvOrDefault("HF_REGRESSION_URL", defaultRegressionURL),
			CallTimeout:      timeout,
		},
		AWS: AWSConfig{
			Region:   os.Getenv("AWS_REGION"),
			S3Bucket: os.Getenv("S3_BUCKET"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Chat: ChatConfig{
			Provider:     provider,
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			Model:        getEnvOrDefault("CHAT_MODEL", defaultChatModel(provider)),
			BaseURL:      os.Getenv("CHAT_BASE_URL"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Exporter:     strings.ToLower(getEnvOrDefault("TRACE_EXPORTER", TraceExporterNone)),
			OTLPEndpoint: os.Getenv("TRACE_OTLP_ENDPOINT"),
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "glycocare"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	switch c.Inference.Backend {
	case BackendHuggingFace:
	case BackendRekognition:
		if c.AWS.Region == "" {
			errs = append(errs, errors.New("AWS_REGION is required for the rekognition classifier"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CLASSIFIER_BACKEND %q", c.Inference.Backend))
	}

	// Portion and regression models are always served by Hugging Face.
	if c.Inference.HuggingFaceToken == "" {
		errs = append(errs, errors.New("HUGGINGFACE_TOKEN is required"))
	}

	if c.AWS.S3Bucket != "" && c.AWS.Region == "" {
		errs = append(errs, errors.New("AWS_REGION is required when S3_BUCKET is set"))
	}

	switch c.Chat.Provider {
	case "groq", "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown CHAT_PROVIDER %q", c.Chat.Provider))
	}

	switch c.Tracing.Exporter {
	case TraceExporterNone, TraceExporterStdout, TraceExporterOTLP:
	default:
		errs = append(errs, fmt.Errorf("unknown TRACE_EXPORTER %q", c.Tracing.Exporter))
	}

	return errors.Join(errs...)
}

// ChatAPIKey returns the key for the configured chat provider.
func (c ChatConfig) ChatAPIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.GroqAPIKey
	}
}
