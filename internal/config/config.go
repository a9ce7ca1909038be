package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
	MaxPages       int    `envconfig:"MAX_PAGES" default:"1000"`
	// When true, word-count page estimates also enforce MaxPages; real PDF
	// page counts always do.
	MaxPagesHard bool `envconfig:"MAX_PAGES_HARD" default:"false"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"doclens-archive"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbeddingBaseURL    string `envconfig:"EMBEDDING_BASE_URL"`

	LLMProvider string        `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel    string        `envconfig:"LLM_MODEL"`
	LLMBaseURL  string        `envconfig:"LLM_BASE_URL"`
	LLMAPIKey   string        `envconfig:"LLM_API_KEY"`
	LLMTimeout  time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	TopKDefault        int           `envconfig:"TOP_K_DEFAULT" default:"5"`
	SimilarityFloor    float32       `envconfig:"SIMILARITY_FLOOR" default:"0.7"`
	WorkerConcurrency  int           `envconfig:"WORKER_CONCURRENCY" default:"4"`
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"2s"`

	SentryDSN              string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment      string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentryTracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// GenerationAPIKey returns the key for the generation backend, falling back
// to the OpenAI key when no dedicated one is set.
func (c *Config) GenerationAPIKey() string {
	if c.LLMAPIKey != "" {
		return c.LLMAPIKey
	}
	return c.OpenAIAPIKey
}
