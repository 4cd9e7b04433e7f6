package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Corpus
	DocsPath       string `envconfig:"DOCS_PATH" default:"docs"`
	PhoneDirectory string `envconfig:"PHONE_DIRECTORY" default:"Useful Phone Numbers/KKH Useful Contact Numbers.txt"`
	ChunkSize      int    `envconfig:"CHUNK_SIZE" default:"250"`
	ChunkOverlap   int    `envconfig:"CHUNK_OVERLAP" default:"75"`
	RetrievalTopK  int    `envconfig:"RETRIEVAL_TOP_K" default:"3"`

	// Vector store. Empty host means the in-memory store is used directly.
	WeaviateHost   string `envconfig:"WEAVIATE_HOST"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Generation / embedding capability
	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY"`
	GeminiEmbed    string `envconfig:"GEMINI_EMBED_MODEL" default:"gemini-embedding-001"`
	GeminiGenerate string `envconfig:"GEMINI_GENERATE_MODEL" default:"gemini-1.5-flash"`

	// Chat history persistence. Empty host disables the feature.
	DBHost        string `envconfig:"DB_HOST"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"nurseaid"`
	DBPass        string `envconfig:"DB_PASS" default:"password"`
	DBName        string `envconfig:"DB_NAME" default:"nurseaid"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Analytics events. Empty host disables publishing.
	NSQDHost string `envconfig:"NSQD_HOST"`

	// Server
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8000"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PhonePath resolves the phone reference document. PHONE_DIRECTORY is
// relative to the corpus root, so the default deployment ships the reference
// file alongside the other documents; an absolute value escapes the corpus.
func (c *Config) PhonePath() string {
	if filepath.IsAbs(c.PhoneDirectory) {
		return c.PhoneDirectory
	}
	return filepath.Join(c.DocsPath, c.PhoneDirectory)
}

func (c *Config) Validate() error {
	if c.DocsPath == "" {
		return fmt.Errorf("%w: DOCS_PATH", ErrMissingRequired)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid CHUNK_SIZE %d: must be positive", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("invalid CHUNK_OVERLAP %d: must be in [0, CHUNK_SIZE)", c.ChunkOverlap)
	}
	return nil
}
