package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	IndexBackendPgvector = "pgvector"
	IndexBackendMemory   = "memory"

	LLMProviderGemini = "gemini"
	LLMProviderOllama = "ollama"

	BlobBackendS3     = "s3"
	BlobBackendMemory = "memory"

	TableSpanBounding = "bounding"
	TableSpanLiteral  = "literal"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret string `env:"JWT_SECRET"`

	// Search index
	IndexBackend string `env:"INDEX_BACKEND" envDefault:"pgvector"`
	DatabaseURL  string `env:"DATABASE_URL"`
	EmbedDim     int    `env:"EMBED_DIM" envDefault:"768"`

	// Blob storage
	BlobBackend       string `env:"BLOB_BACKEND" envDefault:"s3"`
	AwsAccessKey      string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey      string `env:"AWS_SECRET_KEY"`
	AwsRegion         string `env:"AWS_REGION" envDefault:"us-east-2"`
	BucketName        string `env:"BUCKET_NAME" envDefault:"layoutchunker-docs"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	UnprocessedFolder string `env:"UNPROCESSED_FOLDER" envDefault:"unprocessed"`
	ProcessedFolder   string `env:"PROCESSED_FOLDER" envDefault:"processed"`
	ChunksFolder      string `env:"CHUNKS_FOLDER" envDefault:"chunks"`

	// AI collaborators
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	AIAPIKey    string `env:"GEMINI_API_KEY"`
	EmbedModel  string `env:"EMBED_MODEL" envDefault:"text-embedding-004"`
	GenModel    string `env:"GEN_MODEL" envDefault:"gemini-1.5-flash"`
	OllamaHost  string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	// Ollama models; empty falls back to llama3.2 and nomic-embed-text.
	OllamaChatModel  string `env:"OLLAMA_CHAT_MODEL"`
	OllamaEmbedModel string `env:"OLLAMA_EMBED_MODEL"`

	// Chunking
	ChunkTargetTokens int    `env:"CHUNK_TARGET_TOKENS" envDefault:"512"`
	TableSpanMode     string `env:"TABLE_SPAN_MODE" envDefault:"bounding"`

	// Workers
	WorkerCount       int `env:"WORKER_COUNT" envDefault:"2"`
	QueueSize         int `env:"QUEUE_SIZE" envDefault:"64"`
	EnrichConcurrency int `env:"ENRICH_CONCURRENCY" envDefault:"4"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.BlobBackend = strings.ToLower(strings.TrimSpace(cfg.BlobBackend))
	cfg.IndexBackend = strings.ToLower(strings.TrimSpace(cfg.IndexBackend))
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.TableSpanMode = strings.ToLower(strings.TrimSpace(cfg.TableSpanMode))

	if cfg.ChunkTargetTokens <= 0 {
		cfg.ChunkTargetTokens = 512
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = 4
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.IndexBackend {
	case IndexBackendPgvector:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the pgvector index")
		}
	case IndexBackendMemory:
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q", c.IndexBackend)
	}

	switch c.LLMProvider {
	case LLMProviderGemini:
		if c.AIAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case LLMProviderOllama:
		if c.OllamaHost == "" {
			return fmt.Errorf("OLLAMA_HOST is required for the ollama provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.TableSpanMode {
	case TableSpanBounding, TableSpanLiteral:
	default:
		return fmt.Errorf("unknown TABLE_SPAN_MODE %q", c.TableSpanMode)
	}

	switch c.BlobBackend {
	case BlobBackendS3:
		if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			return fmt.Errorf("AWS credentials not set")
		}
	case BlobBackendMemory:
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}
	if c.BucketName == "" {
		return fmt.Errorf("BUCKET_NAME not set")
	}
	if c.UnprocessedFolder == c.ProcessedFolder {
		return fmt.Errorf("UNPROCESSED_FOLDER and PROCESSED_FOLDER must differ")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	return nil
}
