package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BlobBackend:       BlobBackendS3,
		IndexBackend:      IndexBackendMemory,
		LLMProvider:       LLMProviderOllama,
		OllamaHost:        "http://localhost:11434",
		TableSpanMode:     TableSpanBounding,
		AwsAccessKey:      "key",
		AwsSecretKey:      "secret",
		BucketName:        "docs",
		UnprocessedFolder: "unprocessed",
		ProcessedFolder:   "processed",
		JWTSecret:         "s3cr3t",
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("INDEX_BACKEND", "Memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.IndexBackend)
	assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
	assert.Equal(t, 512, cfg.ChunkTargetTokens)
	assert.Equal(t, "unprocessed", cfg.UnprocessedFolder)
	assert.Equal(t, "processed", cfg.ProcessedFolder)
	assert.Equal(t, TableSpanBounding, cfg.TableSpanMode)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CHUNK_TARGET_TOKENS", "128")
	t.Setenv("TABLE_SPAN_MODE", "LITERAL")
	t.Setenv("WORKER_COUNT", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.ChunkTargetTokens)
	assert.Equal(t, TableSpanLiteral, cfg.TableSpanMode)
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestLoadConfigRejectsBadInt(t *testing.T) {
	t.Setenv("CHUNK_TARGET_TOKENS", "many")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"pgvector without url": func(c *Config) { c.IndexBackend = IndexBackendPgvector },
		"unknown backend":      func(c *Config) { c.IndexBackend = "sqlite" },
		"gemini without key":   func(c *Config) { c.LLMProvider = LLMProviderGemini },
		"unknown provider":     func(c *Config) { c.LLMProvider = "bard" },
		"bad span mode":        func(c *Config) { c.TableSpanMode = "exact" },
		"no aws":               func(c *Config) { c.AwsSecretKey = "" },
		"unknown blob backend": func(c *Config) { c.BlobBackend = "gcs" },
		"same folders":         func(c *Config) { c.ProcessedFolder = c.UnprocessedFolder },
		"no jwt":               func(c *Config) { c.JWTSecret = "" },
	}
	mem := validConfig()
	mem.BlobBackend, mem.AwsAccessKey, mem.AwsSecretKey = BlobBackendMemory, "", ""
	require.NoError(t, mem.Validate())

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
