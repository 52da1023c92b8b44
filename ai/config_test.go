package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:7b", cfg.GeneratorModel)
	assert.Equal(t, "none", cfg.APIKey)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GeneratorHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGeneratorHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.GeneratorHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithGeneratorModel("gpt-4o-mini"),
			WithAPIKey("sk-test"),
			WithTemperature(0.7),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.GeneratorModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name              string
		embeddingHost     string
		generatorHost     string
		expectedEmbedding string
		expectedGenerator string
	}{
		{
			name:              "already has /v1",
			embeddingHost:     "http://localhost:11434/v1",
			generatorHost:     "http://localhost:11434/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedGenerator: "http://localhost:11434/v1",
		},
		{
			name:              "missing /v1",
			embeddingHost:     "http://localhost:11434",
			generatorHost:     "http://localhost:11434",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedGenerator: "http://localhost:11434/v1",
		},
		{
			name:              "has trailing slash",
			embeddingHost:     "http://localhost:11434/",
			generatorHost:     "http://localhost:11434/",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedGenerator: "http://localhost:11434/v1",
		},
		{
			name: "empty hosts",
		},
		{
			name:              "different formats",
			embeddingHost:     "http://embed:8080",
			generatorHost:     "https://api.openai.com/v1",
			expectedEmbedding: "http://embed:8080/v1",
			expectedGenerator: "https://api.openai.com/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				GeneratorHost: tt.generatorHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedGenerator, cfg.GeneratorHost)
			assert.Equal(t, "none", cfg.APIKey)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EmbeddingHost:  "http://localhost:11434",
			GeneratorHost:  "http://localhost:11434",
			EmbeddingModel: "embeddinggemma",
			GeneratorModel: "qwen2.5:7b",
			Temperature:    0.3,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, wantMsg: "EmbeddingHost"},
		{name: "missing generator host", mutate: func(c *Config) { c.GeneratorHost = "" }, wantMsg: "GeneratorHost"},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, wantMsg: "EmbeddingModel"},
		{name: "missing generator model", mutate: func(c *Config) { c.GeneratorModel = "" }, wantMsg: "GeneratorModel"},
		{name: "negative temperature", mutate: func(c *Config) { c.Temperature = -0.1 }, wantMsg: "Temperature"},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 2.5 }, wantMsg: "Temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
