package storyweave

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/poiesic/storyweave/ai"
	"github.com/poiesic/storyweave/dedup"
	"github.com/poiesic/storyweave/similarity"
	"github.com/poiesic/storyweave/synthesis"
	"gopkg.in/yaml.v3"
)

// Settings holds the tunables of a pipeline run. Keys missing from a YAML
// file keep their defaults.
type Settings struct {
	Threshold        float64       `yaml:"threshold"`
	BaseWeight       float64       `yaml:"baseWeight"`
	AmbiguousWeight  float64       `yaml:"ambiguousWeight"`
	AmbiguousDomains []string      `yaml:"ambiguousDomains"`
	MaxFeatures      int           `yaml:"maxFeatures"`
	MaxDocFreq       float64       `yaml:"maxDocFreq"`
	MaxEmbedChars    int           `yaml:"maxEmbedChars"`
	MaxConcurrent    int           `yaml:"maxConcurrent"`
	MaxRetries       int           `yaml:"maxRetries"`
	RetryDelay       time.Duration `yaml:"retryDelay"`
	AI               AISettings    `yaml:"ai"`
}

// AISettings mirrors ai.Config. The API key is deliberately absent: it is
// read from the environment or a flag.
type AISettings struct {
	EmbeddingHost  string  `yaml:"embeddingHost"`
	GeneratorHost  string  `yaml:"generatorHost"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	GeneratorModel string  `yaml:"generatorModel"`
	Temperature    float64 `yaml:"temperature"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	weights := similarity.DefaultWeightConfig()
	lexical := similarity.DefaultLexicalConfig()
	aiCfg := ai.DefaultConfig()

	domains := make([]string, 0, len(similarity.DefaultAmbiguousDomains))
	domains = append(domains, similarity.DefaultAmbiguousDomains...)

	return &Settings{
		Threshold:        dedup.DefaultThreshold,
		BaseWeight:       weights.Base,
		AmbiguousWeight:  weights.Ambiguous,
		AmbiguousDomains: domains,
		MaxFeatures:      lexical.MaxFeatures,
		MaxDocFreq:       lexical.MaxDocFreq,
		MaxEmbedChars:    similarity.DefaultMaxEmbedChars,
		MaxConcurrent:    synthesis.DefaultMaxConcurrent,
		MaxRetries:       synthesis.DefaultMaxRetries,
		RetryDelay:       synthesis.DefaultRetryDelay,
		AI: AISettings{
			EmbeddingHost:  aiCfg.EmbeddingHost,
			GeneratorHost:  aiCfg.GeneratorHost,
			EmbeddingModel: aiCfg.EmbeddingModel,
			GeneratorModel: aiCfg.GeneratorModel,
			Temperature:    aiCfg.Temperature,
		},
	}
}

// LoadSettings reads a YAML settings file on top of DefaultSettings.
// Unknown keys are rejected.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	s := DefaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Threshold <= 0 || s.Threshold >= 1 {
		return fmt.Errorf("threshold must be in (0, 1), got %v", s.Threshold)
	}
	if s.BaseWeight < 0 || s.BaseWeight > 1 {
		return fmt.Errorf("baseWeight must be in [0, 1], got %v", s.BaseWeight)
	}
	if s.AmbiguousWeight < 0 || s.AmbiguousWeight > 1 {
		return fmt.Errorf("ambiguousWeight must be in [0, 1], got %v", s.AmbiguousWeight)
	}
	if s.MaxFeatures < 1 {
		return fmt.Errorf("maxFeatures must be positive, got %d", s.MaxFeatures)
	}
	if s.MaxDocFreq <= 0 || s.MaxDocFreq > 1 {
		return fmt.Errorf("maxDocFreq must be in (0, 1], got %v", s.MaxDocFreq)
	}
	if s.MaxEmbedChars < 1 {
		return fmt.Errorf("maxEmbedChars must be positive, got %d", s.MaxEmbedChars)
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("maxConcurrent must be positive, got %d", s.MaxConcurrent)
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("maxRetries must be positive, got %d", s.MaxRetries)
	}
	if s.RetryDelay < 0 {
		return fmt.Errorf("retryDelay must not be negative, got %s", s.RetryDelay)
	}
	return nil
}

// AIConfig builds an ai.Config from the AI section and apiKey.
func (s *Settings) AIConfig(apiKey string) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(s.AI.EmbeddingHost),
		ai.WithGeneratorHost(s.AI.GeneratorHost),
		ai.WithEmbeddingModel(s.AI.EmbeddingModel),
		ai.WithGeneratorModel(s.AI.GeneratorModel),
		ai.WithTemperature(s.AI.Temperature),
		ai.WithAPIKey(apiKey),
	)
}

func (s *Settings) dedupOptions() []dedup.Option {
	return []dedup.Option{
		dedup.WithThreshold(s.Threshold),
		dedup.WithBaseWeight(s.BaseWeight),
		dedup.WithAmbiguousWeight(s.AmbiguousWeight),
		dedup.WithAmbiguousDomains(s.AmbiguousDomains...),
		dedup.WithMaxFeatures(s.MaxFeatures),
		dedup.WithMaxDocFreq(s.MaxDocFreq),
		dedup.WithMaxEmbedChars(s.MaxEmbedChars),
	}
}

func (s *Settings) synthesisOptions() []synthesis.Option {
	return []synthesis.Option{
		synthesis.WithMaxConcurrent(s.MaxConcurrent),
		synthesis.WithMaxRetries(s.MaxRetries),
		synthesis.WithRetryDelay(s.RetryDelay),
	}
}
