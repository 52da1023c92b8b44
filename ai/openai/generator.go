// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/storyweave/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return newGeneratorFrom(client, config.Temperature), nil
}

func newGeneratorFrom(client llms.Model, temperature float64) *Generator {
	return &Generator{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}
}

// NewGenerator creates a new text generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate sends the system instructions and prompt as a two-message chat
// and returns the content of the first choice.
func (g *Generator) Generate(ctx context.Context, req ai.GenerationRequest) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	g.logger.Debug("generating content", "prompt_length", len(req.Prompt), "temperature", temperature)

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(temperature))
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Debug("no choices returned from model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}
