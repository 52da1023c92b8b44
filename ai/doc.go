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


// Package ai provides abstractions for the AI services storyweave depends on.
//
// Two capabilities are needed by the pipeline:
//
//   - Embedder: turns document texts into vectors for semantic similarity
//   - Generator: writes one unified article from several source texts
//
// AIProvider bundles both so they can share configuration and be closed together.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs (OpenAI, Ollama, vLLM, LocalAI) via langchaingo
//   - ai/mock: test doubles with call counters and injectable behavior
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, openai.NewGenerator)
// return interface types. Mock constructors return concrete types so tests can
// inspect call counts and inject behavior:
//
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) { ... }
//	count := mockEmbed.CallCount()
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, texts)
//	article, err := provider.Generator().Generate(ctx, ai.GenerationRequest{System: sys, Prompt: prompt})
package ai
