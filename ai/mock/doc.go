// Package mock provides test doubles for the ai package interfaces.
//
// The mocks are safe for concurrent use and record every call so tests can
// assert on request counts and contents.
//
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return fixedVectors, nil
//	}
//
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockGenerator: Returns a small Markdown article echoing the prompt size
//   - MockProvider: Aggregates mock embedder and generator
package mock
