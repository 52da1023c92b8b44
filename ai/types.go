package ai

// GenerationRequest is a single chat-style request to a Generator.
type GenerationRequest struct {
	// System holds the instructions sent with the system role.
	System string

	// Prompt is the user message.
	Prompt string

	// Temperature overrides the provider default when non-nil.
	Temperature *float64
}

// Temp is a helper for setting GenerationRequest.Temperature inline.
func Temp(v float64) *float64 {
	return &v
}
