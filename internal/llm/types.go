package llm

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a single chat completion call. A zero MaxTokens
// leaves the limit to the provider.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// UserPrompt builds a request whose only message is prompt, sent as the user.
func UserPrompt(model, prompt string, temperature float64, maxTokens int) CompletionRequest {
	return CompletionRequest{
		Model:       model,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// CompletionResponse is the model's reply. Token counts are zero when the
// provider does not report them.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Truncated reports whether the reply stopped at the token limit.
func (r *CompletionResponse) Truncated() bool {
	return r.FinishReason == "length"
}
