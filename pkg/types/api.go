package types

// ChatMessage is a single role/content turn in a chat conversation.
type ChatMessage struct {
	// Role of the author: system, user, or assistant.
	// example: user
	Role string `json:"role" example:"user"`
	// Message text.
	// example: Write a haiku about GPUs.
	Content string `json:"content" example:"Write a haiku about GPUs."`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions.
// The schema is owned by the server; only the fields this tool sends are listed.
type ChatCompletionRequest struct {
	// Model or adapter identifier to route the request to.
	// example: llama-3.1-8b-instruct
	Model string `json:"model" example:"llama-3.1-8b-instruct"`
	// Conversation turns in order.
	Messages []ChatMessage `json:"messages"`
	// Maximum number of new tokens to generate.
	// example: 256
	MaxTokens int `json:"max_tokens,omitempty" example:"256"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// If true, results arrive as server-sent events with partial content.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
}

// ChatCompletionChoice is one returned completion.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatCompletionResponse is the non-streaming response body.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *Usage                 `json:"usage,omitempty"`
}

// Usage reports token accounting when the server provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChunk is a single streamed SSE event payload.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice carries the partial-content delta of a streamed chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// ChunkDelta is the incremental part of an assistant message.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: upstream not ready
	Error string `json:"error" example:"upstream not ready"`
	// HTTP status code.
	// example: 502
	Code int `json:"code" example:"502"`
}
