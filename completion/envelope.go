package completion

import (
	"time"

	"github.com/google/uuid"

	"github.com/tlum/assistant-backend/model"
)

// Envelope is the complete externally visible response object for one
// completion request (OpenAI chat.completion wire shape). Immutable once
// returned; partial envelopes are never emitted.
type Envelope struct {
	ID          string   `json:"id"`
	Object      string   `json:"object"` // "chat.completion"
	Created     int64    `json:"created"`
	Model       string   `json:"model"`
	Choices     []Choice `json:"choices"`
	Usage       Usage    `json:"usage"`
	ServiceTier string   `json:"service_tier"`
}

// Choice is the single assistant choice of an envelope.
type Choice struct {
	Index        int              `json:"index"`
	Message      AssistantMessage `json:"message"`
	Logprobs     any              `json:"logprobs"` // always null
	FinishReason string           `json:"finish_reason"`
}

// AssistantMessage is the assistant turn inside a choice.
type AssistantMessage struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	Refusal     any    `json:"refusal"` // always null
	Annotations []any  `json:"annotations"`
}

// Usage reports token accounting for the whole request, summed across both
// generation calls when a tool round-trip occurred.
type Usage struct {
	PromptTokens            int                     `json:"prompt_tokens"`
	CompletionTokens        int                     `json:"completion_tokens"`
	TotalTokens             int                     `json:"total_tokens"`
	PromptTokensDetails     PromptTokensDetails     `json:"prompt_tokens_details"`
	CompletionTokensDetails CompletionTokensDetails `json:"completion_tokens_details"`
}

// PromptTokensDetails breaks down prompt token usage.
type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
	AudioTokens  int `json:"audio_tokens"`
}

// CompletionTokensDetails breaks down completion token usage.
type CompletionTokensDetails struct {
	ReasoningTokens          int `json:"reasoning_tokens"`
	AudioTokens              int `json:"audio_tokens"`
	AcceptedPredictionTokens int `json:"accepted_prediction_tokens"`
	RejectedPredictionTokens int `json:"rejected_prediction_tokens"`
}

// NewEnvelope assembles the response envelope for a finished request.
func NewEnvelope(modelName, content string, usage model.TokenUsage) *Envelope {
	return &Envelope{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   modelName,
		Choices: []Choice{{
			Index: 0,
			Message: AssistantMessage{
				Role:        "assistant",
				Content:     content,
				Annotations: []any{},
			},
			FinishReason: "stop",
		}},
		Usage: Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
		ServiceTier: "default",
	}
}
