package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIConfig configures an OpenAI-compatible adapter.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIProvider calls the chat completions API of OpenAI or any compatible
// service such as Groq.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", cfg, "gpt-4o-mini")
}

// NewGroqProvider points the OpenAI client at Groq.
func NewGroqProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	return newOpenAICompatible("groq", cfg, "llama-3.3-70b-versatile")
}

func newOpenAICompatible(name string, cfg OpenAIConfig, defaultModel string) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		name:   name,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            buildOpenAIMessages(req),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}

	out := &Response{
		Text:     resp.Choices[0].Message.Content,
		Provider: p.name,
		Model:    resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		StopReason: "end",
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		out.StopReason = "max_tokens"
	}
	return finish(req, out)
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) ModelID() string { return p.model }

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	system := req.System
	if req.Schema != nil {
		// json_object mode requires the word JSON in the prompt
		system += "\n\n" + schemaInstruction(req.Schema)
	}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msg := openai.ChatCompletionMessage{Role: role}
		if len(m.Images) == 0 {
			msg.Content = m.Content
		} else {
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: m.Content,
			})
			for _, img := range m.Images {
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
						Detail: openai.ImageURLDetailHigh,
					},
				})
			}
		}
		messages = append(messages, msg)
	}
	return messages
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &ErrRateLimit{RetryAfter: RetryAfterFromMessage(apiErr.Message), Err: err}
		}
		return &ErrProviderUnavailable{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &ErrRateLimit{Err: err}
		}
		return &ErrProviderUnavailable{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
