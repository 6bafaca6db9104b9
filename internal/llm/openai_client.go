// ABOUTME: OpenAI chat completion client used to continue a guy's conversation
// ABOUTME: Maps guy history and functions onto go-openai requests with retry logic
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/logging"
	"github.com/harper/prompt-randomizer/internal/models"
	"github.com/harper/prompt-randomizer/internal/util"
)

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = openai.GPT4

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	ChatModel  string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *log.Logger
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:     apiKey,
		ChatModel:  DefaultChatModel,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// ConfigFrom builds a client configuration from the loaded application config
func ConfigFrom(cfg *config.Config) *ClientConfig {
	c := DefaultConfig(cfg.OpenAIKey)
	if cfg.ChatModel != "" {
		c.ChatModel = cfg.ChatModel
	}
	c.Timeout = cfg.Timeout
	c.MaxRetries = cfg.MaxRetries
	c.RetryDelay = cfg.RetryDelay
	return c
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client    *openai.Client
	chatModel string
	timeout   time.Duration
	policy    util.Policy
	logger    *log.Logger
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(cfg *ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.ChatModel
	if model == "" {
		model = DefaultChatModel
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(oc),
		chatModel: model,
		timeout:   timeout,
		policy:    util.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryDelay},
		logger:    logger,
	}, nil
}

// Model returns the configured chat model
func (c *OpenAIClient) Model() string {
	return c.chatModel
}

// Complete asks the model to continue history and returns its reply as an assistant message.
// An empty model uses the configured one.
func (c *OpenAIClient) Complete(ctx context.Context, model string, history []models.Message, functions []models.Function) (models.Message, error) {
	if len(history) == 0 {
		return models.Message{}, fmt.Errorf("nothing to complete: history is empty")
	}
	if model == "" {
		model = c.chatModel
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(history),
		Tools:    toTools(functions),
	}

	var reply string
	err := util.Do(ctx, c.policy, c.logger, "chat completion", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}
		reply = replyText(resp.Choices[0].Message)
		return nil
	})
	if err != nil {
		return models.Message{}, err
	}

	return models.NewMessage(models.RoleAssistant, reply)
}

func toChatMessages(history []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		msg := openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
		if m.Role == models.RoleFunction {
			// function results must name the function; none is recorded so use the role
			msg.Name = string(m.Role)
		}
		out = append(out, msg)
	}
	return out
}

func toTools(functions []models.Function) []openai.Tool {
	if len(functions) == 0 {
		return nil
	}
	tools := make([]openai.Tool, 0, len(functions))
	for _, f := range functions {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        f.Name,
				Description: f.Description,
				Parameters:  f.Parameters,
			},
		})
	}
	return tools
}

// replyText flattens tool calls into text when the model answered with a call
func replyText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		return msg.Content
	}
	calls := make([]map[string]string, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		calls = append(calls, map[string]string{"name": tc.Function.Name, "arguments": tc.Function.Arguments})
	}
	data, err := json.Marshal(calls)
	if err != nil {
		return msg.ToolCalls[0].Function.Name
	}
	return string(data)
}
