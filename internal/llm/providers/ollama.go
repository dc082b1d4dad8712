// File path: internal/llm/providers/ollama.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/classpulse/classpulse/internal/common"
)

// OllamaProvider serves insight generation from a local Ollama model via
// langchaingo, for deployments without an OpenAI key.
type OllamaProvider struct {
	model *ollama.LLM
	name  string
}

func NewOllamaProvider(serverURL, modelName string) (*OllamaProvider, error) {
	opts := []ollama.Option{ollama.WithModel(modelName)}
	if trimmed := strings.TrimSpace(serverURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("configure ollama: %w", err)
	}
	common.Logger().Info("llm: Ollama provider configured", "model", modelName, "server", serverURL)
	return &OllamaProvider{model: model, name: modelName}, nil
}

func (o *OllamaProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	logger := common.Logger()
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role schema.ChatMessageType
		switch strings.ToLower(msg.Role) {
		case "system":
			role = schema.ChatMessageTypeSystem
		case "assistant":
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	resp, err := o.model.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		logger.Error("llm: ollama generation failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: ollama generation succeeded")
	return resp.Choices[0].Content, nil
}

func (o *OllamaProvider) Name() string {
	return "ollama"
}
