// File path: internal/llm/llm.go
package llm

import (
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/classpulse/classpulse/internal/common"
	"github.com/classpulse/classpulse/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// NewProvider selects a provider from the environment: OpenAI when an
// API key is present, Ollama when a local model is named, and otherwise
// a stub whose output always triggers the fallback path.
func NewProvider() Provider {
	logger := common.Logger()
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
			timeout, err := time.ParseDuration(timeoutStr)
			if err != nil {
				logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
			} else {
				opts = append(opts, option.WithRequestTimeout(timeout))
			}
		}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		}
		logger.Info("llm: OpenAI provider selected")
		return providers.NewOpenAIProvider(openai.NewClient(opts...))
	}
	if model := strings.TrimSpace(os.Getenv("CLASSPULSE_OLLAMA_MODEL")); model != "" {
		provider, err := providers.NewOllamaProvider(os.Getenv("CLASSPULSE_OLLAMA_HOST"), model)
		if err != nil {
			logger.Warn("llm: ollama configuration failed; falling back to local provider", "error", err)
		} else {
			logger.Info("llm: Ollama provider selected", "model", model)
			return provider
		}
	}
	logger.Warn("llm: no provider configured; using local stub")
	return providers.NewLocalProvider()
}
