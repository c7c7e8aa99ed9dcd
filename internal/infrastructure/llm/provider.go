package llm

import (
	"fmt"
	"strings"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/ports"
)

// New returns the text generator for the configured provider.
func New(cfg config.LLMConfig) (ports.TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", config.ProviderGemini:
		return NewGeminiClient(cfg.Gemini, nil), nil
	case config.ProviderOpenAI, "chatgpt":
		return NewChatGPTClient(cfg.ChatGPT, nil), nil
	default:
		return nil, fmt.Errorf("llm provider %s is not supported", cfg.Provider)
	}
}
