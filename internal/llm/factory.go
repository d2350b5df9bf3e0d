package llm

import (
	"fmt"
	"strings"
)

const (
	ProviderWorker = "worker"
	ProviderOpenAI = "openai"
)

// Factory creates completion clients with consistent logic
type Factory struct {
	WorkerURL     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderWorker:
		if f.WorkerURL == "" {
			return nil, fmt.Errorf("worker provider selected but no worker url configured")
		}
		return NewWorker(f.WorkerURL), nil
	case ProviderOpenAI:
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
