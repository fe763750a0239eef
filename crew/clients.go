package crew

import (
	"context"
	"fmt"
	"os"

	"github.com/crewgraph/crewgraph-go/crew/model"
	"github.com/crewgraph/crewgraph-go/crew/model/anthropic"
	"github.com/crewgraph/crewgraph-go/crew/model/google"
	"github.com/crewgraph/crewgraph-go/crew/model/openai"
)

// DefaultClientFactory builds real provider clients, reading API keys from
// the environment: OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY.
// Agents backed by a provider whose key is missing fail at construction,
// not at invocation time.
func DefaultClientFactory() model.Factory {
	return func(api string, cfg model.Config) (model.Client, error) {
		switch api {
		case "openai":
			return openai.New(os.Getenv("OPENAI_API_KEY"), cfg)
		case "anthropic":
			return anthropic.New(os.Getenv("ANTHROPIC_API_KEY"), cfg)
		case "google":
			return google.New(context.Background(), os.Getenv("GOOGLE_API_KEY"), cfg)
		default:
			return nil, fmt.Errorf("model factory: unknown provider API %q", api)
		}
	}
}
