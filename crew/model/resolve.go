package model

import "fmt"

// size tier tables per provider. The "default" tier is what a bare
// ModelRef resolves to.
var modelNames = map[string]map[string]string{
	"openai": {
		"default": "gpt-4o",
		"small":   "gpt-4o-mini",
		"medium":  "gpt-4o",
		"large":   "gpt-4-turbo",
	},
	"anthropic": {
		"default": "claude-3-5-sonnet-20241022",
		"small":   "claude-3-haiku-20240307",
		"medium":  "claude-3-sonnet-20240229",
		"large":   "claude-3-opus-20240229",
	},
	"google": {
		"default": "gemini-1.5-flash",
		"small":   "gemini-1.5-flash",
		"medium":  "gemini-1.5-pro",
		"large":   "gemini-1.5-pro",
	},
}

// Resolve maps a provider API name and a size tier to a concrete model
// name. Unknown APIs or tiers are configuration errors.
func Resolve(api, size string) (string, error) {
	tiers, ok := modelNames[api]
	if !ok {
		return "", fmt.Errorf("model: unknown provider API %q", api)
	}
	if size == "" {
		size = "default"
	}
	name, ok := tiers[size]
	if !ok {
		return "", fmt.Errorf("model: provider %q has no size tier %q", api, size)
	}
	return name, nil
}

// Providers returns the set of provider API names Resolve understands.
func Providers() []string {
	return []string{"anthropic", "google", "openai"}
}
