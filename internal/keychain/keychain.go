// ABOUTME: Keychain collects API keys from *_API_KEY environment variables
// ABOUTME: Keys are looked up by provider name, e.g. OPENAI or STABLE_DIFFUSION
package keychain

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

const keySuffix = "_API_KEY"

// Provider names used by the randomizer
const (
	OpenAI          = "OPENAI"
	StableDiffusion = "STABLE_DIFFUSION"
)

// KeyChain is read-only after construction
type KeyChain struct {
	mu   sync.RWMutex
	keys map[string]string
}

// FromEnv builds a keychain from the process environment
func FromEnv() *KeyChain {
	return FromPairs(os.Environ())
}

// FromPairs builds a keychain from KEY=value pairs
func FromPairs(pairs []string) *KeyChain {
	keys := make(map[string]string)
	for _, kv := range pairs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		provider, found := strings.CutSuffix(name, keySuffix)
		if !found || provider == "" {
			continue
		}
		keys[provider] = value
	}
	return &KeyChain{keys: keys}
}

// Get returns the key for provider
func (k *KeyChain) Get(provider string) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.keys[provider]
	return v, ok
}

// Require returns the key for provider or an error naming the missing variable
func (k *KeyChain) Require(provider string) (string, error) {
	v, ok := k.Get(provider)
	if !ok {
		return "", fmt.Errorf("%s%s environment variable not set", provider, keySuffix)
	}
	return v, nil
}

// Names returns the providers with a key, sorted
func (k *KeyChain) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	names := make([]string, 0, len(k.keys))
	for n := range k.keys {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
