package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pgokul695/Winterthon/internal/store"
)

// NewProvider creates the configured default Provider.
// It returns the provider wrapped with retry, timeout and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	p, _, err := newProvider(ctx, cfg, cfg.Provider, eventRepo)
	return p, err
}

// newProvider builds the named provider and returns both the wrapped
// chain and the bare provider (used for model listing).
func newProvider(ctx context.Context, cfg Config, name string, eventRepo store.EventRepo) (Provider, Provider, error) {
	var base Provider
	var err error

	switch name {
	case ProviderOllama:
		base, err = NewOllamaProvider(cfg.Ollama)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		m := NewMockProvider()
		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	// Wrap with middleware: caller → retry → timeout → logging → base
	var p Provider = base
	if eventRepo != nil {
		p = WithLogging(p, name, eventRepo)
	}
	p = WithTimeout(p, cfg.Timeout)
	p = WithRetry(p, cfg.Retry)

	return p, base, nil
}

// Registry resolves provider names ("mode" in API requests) to lazily
// built providers that share one configuration and event log.
type Registry struct {
	cfg       Config
	eventRepo store.EventRepo

	mu        sync.Mutex
	providers map[string]Provider
	bases     map[string]Provider
}

// NewRegistry creates a Registry. eventRepo may be nil to disable event
// logging.
func NewRegistry(cfg Config, eventRepo store.EventRepo) *Registry {
	return &Registry{
		cfg:       cfg,
		eventRepo: eventRepo,
		providers: make(map[string]Provider),
		bases:     make(map[string]Provider),
	}
}

// Register installs p under name, replacing any built provider.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	r.bases[name] = p
}

// Default returns the configured default provider name.
func (r *Registry) Default() string {
	return r.cfg.Provider
}

// Names returns every provider name the registry can serve, sorted.
func (r *Registry) Names() []string {
	seen := map[string]bool{
		ProviderOllama:    true,
		ProviderGemini:    true,
		ProviderOpenAI:    true,
		ProviderAnthropic: true,
	}
	r.mu.Lock()
	for name := range r.providers {
		seen[name] = true
	}
	r.mu.Unlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider returns the provider for name, building it on first use.
// An empty name selects the default provider.
func (r *Registry) Provider(ctx context.Context, name string) (Provider, error) {
	if name == "" {
		name = r.cfg.Provider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	if err := r.cfg.ValidateProvider(name); err != nil {
		return nil, err
	}
	p, base, err := newProvider(ctx, r.cfg, name, r.eventRepo)
	if err != nil {
		return nil, err
	}
	r.providers[name] = p
	r.bases[name] = base
	return p, nil
}

// Models lists the models offered by the named provider.
func (r *Registry) Models(ctx context.Context, name string) ([]string, error) {
	if _, err := r.Provider(ctx, name); err != nil {
		return nil, err
	}
	if name == "" {
		name = r.cfg.Provider
	}

	r.mu.Lock()
	base := r.bases[name]
	r.mu.Unlock()

	lister, ok := base.(ModelLister)
	if !ok {
		return []string{base.ModelID()}, nil
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s models: %w", name, err)
	}
	return models, nil
}
