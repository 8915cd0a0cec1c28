package poll

import (
	"errors"
	"fmt"
	"sync"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape"
	"remotejobs-crawler/internal/scrape/greenhouse"
	"remotejobs-crawler/internal/scrape/lever"
	"remotejobs-crawler/internal/scrape/types"
	"remotejobs-crawler/internal/scrape/util"
)

var ErrUnknownSource = errors.New("unknown crawler source")

// Factory builds the crawler instance for one config.
type Factory func(cfg types.Config) (types.Crawler, error)

// Registry maps a source to the factory that knows how to crawl it.
type Registry struct {
	mu        sync.RWMutex
	factories map[domain.Source]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[domain.Source]Factory{}}
}

// DefaultRegistry wires every built-in ATS adapter to one shared HTTP client.
func DefaultRegistry(client *util.JSONClient, opts ...scrape.Option) *Registry {
	r := NewRegistry()
	r.Register(domain.SourceGreenhouse, func(cfg types.Config) (types.Crawler, error) {
		return greenhouse.New(cfg, client, nil, opts...), nil
	})
	r.Register(domain.SourceLever, func(cfg types.Config) (types.Crawler, error) {
		return lever.New(cfg, client, nil, opts...), nil
	})
	return r
}

func (r *Registry) Register(src domain.Source, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[src] = f
}

func (r *Registry) Build(cfg types.Config) (types.Crawler, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Source]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, cfg.Source)
	}
	return f(cfg)
}
