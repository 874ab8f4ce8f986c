package dispatch

import (
	"log/slog"
	"sync"

	"github.com/getmockd/modelproxy/pkg/config"
	"github.com/getmockd/modelproxy/pkg/logging"
)

// ProfileSource looks up interface profiles.
type ProfileSource interface {
	Profile(id string) (config.Profile, bool)
}

// Factory creates and memoizes one Dispatcher per interface id.
// It is safe for concurrent use.
type Factory struct {
	profiles ProfileSource
	opts     []Option
	log      *slog.Logger

	mu    sync.Mutex
	cache map[string]*Dispatcher
}

// NewFactory returns a factory building dispatchers from profiles. opts
// are applied to every dispatcher it constructs.
func NewFactory(profiles ProfileSource, logger *slog.Logger, opts ...Option) *Factory {
	return &Factory{
		profiles: profiles,
		opts:     opts,
		log:      logging.Component(logger, "factory"),
		cache:    make(map[string]*Dispatcher),
	}
}

// Get returns the dispatcher for id, constructing it on first use. Unknown
// ids and failed constructions return a ConfigurationError; failures are
// not cached.
func (f *Factory) Get(id string) (*Dispatcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d, ok := f.cache[id]; ok {
		return d, nil
	}

	profile, ok := f.profiles.Profile(id)
	if !ok {
		return nil, &ConfigurationError{InterfaceID: id, Reason: "invalid interface id"}
	}
	d, err := New(profile, f.opts...)
	if err != nil {
		return nil, err
	}
	f.cache[id] = d
	f.log.Debug("dispatcher created", "interface", id, "state", d.State().String())
	return d, nil
}

// Reset drops every cached dispatcher.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]*Dispatcher)
}

// Len returns the number of cached dispatchers.
func (f *Factory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}
