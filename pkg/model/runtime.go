package model

import (
	"fmt"
	"log/slog"

	"github.com/getmockd/modelproxy/pkg/config"
	"github.com/getmockd/modelproxy/pkg/dispatch"
	"github.com/getmockd/modelproxy/pkg/logging"
	"github.com/getmockd/modelproxy/pkg/mockengine"
)

// Runtime wires a registry, the mock engines and a dispatcher factory
// behind a Builder.
type Runtime struct {
	*Builder

	Registry *config.Registry
	Engines  *mockengine.Set
	Factory  *dispatch.Factory
}

type initOptions struct {
	registry  []config.Option
	transport dispatch.Transport
	signer    dispatch.Signer
	engines   map[string]any
	logger    *slog.Logger
}

// InitOption configures Init and NewRuntime.
type InitOption func(*initOptions)

// WithRegistryOptions passes options to the registry loader.
func WithRegistryOptions(opts ...config.Option) InitOption {
	return func(o *initOptions) { o.registry = append(o.registry, opts...) }
}

// WithTransport sets the transport of every dispatcher.
func WithTransport(t dispatch.Transport) InitOption {
	return func(o *initOptions) { o.transport = t }
}

// WithSigner sets the signer used by signed profiles.
func WithSigner(s dispatch.Signer) InitOption {
	return func(o *initOptions) { o.signer = s }
}

// WithEngine registers a mock engine under name.
func WithEngine(name string, engine any) InitOption {
	return func(o *initOptions) {
		if o.engines == nil {
			o.engines = make(map[string]any)
		}
		o.engines[name] = engine
	}
}

// WithLogger sets the logger of every component.
func WithLogger(logger *slog.Logger) InitOption {
	return func(o *initOptions) { o.logger = logger }
}

// SettingsOptions converts runtime settings to init options.
func SettingsOptions(s config.Settings) ([]InitOption, error) {
	opts := []InitOption{WithRegistryOptions(s.RegistryOptions()...)}
	if s.SigningKey != "" {
		signer, err := dispatch.NewHMACSigner([]byte(s.SigningKey), s.SigningIssuer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSigner(signer))
	}
	return opts, nil
}

// Init loads the interface configuration at path and returns a runtime
// serving it.
func Init(path string, opts ...InitOption) (*Runtime, error) {
	var o initOptions
	for _, opt := range opts {
		opt(&o)
	}
	reg, err := config.Load(path, append(o.registry, config.WithLogger(o.logger))...)
	if err != nil {
		return nil, err
	}
	return NewRuntime(reg, opts...)
}

// NewRuntime returns a runtime serving reg.
func NewRuntime(reg *config.Registry, opts ...InitOption) (*Runtime, error) {
	var o initOptions
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.Component(o.logger, "model")

	engines := mockengine.NewSet()
	for name, engine := range o.engines {
		if err := engines.Register(name, engine); err != nil {
			return nil, fmt.Errorf("registering mock engine: %w", err)
		}
	}
	if _, err := engines.Lookup(reg.EngineName()); err != nil {
		log.Warn("mock engine is not registered; mock interfaces will fail", "engine", reg.EngineName())
	}

	dopts := []dispatch.Option{
		dispatch.WithRules(reg),
		dispatch.WithEngines(engines, reg.EngineName()),
		dispatch.WithLogger(o.logger),
	}
	if o.transport != nil {
		dopts = append(dopts, dispatch.WithTransport(o.transport))
	}
	if o.signer != nil {
		dopts = append(dopts, dispatch.WithSigner(o.signer))
	}

	factory := dispatch.NewFactory(reg, o.logger, dopts...)
	return &Runtime{
		Builder:  NewBuilder(factory, reg, o.logger),
		Registry: reg,
		Engines:  engines,
		Factory:  factory,
	}, nil
}
