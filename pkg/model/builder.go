package model

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/getmockd/modelproxy/pkg/dispatch"
	"github.com/getmockd/modelproxy/pkg/logging"
)

// DispatcherSource returns the dispatcher of an interface id.
type DispatcherSource interface {
	Get(id string) (*dispatch.Dispatcher, error)
}

// IDSource resolves interface ids by prefix.
type IDSource interface {
	IDsByPrefix(prefix string) []string
}

// prefixPattern matches "Pkg.*" and "Pkg.Sub.*".
var prefixPattern = regexp.MustCompile(`^(\w+\.)+\*$`)

// Builder creates models bound to dispatchers.
type Builder struct {
	dispatchers DispatcherSource
	ids         IDSource
	log         *slog.Logger
}

// NewBuilder returns a builder. ids may be nil when prefix patterns are not
// used.
func NewBuilder(dispatchers DispatcherSource, ids IDSource, logger *slog.Logger) *Builder {
	return &Builder{
		dispatchers: dispatchers,
		ids:         ids,
		log:         logging.Component(logger, "model"),
	}
}

// Build creates a model from a method-to-id mapping, a list of ids, or a
// string holding one id or a prefix pattern such as "Search.*".
func (b *Builder) Build(profile any) (*Model, error) {
	switch p := profile.(type) {
	case map[string]string:
		return b.FromMap(p)
	case []string:
		return b.FromIDs(p)
	case string:
		return b.FromString(p)
	case nil:
		return b.FromMap(nil)
	default:
		return nil, fmt.Errorf("unsupported model profile type %T", profile)
	}
}

// FromString creates a model from one id or a prefix pattern.
func (b *Builder) FromString(s string) (*Model, error) {
	if prefixPattern.MatchString(s) {
		if b.ids == nil {
			return nil, fmt.Errorf("cannot resolve pattern %q: no id source", s)
		}
		return b.FromIDs(b.ids.IDsByPrefix(strings.TrimSuffix(s, "*")))
	}
	return b.FromIDs([]string{s})
}

// FromIDs creates a model from a list of ids, naming methods with
// MethodNames.
func (b *Builder) FromIDs(ids []string) (*Model, error) {
	return b.FromMap(MethodNames(ids))
}

// FromMap creates a model with one method per entry. Every dispatcher is
// resolved here, so an unknown id or an unresolvable endpoint fails the
// build.
func (b *Builder) FromMap(profile map[string]string) (*Model, error) {
	m := &Model{
		methods: make(map[string]*Method, len(profile)),
		log:     b.log,
	}
	for name, id := range profile {
		d, err := b.dispatchers.Get(id)
		if err != nil {
			return nil, fmt.Errorf("building method %s: %w", name, err)
		}
		m.methods[name] = &Method{name: name, interfaceID: id, dispatcher: d, model: m}
	}
	b.log.Debug("model built", "methods", len(m.methods))
	return m, nil
}

// MethodNames maps ids to method names. Ids are visited in reverse order and
// named after their last dot segment; when that name is taken the id with
// dots replaced by underscores is used. Collisions among underscore names
// are not detected: the later assignment wins.
func MethodNames(ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		name := id[strings.LastIndex(id, ".")+1:]
		if _, taken := names[name]; taken {
			name = strings.ReplaceAll(id, ".", "_")
		}
		names[name] = id
	}
	return names
}
