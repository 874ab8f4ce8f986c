package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/getmockd/modelproxy/pkg/logging"
)

// ErrProfileNotFound is returned when an interface id is not registered.
var ErrProfileNotFound = errors.New("interface profile not found")

// ErrNoStatus is returned when neither the document nor an option sets a status.
var ErrNoStatus = errors.New("no status specified in interface configuration")

var idPattern = regexp.MustCompile(`^((\w+\.)*\w+)$`)

// Registry holds the interface profiles of one document. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	title    string
	version  string
	rulebase string
	engine   string
	status   string

	profiles map[string]*Profile
	order    []string
	log      *slog.Logger
}

type options struct {
	status   string
	engine   string
	rulebase string
	logger   *slog.Logger
}

// Option configures registry construction.
type Option func(*options)

// WithStatus overrides the document status.
func WithStatus(status string) Option {
	return func(o *options) { o.status = status }
}

// WithEngine overrides the document mock engine name.
func WithEngine(engine string) Option {
	return func(o *options) { o.engine = engine }
}

// WithRulebase overrides the directory rule files are read from.
func WithRulebase(dir string) Option {
	return func(o *options) { o.rulebase = dir }
}

// WithLogger sets the logger used for profile warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewRegistry builds a registry from doc. Relative rulebase paths are
// resolved against baseDir. Invalid, duplicate and unusable profiles are
// skipped with a warning.
func NewRegistry(doc *Document, baseDir string, opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil {
		doc = &Document{}
	}

	r := &Registry{
		title:    doc.Title,
		version:  doc.Version,
		engine:   firstNonEmpty(o.engine, doc.Engine, DefaultEngine),
		status:   firstNonEmpty(o.status, doc.Status),
		profiles: make(map[string]*Profile),
		log:      logging.Component(o.logger, "config"),
	}

	switch {
	case o.rulebase != "":
		r.rulebase = o.rulebase
	case doc.Rulebase != "":
		r.rulebase = ResolvePath(baseDir, strings.TrimRight(doc.Rulebase, "/"))
	default:
		r.rulebase = filepath.Join(baseDir, DefaultRulebase)
	}

	if r.status == "" {
		return nil, ErrNoStatus
	}

	r.log.Debug("loading interface profiles", "title", r.title, "version", r.version, "status", r.status)

	for _, prof := range doc.Interfaces {
		if r.add(prof) {
			r.log.Debug("interface loaded", "interface", prof.ID)
		}
	}
	return r, nil
}

// add normalizes and registers prof. It reports whether prof was accepted.
func (r *Registry) add(prof *Profile) bool {
	if prof == nil || prof.ID == "" {
		r.log.Warn("cannot add interface profile without id")
		return false
	}
	if !idPattern.MatchString(prof.ID) {
		r.log.Warn("invalid interface id", "interface", prof.ID)
		return false
	}
	if _, exists := r.profiles[prof.ID]; exists {
		r.log.Warn("duplicate interface id, keeping the first one", "interface", prof.ID)
		return false
	}

	p := prof.clone()

	ruleFile := p.RuleFile
	if ruleFile == "" {
		ruleFile = p.ID + RuleFileSuffix
	}
	p.RuleFile = ResolvePath(r.rulebase, ruleFile)

	if len(p.URLs) == 0 && !fileExists(p.RuleFile) {
		r.log.Warn("interface has no urls and no rule file, skipping", "interface", p.ID, "ruleFile", p.RuleFile)
		return false
	}

	if _, ok := p.URLs[p.Status]; !ok && !p.IsMock() {
		p.Status = r.status
	}

	switch method := strings.ToUpper(p.Method); method {
	case MethodGet, MethodPost:
		p.Method = method
	case "":
		p.Method = MethodGet
	default:
		r.log.Warn("unsupported method, using GET", "interface", p.ID, "method", p.Method)
		p.Method = MethodGet
	}

	switch dataType := strings.ToLower(p.DataType); dataType {
	case DataTypeJSON, DataTypeText, DataTypeJSONP:
		p.DataType = dataType
	case "":
		p.DataType = DataTypeJSON
	default:
		r.log.Warn("unsupported dataType, using json", "interface", p.ID, "dataType", p.DataType)
		p.DataType = DataTypeJSON
	}

	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeoutMS
	}
	if p.Encoding == "" {
		p.Encoding = DefaultEncoding
	}

	r.profiles[p.ID] = &p
	r.order = append(r.order, p.ID)
	return true
}

// Profile returns a copy of the profile registered under id.
func (r *Registry) Profile(id string) (Profile, bool) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.profiles[id]
	return ok
}

// Rule reads and parses the rule file of the interface id. Rule files are
// read on every call; callers cache the result.
func (r *Registry) Rule(id string) (*Rule, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}

	data, err := os.ReadFile(p.RuleFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("rule file does not exist: %s", p.RuleFile)
		}
		return nil, fmt.Errorf("reading rule file %s: %w", p.RuleFile, err)
	}

	v, err := decodeNormalized(data, isYAMLPath(p.RuleFile))
	if err != nil {
		return nil, fmt.Errorf("rule file has a syntax error: %s: %w", p.RuleFile, err)
	}
	spec, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rule file must contain an object: %s", p.RuleFile)
	}

	return &Rule{
		Response:      spec["response"],
		ResponseError: spec["responseError"],
		Spec:          spec,
	}, nil
}

// IDsByPrefix returns the registered ids starting with prefix, in
// registration order. An empty prefix matches nothing.
func (r *Registry) IDsByPrefix(prefix string) []string {
	if prefix == "" {
		return nil
	}
	var ids []string
	for _, id := range r.order {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return ids
}

// IDs returns every registered id in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int { return len(r.order) }

// EngineName returns the name of the mock engine in use.
func (r *Registry) EngineName() string { return r.engine }

// Status returns the document-wide status.
func (r *Registry) Status() string { return r.status }

// Rulebase returns the directory rule files are resolved against.
func (r *Registry) Rulebase() string { return r.rulebase }

// Title returns the document title.
func (r *Registry) Title() string { return r.title }

// Version returns the document version.
func (r *Registry) Version() string { return r.version }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
