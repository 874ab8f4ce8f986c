// Package pipeline runs declarative model calls read from YAML or JSON
// documents.
//
// A document names the model to build, the combinator to drain it with and
// the calls to queue:
//
//	pattern: Shop.*
//	mode: series
//	calls:
//	  - method: list
//	    params: {q: lamp}
//	    pick: $.items[0]
//	  - method: get
//	    derive: '{"id": prev.id}'
//
// derive is an expr-lang expression evaluated with prev (the previous
// result) and results (every result so far); it must yield a mapping. pick
// is a JSONPath applied to the call's result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/modelproxy/pkg/config"
	"github.com/getmockd/modelproxy/pkg/dispatch"
	"github.com/getmockd/modelproxy/pkg/model"
)

// Mode names the combinator that drains the model.
type Mode string

// Supported modes.
const (
	ModeThen   Mode = "then"
	ModeAll    Mode = "all"
	ModeParal  Mode = "paral"
	ModeSeries Mode = "series"
)

// ErrInvalidPipeline wraps every document validation failure.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// Document is a parsed pipeline.
type Document struct {
	Model   map[string]string `yaml:"model,omitempty" json:"model,omitempty"`
	IDs     []string          `yaml:"ids,omitempty" json:"ids,omitempty"`
	Pattern string            `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Mode    Mode              `yaml:"mode,omitempty" json:"mode,omitempty"`
	Cookie  string            `yaml:"cookie,omitempty" json:"cookie,omitempty"`

	// Fallback fills the slot of a failed call in paral mode. Without it
	// the slot holds {"error": message}.
	Fallback any `yaml:"fallback,omitempty" json:"fallback,omitempty"`

	Calls []Call `yaml:"calls" json:"calls"`
}

// Call is one queued call of a pipeline.
type Call struct {
	Method string         `yaml:"method" json:"method"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	Derive string         `yaml:"derive,omitempty" json:"derive,omitempty"`
	Pick   string         `yaml:"pick,omitempty" json:"pick,omitempty"`

	derive *vm.Program
	pick   jp.Expr
}

// Result is the outcome of a run.
type Result struct {
	Mode   Mode  `json:"mode"`
	Values []any `json:"values"`
}

// ModelBuilder builds the model a pipeline runs against.
type ModelBuilder interface {
	Build(profile any) (*model.Model, error)
}

// Load reads and parses the pipeline at path. ${VAR} references are
// expanded first.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline: %w", err)
	}
	return Parse([]byte(config.ExpandEnvVars(string(data))))
}

// Parse parses and validates a YAML or JSON pipeline document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
	}
	if err := doc.compile(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
	}
	return &doc, nil
}

func (d *Document) compile() error {
	sources := 0
	if len(d.Model) > 0 {
		sources++
	}
	if len(d.IDs) > 0 {
		sources++
	}
	if d.Pattern != "" {
		sources++
	}
	if sources != 1 {
		return errors.New("exactly one of model, ids or pattern is required")
	}

	switch d.Mode {
	case "":
		d.Mode = ModeSeries
	case ModeThen, ModeAll, ModeParal, ModeSeries:
	default:
		return fmt.Errorf("unknown mode %q", d.Mode)
	}

	if len(d.Calls) == 0 {
		return errors.New("at least one call is required")
	}
	for i := range d.Calls {
		c := &d.Calls[i]
		if c.Method == "" {
			return fmt.Errorf("calls[%d]: method is required", i)
		}
		if c.Derive != "" && c.Params != nil {
			return fmt.Errorf("calls[%d]: params and derive are mutually exclusive", i)
		}
		if c.Derive != "" {
			program, err := expr.Compile(c.Derive, expr.Env(deriveEnv{}))
			if err != nil {
				return fmt.Errorf("calls[%d]: derive: %w", i, err)
			}
			c.derive = program
		}
		if c.Pick != "" {
			path, err := jp.ParseString(c.Pick)
			if err != nil {
				return fmt.Errorf("calls[%d]: pick: %w", i, err)
			}
			c.pick = path
		}
	}
	return nil
}

func (d *Document) profile() any {
	switch {
	case len(d.Model) > 0:
		return d.Model
	case len(d.IDs) > 0:
		return d.IDs
	default:
		return d.Pattern
	}
}

// Run builds the model, queues every call and drains the queue with the
// document's mode.
func (d *Document) Run(ctx context.Context, builder ModelBuilder) (*Result, error) {
	m, err := builder.Build(d.profile())
	if err != nil {
		return nil, err
	}
	if d.Cookie != "" {
		m.WithCookie(d.Cookie)
	}

	for i := range d.Calls {
		c := &d.Calls[i]
		var opts []model.CallOption
		if c.pick != nil {
			opts = append(opts, model.WithTransform(c.pickValue))
		}
		if c.derive != nil {
			m.Derive(c.Method, c.deriveParams, opts...)
		} else {
			m.Call(c.Method, dispatch.Params(c.Params), opts...)
		}
	}

	result := &Result{Mode: d.Mode}
	switch d.Mode {
	case ModeThen:
		value, err := m.First(ctx)
		if err != nil {
			return nil, err
		}
		result.Values = []any{value}
	case ModeAll:
		if result.Values, err = m.All(ctx); err != nil {
			return nil, err
		}
	case ModeParal:
		result.Values = m.Paral(ctx, d.recover)
	default:
		if result.Values, err = m.Series(ctx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (d *Document) recover(err error) any {
	if d.Fallback != nil {
		return d.Fallback
	}
	return map[string]any{"error": err.Error()}
}

// deriveEnv is what derive expressions see.
type deriveEnv struct {
	Prev    any   `expr:"prev"`
	Results []any `expr:"results"`
}

func (c *Call) deriveParams(prev any, results []any) (any, error) {
	return expr.Run(c.derive, deriveEnv{Prev: prev, Results: results})
}

func (c *Call) pickValue(value any) (any, error) {
	got := c.pick.Get(value)
	switch len(got) {
	case 0:
		return nil, fmt.Errorf("pick %s matched nothing", c.Pick)
	case 1:
		return got[0], nil
	default:
		return got, nil
	}
}
