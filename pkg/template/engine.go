package template

import (
	"fmt"
	"maps"
	mathrand "math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Engine generates mock data from rule fixtures.
// It is safe for concurrent use.
type Engine struct {
	sequences *SequenceStore

	mu  sync.Mutex
	rng *mathrand.Rand // nil uses the global source
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes generated values deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = mathrand.New(mathrand.NewPCG(seed, seed))
	}
}

// WithSequences shares a sequence store between engines.
func WithSequences(store *SequenceStore) Option {
	return func(e *Engine) { e.sequences = store }
}

// New creates an engine with its own sequence store.
func New(opts ...Option) *Engine {
	e := &Engine{sequences: NewSequenceStore()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// templateRegex matches {{expression}} patterns with optional whitespace.
var templateRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// singleExprRegex matches a string made of exactly one expression.
var singleExprRegex = regexp.MustCompile(`^\{\{\s*([^}]+?)\s*\}\}$`)

// MaxRepeat is the largest count a repeat key may produce.
const MaxRepeat = 1000

// maxRandomStringLength caps random.string(n).
const maxRandomStringLength = 4096

// repeatKeyRegex matches "name|N" and "name|min-max" object keys.
var repeatKeyRegex = regexp.MustCompile(`^(.+)\|(\d+)(?:-(\d+))?$`)

var (
	randomIntPattern    = regexp.MustCompile(`^random\.int(?:\((\d+),\s*(\d+)\))?$`)
	randomFloatPattern  = regexp.MustCompile(`^random\.float(?:\(([0-9.]+),\s*([0-9.]+)\))?$`)
	randomStringPattern = regexp.MustCompile(`^random\.string(?:\((\d+)\))?$`)
	sequencePattern     = regexp.MustCompile(`^sequence\("([^"]+)"(?:,\s*(\d+))?\)$`)
	fakerPattern        = regexp.MustCompile(`^faker\.(\w+)$`)
)

// Generate produces mock data from spec. Maps and slices are walked
// recursively, strings are expanded, other values are returned unchanged.
// The input is never modified.
func (e *Engine) Generate(spec any) (any, error) {
	return e.generate(spec)
}

func (e *Engine) generate(spec any) (any, error) {
	switch v := spec.(type) {
	case string:
		return e.expand(v), nil
	case map[string]any:
		out := make(map[string]any, len(v))
		// Sorted so a seeded engine consumes its source in a stable order.
		for _, key := range slices.Sorted(maps.Keys(v)) {
			name, generated, err := e.generateField(key, v[key])
			if err != nil {
				return nil, err
			}
			out[name] = generated
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			generated, err := e.generate(val)
			if err != nil {
				return nil, err
			}
			out[i] = generated
		}
		return out, nil
	default:
		return spec, nil
	}
}

// generateField handles one object member, applying a repeat suffix when
// the key carries one.
func (e *Engine) generateField(key string, val any) (string, any, error) {
	m := repeatKeyRegex.FindStringSubmatch(key)
	if m == nil {
		generated, err := e.generate(val)
		return key, generated, err
	}

	name := m[1]
	lo, err := repeatBound(key, m[2])
	if err != nil {
		return "", nil, err
	}
	count := lo
	if m[3] != "" {
		hi, err := repeatBound(key, m[3])
		if err != nil {
			return "", nil, err
		}
		if hi < lo {
			return "", nil, fmt.Errorf("invalid repeat range in key %q", key)
		}
		count = lo + e.intN(hi-lo+1)
	}

	switch v := val.(type) {
	case []any:
		out := make([]any, 0, count)
		for i := 0; i < count && len(v) > 0; i++ {
			generated, err := e.generate(v[i%len(v)])
			if err != nil {
				return "", nil, err
			}
			out = append(out, generated)
		}
		return name, out, nil
	case string:
		var sb strings.Builder
		for range count {
			sb.WriteString(e.expand(v))
		}
		return name, sb.String(), nil
	default:
		generated, err := e.generate(val)
		return name, generated, err
	}
}

// repeatBound parses one repeat count of key, bounded by MaxRepeat.
func repeatBound(key, digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid repeat count in key %q: %w", key, err)
	}
	if n > MaxRepeat {
		return 0, fmt.Errorf("repeat count %d in key %q exceeds %d", n, key, MaxRepeat)
	}
	return n, nil
}

// expand evaluates every expression in s. A string that is exactly one
// expression with a numeric or boolean result yields the typed value.
func (e *Engine) expand(s string) any {
	if m := singleExprRegex.FindStringSubmatch(s); m != nil {
		return e.evaluateTyped(strings.TrimSpace(m[1]))
	}
	out, _ := e.Process(s)
	return out
}

// Process evaluates every {{expression}} in template and returns the text.
// Unknown expressions expand to the empty string.
func (e *Engine) Process(template string) (string, error) {
	result := templateRegex.ReplaceAllStringFunc(template, func(match string) string {
		inner := templateRegex.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		return e.evaluate(strings.TrimSpace(inner[1]))
	})
	return result, nil
}

// evaluateTyped evaluates expr and converts numeric and boolean results.
func (e *Engine) evaluateTyped(expr string) any {
	text := e.evaluate(expr)
	switch {
	case randomIntPattern.MatchString(expr), sequencePattern.MatchString(expr),
		expr == "timestamp", expr == "timestamp.unix", expr == "timestamp.unix_ms":
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	case randomFloatPattern.MatchString(expr):
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	case expr == "faker.boolean":
		if b, err := strconv.ParseBool(text); err == nil {
			return b
		}
	}
	return text
}

// evaluate processes a single expression and returns its value.
func (e *Engine) evaluate(expr string) string {
	switch expr {
	case "now":
		return time.Now().Format(time.RFC3339)
	case "uuid":
		return e.uuid()
	case "uuid.short":
		return e.uuid()[:8]
	case "timestamp", "timestamp.unix":
		return strconv.FormatInt(time.Now().Unix(), 10)
	case "timestamp.iso":
		return time.Now().UTC().Format(time.RFC3339Nano)
	case "timestamp.unix_ms":
		return strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	if m := randomIntPattern.FindStringSubmatch(expr); m != nil {
		lo, hi := 0, 100
		if m[1] != "" {
			lo, _ = strconv.Atoi(m[1])
			hi, _ = strconv.Atoi(m[2])
		}
		return e.randomInt(lo, hi)
	}

	if m := randomFloatPattern.FindStringSubmatch(expr); m != nil {
		lo, hi := 0.0, 1.0
		if m[1] != "" {
			lo, _ = strconv.ParseFloat(m[1], 64)
			hi, _ = strconv.ParseFloat(m[2], 64)
		}
		return e.randomFloat(lo, hi)
	}

	if m := randomStringPattern.FindStringSubmatch(expr); m != nil {
		length := 10
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			length = min(n, maxRandomStringLength)
		}
		return e.randomString(length)
	}

	if m := sequencePattern.FindStringSubmatch(expr); m != nil {
		if e.sequences == nil {
			return ""
		}
		start := int64(1)
		if m[2] != "" {
			start, _ = strconv.ParseInt(m[2], 10, 64)
		}
		return strconv.FormatInt(e.sequences.Next(m[1], start), 10)
	}

	if m := fakerPattern.FindStringSubmatch(expr); m != nil {
		val, _ := e.Fake(m[1])
		return val
	}

	return ""
}
