package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/getmockd/modelproxy/pkg/config"
	"github.com/getmockd/modelproxy/pkg/logging"
	"github.com/getmockd/modelproxy/pkg/mockengine"
)

// State is the fixed execution mode of a Dispatcher.
type State int

// Dispatcher states.
const (
	StateLive State = iota
	StateMockSuccess
	StateMockError
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "LIVE"
	case StateMockSuccess:
		return "MOCK_SUCCESS"
	case StateMockError:
		return "MOCK_ERROR"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RuleSource resolves the mock rule of an interface.
type RuleSource interface {
	Rule(id string) (*config.Rule, error)
}

// Response is the outcome of a successful dispatch.
type Response struct {
	// Body is the parsed JSON value, the decoded text, the raw bytes for
	// the raw encoding, or the mock value.
	Body any
	// SetCookie holds the Set-Cookie values of a live response.
	SetCookie []string
}

// Dispatcher executes calls to one interface, live or mocked.
// It is safe for concurrent use.
type Dispatcher struct {
	profile config.Profile
	state   State
	url     string
	method  string

	transport  Transport
	rules      RuleSource
	engines    *mockengine.Set
	engineName string
	signer     Signer
	log        *slog.Logger

	ruleMu sync.Mutex
	rule   *config.Rule
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTransport sets the live transport. The default is an HTTPTransport.
func WithTransport(t Transport) Option {
	return func(d *Dispatcher) { d.transport = t }
}

// WithRules sets where mock rules are read from.
func WithRules(rules RuleSource) Option {
	return func(d *Dispatcher) { d.rules = rules }
}

// WithEngines sets the engine set and the name of the active engine.
func WithEngines(set *mockengine.Set, name string) Option {
	return func(d *Dispatcher) {
		d.engines = set
		d.engineName = name
	}
}

// WithSigner sets the signer used for signed profiles.
func WithSigner(s Signer) Option {
	return func(d *Dispatcher) { d.signer = s }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = logging.Component(logger, "dispatch") }
}

// New creates a Dispatcher for profile. A live status without a URL in the
// profile's URL map is a ConfigurationError.
func New(profile config.Profile, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		profile:    profile,
		engineName: config.DefaultEngine,
		log:        logging.Component(nil, "dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}

	if profile.IsMock() {
		d.state = StateMockSuccess
		if profile.Status == config.StatusMockErr {
			d.state = StateMockError
		}
		if d.engines == nil {
			d.engines = mockengine.NewSet()
		}
		return d, nil
	}

	d.state = StateLive
	d.url = profile.URLs[profile.Status]
	if d.url == "" {
		return nil, &ConfigurationError{
			InterfaceID: profile.ID,
			Reason:      fmt.Sprintf("no endpoint can be resolved for status %q", profile.Status),
		}
	}
	d.method = strings.ToUpper(profile.Method)
	if d.method == "" {
		d.method = config.MethodGet
	}
	if d.transport == nil {
		d.transport = NewHTTPTransport()
	}
	return d, nil
}

// ID returns the interface id.
func (d *Dispatcher) ID() string { return d.profile.ID }

// State returns the dispatcher state.
func (d *Dispatcher) State() State { return d.state }

// URL returns the resolved endpoint, empty in mock states.
func (d *Dispatcher) URL() string { return d.url }

// Method returns the normalized HTTP method, empty in mock states.
func (d *Dispatcher) Method() string { return d.method }

// Profile returns the profile the dispatcher was built from.
func (d *Dispatcher) Profile() config.Profile { return d.profile }

// Request dispatches one call and reports the outcome through the
// callbacks. A missing required cookie is returned directly and neither
// callback runs. A nil onError logs the failure and swallows it.
func (d *Dispatcher) Request(ctx context.Context, params Params, onSuccess func(*Response), onError func(error), cookie string) error {
	if err := d.checkCookie(cookie); err != nil {
		return err
	}

	resp, err := d.dispatch(ctx, params, cookie)
	if err != nil {
		if onError == nil {
			d.log.Error("interface request failed", "interface", d.profile.ID, "error", err)
			return nil
		}
		onError(err)
		return nil
	}
	if onSuccess != nil {
		onSuccess(resp)
	}
	return nil
}

// Do dispatches one call and returns its outcome.
func (d *Dispatcher) Do(ctx context.Context, params Params, cookie string) (*Response, error) {
	if err := d.checkCookie(cookie); err != nil {
		return nil, err
	}
	return d.dispatch(ctx, params, cookie)
}

func (d *Dispatcher) checkCookie(cookie string) error {
	if d.profile.IsCookieNeeded && cookie == "" {
		return &CookieRequiredError{InterfaceID: d.profile.ID}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, params Params, cookie string) (*Response, error) {
	if d.state != StateLive {
		return d.mock()
	}
	return d.live(ctx, params, cookie)
}

func (d *Dispatcher) mock() (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MockEngineError{InterfaceID: d.profile.ID, Engine: d.engineName, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	rule, err := d.loadRule()
	if err != nil {
		return nil, &MockEngineError{InterfaceID: d.profile.ID, Err: err}
	}
	if d.profile.IsRuleStatic {
		return &Response{Body: rule.Fixture(d.profile.Status)}, nil
	}

	body, err := d.generate(rule)
	if err != nil {
		return nil, &MockEngineError{InterfaceID: d.profile.ID, Engine: d.engineName, Err: err}
	}
	return &Response{Body: body}, nil
}

// loadRule returns the cached rule, reading it on first use. Failed reads
// are not cached.
func (d *Dispatcher) loadRule() (*config.Rule, error) {
	d.ruleMu.Lock()
	defer d.ruleMu.Unlock()
	if d.rule != nil {
		return d.rule, nil
	}
	if d.rules == nil {
		return nil, errors.New("no rule source configured")
	}
	rule, err := d.rules.Rule(d.profile.ID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, errors.New("rule source returned no rule")
	}
	d.rule = rule
	return rule, nil
}

// generate runs the active engine. The schema engine consumes the whole
// rule; every other engine consumes the fixture for the current state.
func (d *Dispatcher) generate(rule *config.Rule) (any, error) {
	engine, err := d.engines.Lookup(d.engineName)
	if err != nil {
		return nil, err
	}

	if d.engineName == mockengine.SchemaEngineName {
		mocker, ok := engine.(mockengine.SpecMocker)
		if !ok {
			return nil, fmt.Errorf("engine %q has no SpecToMock entry point", d.engineName)
		}
		return mocker.SpecToMock(rule.Spec)
	}

	gen, ok := engine.(mockengine.Engine)
	if !ok {
		return nil, fmt.Errorf("engine %q has no Generate entry point", d.engineName)
	}
	return gen.Generate(rule.Fixture(d.profile.Status))
}

func (d *Dispatcher) live(ctx context.Context, params Params, cookie string) (*Response, error) {
	values := params.Values()
	req := &Request{
		URL:     d.url,
		Method:  d.method,
		Timeout: d.profile.TimeoutDuration(),
		Header:  make(http.Header),
	}
	if d.method == config.MethodPost {
		req.Form = values
	} else {
		req.Query = values
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	if d.profile.Signed {
		if d.signer == nil {
			d.log.Debug("signed interface sent unsigned, no signer configured", "interface", d.profile.ID)
		} else {
			token, err := d.signer.Sign(d.profile.ID, params)
			if err != nil {
				return nil, &TransportError{InterfaceID: d.profile.ID, URL: d.url, Params: values.Encode(), Err: err}
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	d.log.Debug("dispatching request", "interface", d.profile.ID, "method", d.method, "url", d.url, "cookie", cookie)

	tresp, err := d.transport.Do(ctx, req)
	if err != nil {
		return nil, &TransportError{InterfaceID: d.profile.ID, URL: d.url, Params: values.Encode(), Err: err}
	}

	var setCookie []string
	if tresp.Header != nil {
		setCookie = tresp.Header.Values("Set-Cookie")
	}

	if d.profile.Encoding == config.EncodingRaw {
		return &Response{Body: tresp.Body, SetCookie: setCookie}, nil
	}

	parseErr := func(err error) error {
		return &ParseError{InterfaceID: d.profile.ID, URL: d.url, Params: values.Encode(), Body: tresp.Body, Err: err}
	}

	text, err := decodeBody(tresp.Body, d.profile.Encoding)
	if err != nil {
		return nil, parseErr(err)
	}

	switch strings.ToLower(d.profile.DataType) {
	case config.DataTypeJSON, "":
	case config.DataTypeJSONP:
		if text, err = unwrapJSONP(text); err != nil {
			return nil, parseErr(err)
		}
	default:
		return &Response{Body: text, SetCookie: setCookie}, nil
	}

	var body any
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, parseErr(err)
	}
	return &Response{Body: body, SetCookie: setCookie}, nil
}

var jsonpPattern = regexp.MustCompile(`^\s*[\w$.]+\s*\(([\s\S]*)\)\s*;?\s*$`)

// unwrapJSONP strips the callback padding from a JSONP body.
func unwrapJSONP(text string) (string, error) {
	m := jsonpPattern.FindStringSubmatch(text)
	if m == nil {
		return "", errors.New("body is not a jsonp callback")
	}
	return m[1], nil
}
