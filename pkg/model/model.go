package model

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/getmockd/modelproxy/pkg/dispatch"
)

// Method is one callable of a Model, bound to an interface at build time.
type Method struct {
	name        string
	interfaceID string
	dispatcher  *dispatch.Dispatcher
	model       *Model
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// InterfaceID returns the id of the interface the method calls.
func (m *Method) InterfaceID() string { return m.interfaceID }

// Call queues a call with literal params. Nil params send no parameters.
func (m *Method) Call(params dispatch.Params, opts ...CallOption) *Model {
	return m.model.enqueue(m.newTask(params, nil, opts))
}

// Derive queues a call whose params are computed when it is dispatched.
func (m *Method) Derive(fn ParamsFunc, opts ...CallOption) *Model {
	return m.model.enqueue(m.newTask(nil, fn, opts))
}

func (m *Method) newTask(params dispatch.Params, fn ParamsFunc, opts []CallOption) *Task {
	t := &Task{
		Method:      m.name,
		InterfaceID: m.interfaceID,
		Params:      params,
		Derive:      fn,
		dispatcher:  m.dispatcher,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Model is a named set of interface calls. Calls are queued by its methods
// and sent by exactly one combinator, which drains the queue and cookie.
// It is safe for concurrent use, but a queue belongs to whichever
// combinator drains it first.
type Model struct {
	methods map[string]*Method
	log     *slog.Logger

	mu     sync.Mutex
	queue  []*Task
	cookie string
}

// Method returns the named method.
func (m *Model) Method(name string) (*Method, bool) {
	meth, ok := m.methods[name]
	return meth, ok
}

// Methods returns the method names, sorted.
func (m *Model) Methods() []string {
	names := make([]string, 0, len(m.methods))
	for name := range m.methods {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Call queues a call to the named method. An unknown name queues a task
// that fails with a dispatch.ConfigurationError when dispatched.
func (m *Model) Call(name string, params dispatch.Params, opts ...CallOption) *Model {
	meth, ok := m.methods[name]
	if !ok {
		return m.enqueue(m.unknownTask(name))
	}
	return meth.Call(params, opts...)
}

// Derive queues a call to the named method with derived params.
func (m *Model) Derive(name string, fn ParamsFunc, opts ...CallOption) *Model {
	meth, ok := m.methods[name]
	if !ok {
		return m.enqueue(m.unknownTask(name))
	}
	return meth.Derive(fn, opts...)
}

func (m *Model) unknownTask(name string) *Task {
	return &Task{
		Method: name,
		err:    &dispatch.ConfigurationError{InterfaceID: name, Reason: "model has no method " + name},
	}
}

// WithCookie sets the cookie sent with every queued call.
func (m *Model) WithCookie(cookie string) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookie = cookie
	return m
}

// Pending returns the number of queued calls.
func (m *Model) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Model) enqueue(t *Task) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, t)
	return m
}

// drain takes the queue and cookie, leaving both empty.
func (m *Model) drain() ([]*Task, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue, cookie := m.queue, m.cookie
	m.queue, m.cookie = nil, ""
	return queue, cookie
}

// run dispatches t and applies its transform.
func (m *Model) run(ctx context.Context, t *Task, params dispatch.Params, cookie string) (any, error) {
	if t.err != nil {
		return nil, t.err
	}

	var (
		value   any
		failure error
	)
	err := t.dispatcher.Request(ctx, params,
		func(resp *dispatch.Response) { value = resp.Body },
		func(err error) { failure = err },
		cookie)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}

	if t.Transform != nil {
		transformed, err := t.Transform(value)
		if err != nil {
			return nil, &TransformError{Method: t.Method, Err: err}
		}
		value = transformed
	}
	return value, nil
}

// runUnderived dispatches t outside a series: derivation functions get no
// prior results.
func (m *Model) runUnderived(ctx context.Context, t *Task, cookie string) (any, error) {
	if t.err != nil {
		return nil, t.err
	}
	params, err := t.params(nil, nil)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, t, params, cookie)
}

// First dispatches only the first queued call and returns its result. The
// rest of the queue is discarded. An empty queue yields nil.
func (m *Model) First(ctx context.Context) (any, error) {
	queue, cookie := m.drain()
	if len(queue) == 0 {
		return nil, nil
	}
	return m.runUnderived(ctx, queue[0], cookie)
}

// Then dispatches the first queued call and delivers its result to onValue
// or its failure to onError. With an empty queue onValue receives nil and
// nothing is dispatched. A failure with no onError is logged.
func (m *Model) Then(ctx context.Context, onValue func(any), onError func(error)) *Model {
	value, err := m.First(ctx)
	switch {
	case err == nil:
		if onValue != nil {
			onValue(value)
		}
	case onError != nil:
		onError(err)
	default:
		m.log.Error("model call failed", "error", err)
	}
	return m
}

// Catch is Then without a value handler.
func (m *Model) Catch(ctx context.Context, onError func(error)) *Model {
	return m.Then(ctx, nil, onError)
}

// All dispatches every queued call concurrently. It returns the results in
// queue order when every call succeeds. Otherwise it returns the first
// failure to arrive, without waiting for the remaining calls; which
// failure that is among concurrent failures is not defined. Calls already
// in flight run to completion.
func (m *Model) All(ctx context.Context) ([]any, error) {
	queue, cookie := m.drain()
	if len(queue) == 0 {
		return nil, nil
	}

	type outcome struct {
		index int
		value any
		err   error
	}
	outcomes := make(chan outcome, len(queue))
	for i, t := range queue {
		go func() {
			value, err := m.runUnderived(ctx, t, cookie)
			outcomes <- outcome{index: i, value: value, err: err}
		}()
	}

	results := make([]any, len(queue))
	for range queue {
		o := <-outcomes
		if o.err != nil {
			return nil, o.err
		}
		results[o.index] = o.value
	}
	return results, nil
}

// Paral dispatches every queued call concurrently and never fails. A failed
// call's slot holds onError(err), or err itself when onError is nil.
// Results are in queue order.
func (m *Model) Paral(ctx context.Context, onError func(error) any) []any {
	queue, cookie := m.drain()
	if len(queue) == 0 {
		return nil
	}

	results := make([]any, len(queue))
	var g errgroup.Group
	for i, t := range queue {
		g.Go(func() error {
			value, err := m.runUnderived(ctx, t, cookie)
			switch {
			case err == nil:
				results[i] = value
			case onError != nil:
				results[i] = onError(err)
			default:
				results[i] = err
			}
			return nil
		})
	}
	// Never fails: every closure returns nil and keeps its failure in its slot.
	g.Wait()
	return results
}

// Series dispatches queued calls one at a time in queue order. Derived
// params receive the previous result and all results so far. The first
// failure stops the pipeline; calls after it are never dispatched.
func (m *Model) Series(ctx context.Context) ([]any, error) {
	queue, cookie := m.drain()
	if len(queue) == 0 {
		return nil, nil
	}

	results := make([]any, 0, len(queue))
	var prev any
	for _, t := range queue {
		if t.err != nil {
			return nil, t.err
		}
		params, err := t.params(prev, slices.Clone(results))
		if err != nil {
			return nil, err
		}
		value, err := m.run(ctx, t, params, cookie)
		if err != nil {
			return nil, err
		}
		results = append(results, value)
		prev = value
	}
	return results, nil
}
