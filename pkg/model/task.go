package model

import (
	"errors"
	"fmt"

	"github.com/getmockd/modelproxy/pkg/dispatch"
)

// ErrParamsDerivation is matched by ParamsDerivationError.
var ErrParamsDerivation = errors.New("params derivation failed")

// ParamsFunc computes the params of a task from the previous result and
// every result so far. It is called by Series; the other combinators call
// it with no prior results.
type ParamsFunc func(prev any, results []any) (any, error)

// Transform replaces a task's result. A returned error fails the task.
type Transform func(value any) (any, error)

// Task is one queued call.
type Task struct {
	Method      string
	InterfaceID string
	Params      dispatch.Params
	Derive      ParamsFunc
	Transform   Transform

	dispatcher *dispatch.Dispatcher
	err        error // set when the task cannot be dispatched
}

// CallOption configures a queued task.
type CallOption func(*Task)

// WithTransform sets the task's result transform.
func WithTransform(fn Transform) CallOption {
	return func(t *Task) { t.Transform = fn }
}

// ParamsDerivationError reports derived params that are not a key/value
// mapping, or a derivation function that failed.
type ParamsDerivationError struct {
	Method      string
	InterfaceID string
	Value       any
	Err         error
}

func (e *ParamsDerivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deriving params of %s (interface %s): %v", e.Method, e.InterfaceID, e.Err)
	}
	return fmt.Sprintf("deriving params of %s (interface %s): got %T, want a key/value mapping", e.Method, e.InterfaceID, e.Value)
}

func (e *ParamsDerivationError) Unwrap() error { return e.Err }

func (e *ParamsDerivationError) Is(target error) bool { return target == ErrParamsDerivation }

// TransformError reports a failed result transform.
type TransformError struct {
	Method string
	Err    error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transforming result of %s: %v", e.Method, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// params returns the params to dispatch the task with.
func (t *Task) params(prev any, results []any) (dispatch.Params, error) {
	if t.Derive == nil {
		if t.Params == nil {
			return dispatch.Params{}, nil
		}
		return t.Params, nil
	}

	v, err := t.Derive(prev, results)
	if err != nil {
		return nil, &ParamsDerivationError{Method: t.Method, InterfaceID: t.InterfaceID, Err: err}
	}
	params, ok := asParams(v)
	if !ok {
		return nil, &ParamsDerivationError{Method: t.Method, InterfaceID: t.InterfaceID, Value: v}
	}
	return params, nil
}

func asParams(v any) (dispatch.Params, bool) {
	switch p := v.(type) {
	case dispatch.Params:
		if p == nil {
			return nil, false
		}
		return p, true
	case map[string]any:
		if p == nil {
			return nil, false
		}
		return dispatch.Params(p), true
	case map[string]string:
		if p == nil {
			return nil, false
		}
		params := make(dispatch.Params, len(p))
		for k, val := range p {
			params[k] = val
		}
		return params, true
	default:
		return nil, false
	}
}
