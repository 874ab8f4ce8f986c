// Package interceptor exposes configured interfaces over HTTP so browser
// code can call them through the proxy instead of reaching backends
// directly.
//
// Routes:
//
//	GET|POST /{id}       dispatch one interface with query or form params
//	POST     /_pipeline  run a pipeline document from the request body
//	GET      /_ids       list interface ids, filtered by ?prefix=
//	GET      /_metrics   call and pipeline metrics in the Prometheus text format
//
// The inbound Cookie header is forwarded to the backend and Set-Cookie
// values of the backend response are returned to the client.
package interceptor

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/getmockd/modelproxy/pkg/dispatch"
	"github.com/getmockd/modelproxy/pkg/httputil"
	"github.com/getmockd/modelproxy/pkg/logging"
	"github.com/getmockd/modelproxy/pkg/metrics"
	"github.com/getmockd/modelproxy/pkg/model"
	"github.com/getmockd/modelproxy/pkg/pipeline"
)

// DefaultMaxBodyBytes limits pipeline request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Dispatchers returns the dispatcher of an interface id.
type Dispatchers interface {
	Get(id string) (*dispatch.Dispatcher, error)
}

// IDLister lists registered interface ids.
type IDLister interface {
	IDs() []string
	IDsByPrefix(prefix string) []string
}

// Handler serves the interceptor routes.
type Handler struct {
	dispatchers  Dispatchers
	ids          IDLister
	builder      pipeline.ModelBuilder
	maxBodyBytes int64
	metrics      *metrics.Calls
	log          *slog.Logger
	mux          *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.log = logging.Component(logger, "interceptor") }
}

// WithMaxBodyBytes sets the pipeline body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) { h.maxBodyBytes = n }
}

// WithMetrics records calls in m instead of a handler-owned registry.
func WithMetrics(m *metrics.Calls) Option {
	return func(h *Handler) { h.metrics = m }
}

// New returns a handler serving the interfaces of rt.
func New(rt *model.Runtime, opts ...Option) *Handler {
	return NewHandler(rt.Factory, rt.Registry, rt, opts...)
}

// NewHandler returns a handler built from its collaborators.
func NewHandler(dispatchers Dispatchers, ids IDLister, builder pipeline.ModelBuilder, opts ...Option) *Handler {
	h := &Handler{
		dispatchers:  dispatchers,
		ids:          ids,
		builder:      builder,
		maxBodyBytes: DefaultMaxBodyBytes,
		log:          logging.Component(nil, "interceptor"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = metrics.NewCalls(nil)
	}

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("GET /_ids", h.handleIDs)
	h.mux.HandleFunc("POST /_pipeline", h.handlePipeline)
	h.mux.Handle("GET /_metrics", h.metrics.Registry.Handler())
	h.mux.HandleFunc("GET /{id}", h.handleInterface)
	h.mux.HandleFunc("POST /{id}", h.handleInterface)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleIDs(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if prefix := r.URL.Query().Get("prefix"); prefix != "" {
		ids = h.ids.IDsByPrefix(prefix)
	} else {
		ids = h.ids.IDs()
	}
	if ids == nil {
		ids = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

func (h *Handler) handleInterface(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	values := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			httputil.WriteBadRequest(w, "invalid_request", "cannot parse form body")
			return
		}
		values = r.PostForm
	}

	start := time.Now()
	d, err := h.dispatchers.Get(id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}

	resp, err := d.Do(r.Context(), paramsFromValues(values), r.Header.Get("Cookie"))
	if err != nil {
		_, code := h.writeError(w, id, err)
		h.metrics.ObserveCall(id, d.State().String(), code, time.Since(start))
		return
	}
	h.metrics.ObserveCall(id, d.State().String(), metrics.OutcomeOK, time.Since(start))

	for _, c := range resp.SetCookie {
		w.Header().Add("Set-Cookie", c)
	}
	h.log.Debug("interface served", "interface", id, "state", d.State().String())
	httputil.WriteBody(w, resp.Body)
}

func (h *Handler) handlePipeline(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "pipeline body exceeds the size limit")
		return
	}

	doc, err := pipeline.Parse(data)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_pipeline", err.Error())
		return
	}
	if doc.Cookie == "" {
		doc.Cookie = r.Header.Get("Cookie")
	}

	result, err := doc.Run(r.Context(), h.builder)
	if err != nil {
		_, code := h.writeError(w, "_pipeline", err)
		h.metrics.ObservePipeline(string(doc.Mode), code)
		return
	}
	h.metrics.ObservePipeline(string(result.Mode), metrics.OutcomeOK)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, id string, err error) (int, string) {
	status, code := StatusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		// Backend URLs and params stay in the log.
		h.log.Warn("interface call failed", "interface", id, "error", err)
		message = serverErrorMessage
	}
	httputil.WriteError(w, status, code, message)
	return status, code
}

// serverErrorMessage replaces the message of every 5xx response.
const serverErrorMessage = "interface call failed; see the proxy log for details"

// StatusFor maps an orchestration error to an HTTP status and error code.
func StatusFor(err error) (int, string) {
	var transformErr *model.TransformError
	switch {
	case errors.Is(err, dispatch.ErrConfiguration):
		return http.StatusNotFound, "configuration_error"
	case errors.Is(err, dispatch.ErrCookieRequired):
		return http.StatusUnauthorized, "cookie_required"
	case errors.Is(err, dispatch.ErrTransport):
		return http.StatusBadGateway, "transport_error"
	case errors.Is(err, dispatch.ErrParse):
		return http.StatusBadGateway, "parse_error"
	case errors.Is(err, dispatch.ErrMockEngine):
		return http.StatusInternalServerError, "mock_engine_error"
	case errors.Is(err, model.ErrParamsDerivation):
		return http.StatusUnprocessableEntity, "params_derivation_error"
	case errors.As(err, &transformErr):
		return http.StatusUnprocessableEntity, "transform_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// paramsFromValues keeps single values as strings and repeated keys as
// string slices.
func paramsFromValues(values url.Values) dispatch.Params {
	params := make(dispatch.Params, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			params[key] = vals[0]
		} else {
			params[key] = vals
		}
	}
	return params
}
