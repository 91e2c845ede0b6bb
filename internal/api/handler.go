// Package api implements the smartplan HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

// PlanPath is the route of the plan endpoint.
const PlanPath = "/plan"

// DefaultMaxBodyBytes limits request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Planner creates plans. *planner.Service implements it.
type Planner interface {
	CreatePlan(ctx context.Context, req *planner.Request) (*planner.Response, error)
}

// Handler serves POST /plan.
type Handler struct {
	planner      Planner
	route        *routers.Route
	logger       *log.Logger
	maxBodyBytes int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMaxBodyBytes limits the request body size.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(l *log.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a plan handler validating requests against doc.
func NewHandler(p Planner, doc *openapi3.T, opts ...HandlerOption) (*Handler, error) {
	route, err := planRoute(doc)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		planner:      p,
		route:        route,
		logger:       log.DefaultLogger(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: ErrorDetail{
			Code:    string(errors.ErrCodeRequestInvalid),
			Message: "method not allowed",
		}})
		return
	}

	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(
				errors.New(errors.ErrCodeRequestInvalid, "request body too large")))
			return
		}
		writeError(w, errors.Wrap(errors.ErrCodeRequestInvalid, "failed to read request body", err))
		return
	}

	if err := h.validate(ctx, r, body); err != nil {
		h.logger.WithContext(ctx).WithError(err).DebugContext(ctx, "request rejected by schema")
		writeError(w, err)
		return
	}

	var req planner.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeRequestInvalid, "malformed JSON body", err))
		return
	}

	resp, err := h.planner.CreatePlan(ctx, &req)
	if err != nil {
		if StatusFor(err) == http.StatusInternalServerError {
			h.logger.WithContext(ctx).LogErrorContext(ctx, err)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// validate checks the request against the OpenAPI operation.
func (h *Handler) validate(ctx context.Context, r *http.Request, body []byte) error {
	r.Body = io.NopCloser(bytes.NewReader(body))
	input := &openapi3filter.RequestValidationInput{
		Request: r,
		Route:   h.route,
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return errors.New(errors.ErrCodeRequestInvalid, requestErrorMessage(err)).
			WithSuggestion("Send a JSON body matching GET /openapi.yaml")
	}
	return nil
}

// requestErrorMessage shortens kin-openapi errors to their reason.
func requestErrorMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if stderrors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if stderrors.As(reqErr.Err, &schemaErr) {
			path := schemaErr.JSONPointer()
			if len(path) > 0 {
				return "invalid request body at /" + strings.Join(path, "/") + ": " + schemaErr.Reason
			}
			return "invalid request body: " + schemaErr.Reason
		}
		return reqErr.Error()
	}
	return err.Error()
}

// SpecHandler serves the OpenAPI document.
func SpecHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(specYAML)
	})
}
