// Package runtime adapts the delivery handler to the HTTP server and to AWS Lambda.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/netbox-catalyst-bridge/internal/handler"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/isometry/netbox-catalyst-bridge/internal/models"
	"github.com/pkg/errors"
)

const (
	// DefaultWebhookPath is the route NetBox posts interface changes to.
	DefaultWebhookPath = "/netbox/interface-updated"
	// StatusMessage is returned on the root route.
	StatusMessage = "NetBox → Catalyst Center receiver is running. Try /healthz"
	// DefaultMaxBodyBytes bounds inbound HTTP bodies.
	DefaultMaxBodyBytes = 10 << 20
)

// Lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithWebhookPath sets the route deliveries are accepted on.
func WithWebhookPath(path string) Option {
	return func(r *Runtime) {
		r.webhookPath = path
	}
}

// WithMaxBodyBytes bounds inbound HTTP bodies. Larger bodies are answered with 413.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Runtime) {
		r.maxBodyBytes = n
	}
}

// Runtime routes requests to the handler.
type Runtime struct {
	*handler.Handler
	logger       *slog.Logger
	webhookPath  string
	maxBodyBytes int64
}

// NewRuntime creates a new runtime instance
func NewRuntime(h *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: h}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.webhookPath == "" {
		_inst.webhookPath = DefaultWebhookPath
	}
	if _inst.maxBodyBytes <= 0 {
		_inst.maxBodyBytes = DefaultMaxBodyBytes
	}
	return _inst
}

// Dispatch routes req and returns a wire-ready response. A path matches when it equals the route
// or ends with it on a segment boundary, so API Gateway stage prefixes are accepted.
func (r *Runtime) Dispatch(ctx context.Context, req models.Request) models.Response {
	path := req.Path
	if path == "" {
		path = "/"
	}

	switch {
	case path == "/":
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			return r.methodNotAllowed(req, "GET")
		}
		return helpers.Text(http.StatusOK, StatusMessage)
	case matchRoute(path, "/healthz"):
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			return r.methodNotAllowed(req, "GET")
		}
		return helpers.Text(http.StatusOK, "ok")
	case matchRoute(path, r.webhookPath):
		if req.Method != http.MethodPost {
			return r.methodNotAllowed(req, "POST")
		}
		bus := r.Handler.Process(ctx, req)
		return helpers.Envelope(bus.Response, bus.Error)
	default:
		r.logger.Debug("rejecting request...", slog.String("path", path), "reason", "not found")
		return helpers.Text(http.StatusNotFound, "not found")
	}
}

func (r *Runtime) methodNotAllowed(req models.Request, allow string) models.Response {
	r.logger.Debug("rejecting request...", slog.String("path", req.Path), "reason", "method not allowed", slog.String("method", req.Method))
	resp := helpers.Text(http.StatusMethodNotAllowed, "method not allowed")
	resp.Headers["Allow"] = allow
	return resp
}

func matchRoute(path, route string) bool {
	path = strings.TrimSuffix(path, "/")
	route = strings.TrimSuffix(route, "/")
	return path == route || strings.HasSuffix(path, "/"+strings.TrimPrefix(route, "/"))
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.String("method", req.Method), slog.String("path", req.URL.Path))

	body, err := io.ReadAll(http.MaxBytesReader(rw, req.Body, r.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			r.logger.Warn("rejecting request...", slog.String("path", req.URL.Path), "reason", "body too large", slog.Int64("limit", tooLarge.Limit))
			helpers.RespondHTTP(models.Response{Body: "request body too large", StatusCode: http.StatusRequestEntityTooLarge}, err, rw)
			return
		}
		r.logger.Error("failed to read request body", slog.Any("error", err))
		helpers.RespondHTTP(models.Response{Body: "failed to read request body", StatusCode: http.StatusBadRequest}, err, rw)
		return
	}

	helpers.Write(rw, r.Dispatch(req.Context(), models.Request{
		Method:  req.Method,
		Path:    req.URL.Path,
		Body:    body,
		Headers: models.NormaliseHeaders(req.Header),
	}))
}

// HandleEvent is the Lambda handler for the runtime. Routing failures are returned as responses so the
// caller always receives a status code; only undecodable payloads yield an error.
func (r *Runtime) HandleEvent(ctx context.Context, payload json.RawMessage) (any, error) {
	payloadType := r.Handler.GetLambdaPayloadType()
	r.logger.Debug("received Lambda request...", slog.String("payloadType", payloadType))

	switch payloadType {
	case PayloadAPIGatewayV1:
		var event events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "failed to decode API Gateway v1 request")
		}
		headers := models.NormaliseHeaders(event.Headers)
		for k, v := range models.NormaliseHeaders(event.MultiValueHeaders) {
			if _, ok := headers[k]; !ok {
				headers[k] = v
			}
		}
		req, err := newRequest(event.HTTPMethod, event.Path, event.Body, event.IsBase64Encoded, headers)
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: err.Error()}, nil
		}
		resp := r.Dispatch(ctx, req)
		return events.APIGatewayProxyResponse{StatusCode: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}, nil

	case PayloadAPIGatewayV2:
		var event events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "failed to decode API Gateway v2 request")
		}
		req, err := newRequest(event.RequestContext.HTTP.Method, event.RawPath, event.Body, event.IsBase64Encoded, models.NormaliseHeaders(event.Headers))
		if err != nil {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: err.Error()}, nil
		}
		resp := r.Dispatch(ctx, req)
		return events.APIGatewayV2HTTPResponse{StatusCode: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}, nil

	case PayloadLambdaURL:
		var event events.LambdaFunctionURLRequest
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "failed to decode Lambda function URL request")
		}
		req, err := newRequest(event.RequestContext.HTTP.Method, event.RawPath, event.Body, event.IsBase64Encoded, models.NormaliseHeaders(event.Headers))
		if err != nil {
			return events.LambdaFunctionURLResponse{StatusCode: http.StatusBadRequest, Body: err.Error()}, nil
		}
		resp := r.Dispatch(ctx, req)
		return events.LambdaFunctionURLResponse{StatusCode: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}, nil

	default:
		return nil, errors.Errorf("unsupported lambda payload type: %s", payloadType)
	}
}

func newRequest(method, path, body string, isBase64 bool, headers map[string]string) (models.Request, error) {
	raw := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return models.Request{}, errors.Wrap(err, "invalid base64 body")
		}
		raw = decoded
	}
	return models.Request{Method: method, Path: path, Body: raw, Headers: headers}, nil
}
