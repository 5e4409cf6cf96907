// Package handler wires the delivery pipeline: credentials, signature, extraction, session and update,
// followed by the archive post-processor, metrics and a single structured outcome log line.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/aws"
	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
	"github.com/isometry/netbox-catalyst-bridge/internal/handler/processor"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/isometry/netbox-catalyst-bridge/internal/metrics"
	"github.com/isometry/netbox-catalyst-bridge/internal/models"
	"github.com/pkg/errors"
)

// Option is a functional option used to configure a Handler instance.
type Option func(*Handler)

// Handler processes NetBox deliveries. It is safe for concurrent use.
type Handler struct {
	ctx    context.Context
	logger *slog.Logger

	catalystController *catalyst.Controller
	catalystOptions    []catalyst.Option
	secretStore        processor.SecretStore
	objectStore        processor.ObjectStore

	authMode          string
	ssmKey            string
	webhookSecret     string
	signatureHeader   string
	customField       string
	archiveBucket     string
	lambdaPayloadType string

	credentials    *processor.Credentials
	processors     []processor.Processor
	postProcessors []processor.Processor
}

// NewHandler creates the Handler. Unless injected, the Catalyst Center controller is built from the catalyst
// options, and an AWS controller is created when ssm credentials or archiving require one.
func NewHandler(opts ...Option) (*Handler, error) {
	_inst := &Handler{
		authMode: config.AuthModeEnv,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}

	if _inst.catalystController == nil {
		ctl, err := catalyst.NewController(append([]catalyst.Option{
			catalyst.WithLogger(_inst.logger.With("controller", "catalyst")),
		}, _inst.catalystOptions...)...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create the Catalyst Center controller")
		}
		_inst.catalystController = ctl
	}

	needsSecrets := _inst.authMode == config.AuthModeSSM && _inst.secretStore == nil
	needsArchive := _inst.archiveBucket != "" && _inst.objectStore == nil
	if needsSecrets || needsArchive {
		awsCtl, err := aws.NewController(
			aws.WithLogger(_inst.logger),
			aws.WithContext(_inst.ctx))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
		if needsSecrets {
			_inst.secretStore = awsCtl
		}
		if needsArchive {
			_inst.objectStore = awsCtl
		}
	}
	if _inst.authMode == config.AuthModeSSM && _inst.ssmKey == "" {
		return nil, errors.New("an SSM key is required when credentials are read from SSM")
	}

	_inst.credentials = processor.NewCredentials(_inst.authMode, _inst.ssmKey, _inst.webhookSecret, _inst.secretStore, _inst.catalystController)
	_inst.processors = []processor.Processor{
		_inst.credentials,
		processor.NewSignatureProcessor(_inst.credentials, _inst.signatureHeader),
		processor.NewExtractProcessor(bridge.NewExtractor(_inst.customField)),
		processor.NewSessionProcessor(_inst.catalystController, _inst.credentials),
		processor.NewUpdateProcessor(_inst.catalystController),
	}
	if _inst.archiveBucket != "" {
		_inst.postProcessors = append(_inst.postProcessors, processor.NewArchivePostProcessor(_inst.objectStore, _inst.archiveBucket))
	}
	return _inst, nil
}

// Process runs a delivery through the pipeline and returns the settled bus.
func (h *Handler) Process(ctx context.Context, req models.Request) *bridge.Bus {
	start := time.Now()
	bus := processor.Process(ctx, h.logger, bridge.NewBus(req), h.processors...)
	if !bus.Settled() {
		bus.Fail(bridge.NewError(bridge.Internal, "", "pipeline finished without an outcome"))
	}
	processor.Finalise(ctx, h.logger, bus, h.postProcessors...)

	metrics.ObserveDelivery(string(bus.Outcome), bus.Response.StatusCode, time.Since(start))
	h.logOutcome(ctx, bus, time.Since(start))
	return bus
}

func (h *Handler) logOutcome(ctx context.Context, bus *bridge.Bus, elapsed time.Duration) {
	level := slog.LevelInfo
	switch bus.Outcome {
	case bridge.Updated, bridge.NoOp:
	case bridge.Internal:
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	attrs := []any{slog.Any("delivery", bus), slog.Duration("elapsed", elapsed)}
	if bus.Error != nil {
		attrs = append(attrs, slog.Any("error", bus.Error))
	}
	h.logger.Log(ctx, level, "delivery handled", attrs...)
}

// Preflight loads the credentials and forces a controller login so that misconfiguration surfaces at startup.
func (h *Handler) Preflight(ctx context.Context) error {
	if err := h.credentials.Process(ctx, h.logger, nil); err != nil {
		return err
	}
	if _, err := h.catalystController.Token(ctx, true); err != nil {
		return errors.Wrap(err, "preflight login failed")
	}
	h.logger.Info("preflight login succeeded")
	return nil
}

// GetLambdaPayloadType returns the configured Lambda payload type.
func (h *Handler) GetLambdaPayloadType() string {
	return h.lambdaPayloadType
}

// Catalyst returns the Catalyst Center controller in use.
func (h *Handler) Catalyst() *catalyst.Controller {
	return h.catalystController
}
