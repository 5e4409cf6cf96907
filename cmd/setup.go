package cmd

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
	"github.com/isometry/netbox-catalyst-bridge/internal/handler"
	"github.com/isometry/netbox-catalyst-bridge/internal/runtime"
	"github.com/pkg/errors"
)

// handlerOptions translates the loaded configuration into handler options.
func handlerOptions(ctx context.Context) []handler.Option {
	opts := []handler.Option{
		handler.WithContext(ctx),
		handler.WithLogger(logger.With("component", "handler")),
		handler.WithAuthMode(config.Catalyst.AuthMode),
		handler.WithSSMKey(config.Catalyst.SSMKey),
		handler.WithWebhookSecret(config.NetBox.WebhookSecret),
		handler.WithSignatureHeader(config.NetBox.SignatureHeader),
		handler.WithCustomField(config.NetBox.CustomField),
		handler.WithLambdaPayloadType(config.Lambda.PayloadType),
		handler.WithCatalystOptions(
			catalyst.WithHost(config.Catalyst.Host),
			catalyst.WithCredentials(config.Catalyst.Username, config.Catalyst.Password),
			catalyst.WithVerifyTLS(config.Catalyst.VerifyTLS),
			catalyst.WithDeploymentMode(config.Catalyst.DeploymentMode),
			catalyst.WithInterfacePath(config.Catalyst.InterfacePath),
			catalyst.WithTimeouts(config.Catalyst.LoginTimeout, config.Catalyst.RequestTimeout),
			catalyst.WithTokenTTL(config.Catalyst.TokenTTL),
		),
	}
	if config.Archive.Enabled {
		opts = append(opts, handler.WithArchive(config.Archive.BucketName))
	}
	return opts
}

// setup builds the handler and its runtime. A failed preflight login is logged and does not abort startup.
func setup(ctx context.Context, extra ...handler.Option) (*runtime.Runtime, error) {
	logger.Debug("creating delivery handler...")
	hdl, err := handler.NewHandler(append(handlerOptions(ctx), extra...)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create delivery handler")
	}

	if config.Catalyst.Preflight {
		if err = hdl.Preflight(ctx); err != nil {
			logger.Warn("preflight login failed", slog.Any("error", err))
		}
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLogger(logger.With("component", "runtime")),
		runtime.WithWebhookPath(config.Service.Path)), nil
}
