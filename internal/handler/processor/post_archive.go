package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/pkg/errors"
)

type archivePostProcessor struct {
	store  ObjectStore
	bucket string
}

// NewArchivePostProcessor stores every verified delivery body in bucket.
func NewArchivePostProcessor(store ObjectStore, bucket string) Processor {
	return &archivePostProcessor{store: store, bucket: bucket}
}

func (p *archivePostProcessor) Name() string {
	return "archive"
}

func (p *archivePostProcessor) Process(ctx context.Context, logger *slog.Logger, bus *bridge.Bus) error {
	if !bus.Verified || bus.Event == nil {
		logger.Debug("skipping archive of unverified delivery")
		return nil
	}
	id := bus.DeliveryID()
	if id == "" {
		id = string(bus.Outcome)
	}
	if err := p.store.PutS3Object(context.WithoutCancel(ctx), id, p.bucket, bus.Event.Body); err != nil {
		return errors.Wrap(err, "failed to archive delivery")
	}
	return nil
}
