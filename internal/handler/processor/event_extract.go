package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
)

type extractProcessor struct {
	extractor *bridge.Extractor
}

// NewExtractProcessor parses the delivery into an update intent. Deliveries without one settle as NoOp.
func NewExtractProcessor(extractor *bridge.Extractor) Processor {
	return &extractProcessor{extractor: extractor}
}

func (p *extractProcessor) Name() string {
	return "extract"
}

func (p *extractProcessor) Process(_ context.Context, logger *slog.Logger, bus *bridge.Bus) error {
	extraction, err := p.extractor.Extract(bus.Event.Body)
	if err != nil {
		return err
	}
	bus.Extraction = extraction
	if extraction.Intent == nil {
		logger.Info("no-op: missing uuid/desc",
			slog.Any("keys", extraction.Keys),
			slog.Any("dataKeys", extraction.DataKeys),
			slog.String("deliveryId", extraction.Delivery.ID))
		bus.Settle(bridge.NoOp, bridge.StageExtract, nil, "no-op")
		return nil
	}
	bus.Intent = extraction.Intent
	logger.Debug("extracted update intent", slog.Any("intent", extraction.Intent))
	return nil
}
