package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
)

type updateProcessor struct {
	updater InterfaceUpdater
}

// NewUpdateProcessor applies the intent on the bus and settles it from the controller's answer.
func NewUpdateProcessor(updater InterfaceUpdater) Processor {
	return &updateProcessor{updater: updater}
}

func (p *updateProcessor) Name() string {
	return "update"
}

func (p *updateProcessor) Process(ctx context.Context, logger *slog.Logger, bus *bridge.Bus) error {
	if bus.Intent == nil {
		return bridge.NewError(bridge.Internal, bridge.StageUpdate, "no update intent on the bus")
	}

	res, err := p.updater.UpdateInterface(ctx, bus.Intent, bus.Token)
	if res != nil {
		bus.TaskID, bus.ControllerCode = res.TaskID, res.StatusCode
	}
	if err != nil {
		return err
	}

	message := "interface updated"
	if res.Outcome == bridge.NoOp {
		message = "interface unchanged"
	}
	logger.Debug(message, slog.Int("attempts", res.Attempts), slog.String("taskId", res.TaskID))
	bus.Settle(res.Outcome, bridge.StageUpdate, nil, message)
	return nil
}
