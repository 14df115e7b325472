package infrastructure

import (
	"context"

	"github.com/draftea/order-system/shared/events"
	"go.uber.org/multierr"
)

var _ events.Publisher = (*FanoutPublisher)(nil)

// FanoutPublisher publishes every event to each of its publishers in turn.
// A failing publisher does not stop the others; all errors are combined.
type FanoutPublisher struct {
	publishers []events.Publisher
}

func NewFanoutPublisher(publishers ...events.Publisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

func (p *FanoutPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	var err error
	for _, publisher := range p.publishers {
		err = multierr.Append(err, publisher.Publish(ctx, evts...))
	}
	return err
}
