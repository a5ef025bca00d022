// Package relay forwards accepted board messages between server instances
// over pkg/pubsub so that rooms spanning several instances behave as one.
package relay

import (
	"context"
	"fmt"

	"github.com/weiawesome/wes-io-canvas/pkg/log"
	"github.com/weiawesome/wes-io-canvas/pkg/pubsub"
)

// Deliverer hands an envelope to the local members of a board.
type Deliverer interface {
	Broadcast(boardID string, data []byte, excludeID string) int
}

// Relay publishes local traffic and delivers foreign traffic.
type Relay struct {
	ps         pubsub.PubSub
	instanceID string
}

// New creates a relay identified by instanceID. Events carrying the same
// origin are ignored on receipt.
func New(ps pubsub.PubSub, instanceID string) *Relay {
	return &Relay{ps: ps, instanceID: instanceID}
}

// InstanceID returns the origin stamped on published events.
func (r *Relay) InstanceID() string { return r.instanceID }

// Publish sends an encoded envelope to the other instances.
func (r *Relay) Publish(ctx context.Context, eventType, boardID string, envelope []byte) error {
	event, err := pubsub.NewEvent(eventType, boardID, r.instanceID, pubsub.RelayPayload{Envelope: envelope})
	if err != nil {
		return fmt.Errorf("failed to build relay event: %w", err)
	}
	if err := r.ps.Publish(ctx, pubsub.BoardRelayChannel(boardID), event); err != nil {
		return fmt.Errorf("failed to publish relay event: %w", err)
	}
	return nil
}

// Run delivers foreign events to local members until ctx is done or the
// subscription ends.
func (r *Relay) Run(ctx context.Context, d Deliverer) error {
	events, err := r.ps.SubscribePattern(ctx, pubsub.PatternBoardRelay)
	if err != nil {
		return fmt.Errorf("failed to subscribe to relay: %w", err)
	}

	l := log.Ctx(ctx).With().Str(log.FieldInstanceID, r.instanceID).Logger()
	l.Info().Msg("relay subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if ev.Origin == r.instanceID {
				continue
			}

			var payload pubsub.RelayPayload
			if err := ev.UnmarshalPayload(&payload); err != nil {
				l.Warn().Err(err).Str(log.FieldBoardID, ev.BoardID).Msg("relay: bad payload")
				continue
			}
			n := d.Broadcast(ev.BoardID, payload.Envelope, "")
			l.Debug().Str(log.FieldBoardID, ev.BoardID).Str("origin", ev.Origin).Int("delivered", n).Msg("relay: delivered foreign event")
		}
	}
}

// Close closes the underlying pubsub.
func (r *Relay) Close() error {
	return r.ps.Close()
}
