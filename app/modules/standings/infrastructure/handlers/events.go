package standingshandlers

import (
	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	standingsservice "github.com/Black-And-White-Club/tripscore/app/modules/standings/application"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
)

// HandleLedgerChanged recomputes the standings and emits StandingsUpdatedV1.
func (h *StandingsHandlers) HandleLedgerChanged(msg *message.Message) ([]*message.Message, error) {
	ctx := msg.Context()
	reason := message.SubscribeTopicFromCtx(ctx)
	if reason == "" {
		reason = msg.Metadata.Get("topic")
	}

	u, err := h.service.Recompute(ctx, reason)
	if err != nil {
		return nil, err
	}

	out, err := eventbus.NewMessage(ctx, eventbus.StandingsUpdatedV1, eventbus.StandingsUpdatedPayload{
		Reason:                 u.Reason,
		CompetitionsDetermined: u.CompetitionsDetermined,
		CompetitionsTotal:      u.CompetitionsTotal,
		NewlyDetermined:        u.NewlyDetermined,
		ComputedAt:             u.ComputedAt,
	})
	if err != nil {
		return nil, err
	}
	return []*message.Message{out}, nil
}

// HandleStandingsUpdated fans the update out to stream subscribers and
// schedules a results publish when a competition was decided or the ledgers
// were reset. Publish failures are logged, not retried here.
func (h *StandingsHandlers) HandleStandingsUpdated(msg *message.Message) ([]*message.Message, error) {
	ctx := msg.Context()
	p, err := eventbus.Decode[eventbus.StandingsUpdatedPayload](msg)
	if err != nil {
		return nil, err
	}

	h.service.Notify(standingsservice.Update{
		Reason:                 p.Reason,
		CompetitionsDetermined: p.CompetitionsDetermined,
		CompetitionsTotal:      p.CompetitionsTotal,
		NewlyDetermined:        p.NewlyDetermined,
		ComputedAt:             p.ComputedAt,
	})

	if h.artifacts == nil || (len(p.NewlyDetermined) == 0 && p.Reason != eventbus.LedgerResetV1) {
		return nil, nil
	}
	if err := h.artifacts.EnqueuePublish(ctx, p.Reason); err != nil {
		h.logger.WarnContext(ctx, "Failed to schedule results publish",
			attr.ExtractCorrelationID(ctx),
			attr.String("reason", p.Reason),
			attr.Error(err),
		)
	}
	return nil, nil
}
