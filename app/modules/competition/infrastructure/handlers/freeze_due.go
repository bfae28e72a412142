package competitionhandlers

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// HandleParticipantFreezeDue processes a freeze-due event: it runs the
// freeze and publishes a failure notification when the freeze errors. The
// message is always acked; a freeze that cannot complete is reported, not
// redelivered, because the retry would refetch a leaderboard that already
// failed once and the safe-default path has no transient component.
func (h *CompetitionHandlers) HandleParticipantFreezeDue(msg *message.Message) error {
	var payload competitionevents.ParticipantFreezeDuePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Error("Failed to unmarshal freeze-due payload",
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		// Malformed payloads are dropped; redelivery cannot fix them.
		return nil
	}

	ctx := attr.WithCorrelationID(msg.Context(), msg.Metadata.Get(middleware.CorrelationIDMetadataKey))

	result, err := h.service.FreezeParticipant(ctx, payload.Type, payload.UserID)
	if err != nil {
		result = competitionservice.CompetitionOperationResult{
			Failure: &competitionevents.ParticipantFreezeFailedPayload{
				Type:   payload.Type,
				UserID: payload.UserID,
				Reason: fmt.Sprintf("freeze failed: %v", err),
			},
		}
	}
	// Success events are published by the service itself; only the failure
	// arm belongs to the messaging layer.
	for _, out := range result.MapToHandlerResults("", competitionevents.ParticipantFreezeFailed) {
		h.publish(msg, out.Topic, out.Payload)
	}
	return nil
}
