package competitionhandlers

import "github.com/ThreeDotsLabs/watermill/message"

// Handlers defines the contract for competition event handlers.
type Handlers interface {
	HandleParticipantFreezeDue(msg *message.Message) error
}
