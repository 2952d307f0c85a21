package services

import "github.com/google/uuid"

// EventBroadcaster pushes tournament events to live subscribers.
// *brackets.Hub implements it.
type EventBroadcaster interface {
	Publish(tournamentID uuid.UUID, eventType string, payload interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(uuid.UUID, string, interface{}) {}

func broadcasterOrNoop(b EventBroadcaster) EventBroadcaster {
	if b == nil {
		return noopBroadcaster{}
	}
	return b
}
