package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeInvitationCreated   = "invitation.created"
	EventTypeInvitationAccepted  = "invitation.accepted"
	EventTypeInvitationRevoked   = "invitation.revoked"
	EventTypeInvitationReinvited = "invitation.reinvited"
)

// InvitationEventTypes lists every invitation event, for subscribers that
// want all of them.
var InvitationEventTypes = []string{
	EventTypeInvitationCreated,
	EventTypeInvitationAccepted,
	EventTypeInvitationRevoked,
	EventTypeInvitationReinvited,
}

type InvitationEvent struct {
	BaseEvent
	InvitationID string `json:"invitation_id"`
	ActorID      string `json:"actor_id"`
	GroupType    string `json:"group_type"`
	GroupID      string `json:"group_id"`
	Status       string `json:"status"`
}

func NewInvitationEvent(eventType, invitationID, actorID, groupType, groupID, status string) *InvitationEvent {
	return &InvitationEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"invitation_id": invitationID,
				"actor_id":      actorID,
				"group_type":    groupType,
				"group_id":      groupID,
				"status":        status,
			},
		},
		InvitationID: invitationID,
		ActorID:      actorID,
		GroupType:    groupType,
		GroupID:      groupID,
		Status:       status,
	}
}
