package vortex

import (
	"strings"
	"time"

	invitationDatamodel "github.com/frahmantamala/vortex-demo/internal/core/datamodel/invitation"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRevoked  Status = "revoked"
)

// CanTransitionTo reports whether s may move to next. Only pending
// invitations change state; accepted and revoked are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusAccepted || next == StatusRevoked)
}

type Target struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Matches compares targets; email addresses compare case-insensitively.
func (t Target) Matches(other Target) bool {
	if t.Type != other.Type {
		return false
	}
	if t.Type == IdentifierEmail {
		return strings.EqualFold(t.Value, other.Value)
	}
	return t.Value == other.Value
}

// Normalized lower-cases email values so stored and queried targets agree
// with Matches. Other kinds are kept as given.
func (t Target) Normalized() Target {
	if t.Type == IdentifierEmail {
		t.Value = strings.ToLower(strings.TrimSpace(t.Value))
	}
	return t
}

type Invitation struct {
	ID          string     `json:"id"`
	Target      Target     `json:"target"`
	Group       Group      `json:"group"`
	InviterID   string     `json:"inviterId"`
	Status      Status     `json:"status"`
	ResendCount int        `json:"resendCount"`
	AcceptedBy  string     `json:"acceptedBy,omitempty"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (i *Invitation) IsPending() bool {
	return i.Status == StatusPending
}

func ToDataModel(i *Invitation) *invitationDatamodel.Invitation {
	m := &invitationDatamodel.Invitation{
		ID:          i.ID,
		TargetType:  i.Target.Type,
		TargetValue: i.Target.Value,
		GroupType:   i.Group.Type,
		GroupID:     i.Group.ID,
		GroupName:   i.Group.Name,
		InviterID:   i.InviterID,
		Status:      string(i.Status),
		ResendCount: i.ResendCount,
		AcceptedAt:  i.AcceptedAt,
		RevokedAt:   i.RevokedAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.AcceptedBy != "" {
		by := i.AcceptedBy
		m.AcceptedBy = &by
	}
	return m
}

func FromDataModel(m *invitationDatamodel.Invitation) *Invitation {
	inv := &Invitation{
		ID:          m.ID,
		Target:      Target{Type: m.TargetType, Value: m.TargetValue},
		Group:       Group{Type: m.GroupType, ID: m.GroupID, Name: m.GroupName},
		InviterID:   m.InviterID,
		Status:      Status(m.Status),
		ResendCount: m.ResendCount,
		AcceptedAt:  m.AcceptedAt,
		RevokedAt:   m.RevokedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.AcceptedBy != nil {
		inv.AcceptedBy = *m.AcceptedBy
	}
	return inv
}

func fromDataModels(ms []*invitationDatamodel.Invitation) []Invitation {
	out := make([]Invitation, 0, len(ms))
	for _, m := range ms {
		out = append(out, *FromDataModel(m))
	}
	return out
}
