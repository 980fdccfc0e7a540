package vortex

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vortex-demo/internal"
	invitationDatamodel "github.com/frahmantamala/vortex-demo/internal/core/datamodel/invitation"
	"github.com/frahmantamala/vortex-demo/internal/core/events"
	"github.com/google/uuid"
)

// RepositoryAPI persists invitations. Lookups return (nil, nil) when the
// row does not exist. Transition, TransitionAll and IncrementResend only
// touch rows that are still in the expected status and report whether they
// did. TransitionAll expects distinct ids.
type RepositoryAPI interface {
	Create(ctx context.Context, inv *invitationDatamodel.Invitation) error
	GetByID(ctx context.Context, id string) (*invitationDatamodel.Invitation, error)
	ListByTarget(ctx context.Context, targetType, targetValue string) ([]*invitationDatamodel.Invitation, error)
	ListByGroup(ctx context.Context, groupType, groupID string) ([]*invitationDatamodel.Invitation, error)
	Transition(ctx context.Context, id, from, to string, updates map[string]interface{}) (bool, error)
	TransitionAll(ctx context.Context, ids []string, from, to string, updates map[string]interface{}) (bool, error)
	IncrementResend(ctx context.Context, id, status string, at time.Time) (bool, error)
	RevokePendingByGroup(ctx context.Context, groupType, groupID string, at time.Time) ([]string, error)
}

type Service struct {
	repo   RepositoryAPI
	bus    events.Bus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, bus events.Bus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, who *Identity, target Target, group Group) (*Invitation, error) {
	now := s.now()
	inv := &Invitation{
		ID:        uuid.New().String(),
		Target:    target.Normalized(),
		Group:     group,
		InviterID: who.UserID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, ToDataModel(inv)); err != nil {
		s.logger.Error("failed to create invitation", "error", err)
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.logger.Info("invitation created",
		"invitation_id", inv.ID,
		"inviter_id", who.UserID,
		"group_type", group.Type,
		"group_id", group.ID)
	s.publish(ctx, events.EventTypeInvitationCreated, inv, who.UserID)

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Invitation, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if m == nil {
		return nil, internal.ErrInvitationNotFound
	}
	return FromDataModel(m), nil
}

func (s *Service) ListByTarget(ctx context.Context, target Target) ([]Invitation, error) {
	target = target.Normalized()
	ms, err := s.repo.ListByTarget(ctx, target.Type, target.Value)
	if err != nil {
		return nil, fmt.Errorf("list invitations by target: %w", err)
	}
	return fromDataModels(ms), nil
}

func (s *Service) ListByGroup(ctx context.Context, groupType, groupID string) ([]Invitation, error) {
	ms, err := s.repo.ListByGroup(ctx, groupType, groupID)
	if err != nil {
		return nil, fmt.Errorf("list invitations by group: %w", err)
	}
	return fromDataModels(ms), nil
}

// EnsurePending returns the pending invitation for target in group, creating
// it when none exists. created reports which happened.
func (s *Service) EnsurePending(ctx context.Context, who *Identity, target Target, group Group) (*Invitation, bool, error) {
	existing, err := s.ListByTarget(ctx, target)
	if err != nil {
		return nil, false, err
	}
	for i := range existing {
		inv := existing[i]
		if inv.IsPending() && inv.Group.Type == group.Type && inv.Group.ID == group.ID {
			return &inv, false, nil
		}
	}

	inv, err := s.Create(ctx, who, target, group)
	if err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

// Revoke moves a pending invitation to revoked.
func (s *Service) Revoke(ctx context.Context, who *Identity, id string) (*Invitation, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(StatusRevoked) {
		return nil, internal.ErrInvitationNotPending
	}

	now := s.now()
	ok, err := s.repo.Transition(ctx, id, string(StatusPending), string(StatusRevoked), map[string]interface{}{
		"revoked_at": now,
		"updated_at": now,
	})
	if err != nil {
		return nil, fmt.Errorf("revoke invitation: %w", err)
	}
	if !ok {
		return nil, internal.ErrInvitationNotPending
	}

	inv.Status = StatusRevoked
	inv.RevokedAt = &now
	inv.UpdatedAt = now

	s.logger.Info("invitation revoked", "invitation_id", id, "actor_id", who.UserID)
	s.publish(ctx, events.EventTypeInvitationRevoked, inv, who.UserID)
	return inv, nil
}

// Accept accepts every listed invitation on behalf of who. Repeated ids
// count once. All invitations are checked before any is changed: each must
// exist, be addressed to target and still be pending. Either every
// invitation is accepted or none is.
func (s *Service) Accept(ctx context.Context, who *Identity, ids []string, target Target) ([]Invitation, error) {
	ids = uniqueIDs(ids)
	invs := make([]*Invitation, 0, len(ids))
	for _, id := range ids {
		inv, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !inv.Target.Matches(target) {
			return nil, internal.ErrInvitationTarget
		}
		if !inv.Status.CanTransitionTo(StatusAccepted) {
			return nil, internal.ErrInvitationNotPending
		}
		invs = append(invs, inv)
	}

	now := s.now()
	ok, err := s.repo.TransitionAll(ctx, ids, string(StatusPending), string(StatusAccepted), map[string]interface{}{
		"accepted_by": who.UserID,
		"accepted_at": now,
		"updated_at":  now,
	})
	if err != nil {
		return nil, fmt.Errorf("accept invitations: %w", err)
	}
	if !ok {
		// lost a race with a concurrent accept or revoke
		return nil, internal.ErrInvitationNotPending
	}

	accepted := make([]Invitation, 0, len(invs))
	for _, inv := range invs {
		inv.Status = StatusAccepted
		inv.AcceptedBy = who.UserID
		inv.AcceptedAt = &now
		inv.UpdatedAt = now

		s.logger.Info("invitation accepted", "invitation_id", inv.ID, "user_id", who.UserID)
		s.publish(ctx, events.EventTypeInvitationAccepted, inv, who.UserID)
		accepted = append(accepted, *inv)
	}

	return accepted, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// RevokeGroup revokes every pending invitation of a group and returns how
// many changed.
func (s *Service) RevokeGroup(ctx context.Context, who *Identity, groupType, groupID string) (int, error) {
	now := s.now()
	ids, err := s.repo.RevokePendingByGroup(ctx, groupType, groupID, now)
	if err != nil {
		return 0, fmt.Errorf("revoke group invitations: %w", err)
	}

	for _, id := range ids {
		inv := &Invitation{
			ID:        id,
			Group:     Group{Type: groupType, ID: groupID},
			Status:    StatusRevoked,
			RevokedAt: &now,
		}
		s.publish(ctx, events.EventTypeInvitationRevoked, inv, who.UserID)
	}

	s.logger.Info("group invitations revoked",
		"group_type", groupType,
		"group_id", groupID,
		"count", len(ids),
		"actor_id", who.UserID)
	return len(ids), nil
}

// Reinvite bumps the resend counter of a pending invitation.
func (s *Service) Reinvite(ctx context.Context, who *Identity, id string) (*Invitation, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsPending() {
		return nil, internal.ErrInvitationNotPending
	}

	now := s.now()
	ok, err := s.repo.IncrementResend(ctx, id, string(StatusPending), now)
	if err != nil {
		return nil, fmt.Errorf("reinvite: %w", err)
	}
	if !ok {
		return nil, internal.ErrInvitationNotPending
	}

	inv.ResendCount++
	inv.UpdatedAt = now

	s.logger.Info("invitation resent", "invitation_id", id, "resend_count", inv.ResendCount)
	s.publish(ctx, events.EventTypeInvitationReinvited, inv, who.UserID)
	return inv, nil
}

func (s *Service) publish(ctx context.Context, eventType string, inv *Invitation, actorID string) {
	if s.bus == nil {
		return
	}
	ev := events.NewInvitationEvent(eventType, inv.ID, actorID, inv.Group.Type, inv.Group.ID, string(inv.Status))
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish invitation event", "event_type", eventType, "error", err)
	}
}
