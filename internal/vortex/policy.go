package vortex

import "context"

// Policy decides whether an authenticated identity may perform a plugin
// operation. Every route consults exactly one of these callbacks.
type Policy interface {
	CanMintJWT(ctx context.Context, who *Identity) bool
	CanCreateInvitation(ctx context.Context, who *Identity, group Group) bool
	CanReadInvitation(ctx context.Context, who *Identity, inv *Invitation) bool
	CanDeleteInvitation(ctx context.Context, who *Identity, inv *Invitation) bool
	CanAcceptInvitations(ctx context.Context, who *Identity, target Target) bool
	CanReadGroupInvitations(ctx context.Context, who *Identity, groupType, groupID string) bool
	CanDeleteGroupInvitations(ctx context.Context, who *Identity, groupType, groupID string) bool
	CanReinvite(ctx context.Context, who *Identity, inv *Invitation) bool
}

// AllowAll grants every operation to any authenticated identity.
type AllowAll struct{}

var _ Policy = AllowAll{}

func (AllowAll) CanMintJWT(context.Context, *Identity) bool {
	return true
}

func (AllowAll) CanCreateInvitation(context.Context, *Identity, Group) bool {
	return true
}

func (AllowAll) CanReadInvitation(context.Context, *Identity, *Invitation) bool {
	return true
}

func (AllowAll) CanDeleteInvitation(context.Context, *Identity, *Invitation) bool {
	return true
}

func (AllowAll) CanAcceptInvitations(context.Context, *Identity, Target) bool {
	return true
}

func (AllowAll) CanReadGroupInvitations(context.Context, *Identity, string, string) bool {
	return true
}

func (AllowAll) CanDeleteGroupInvitations(context.Context, *Identity, string, string) bool {
	return true
}

func (AllowAll) CanReinvite(context.Context, *Identity, *Invitation) bool {
	return true
}
