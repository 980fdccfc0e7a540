package vortex

import (
	errors "github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/core/common/validation"
)

var targetTypes = []string{IdentifierEmail, IdentifierPhone, IdentifierUsername}

type CreateInvitationRequest struct {
	Target Target `json:"target"`
	Group  Group  `json:"group"`
}

func (r CreateInvitationRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("target.type", r.Target.Type).Required().OneOf(targetTypes...)
	value := v.Field("target.value", r.Target.Value).Required().MaxLength(320)
	if r.Target.Type == IdentifierEmail {
		value.Email()
	}
	v.Field("group.type", r.Group.Type).Required().MaxLength(64)
	v.Field("group.id", r.Group.ID).Required().MaxLength(128)
	v.Field("group.name", r.Group.Name).MaxLength(255)
	return v.Validate()
}

type AcceptInvitationsRequest struct {
	InvitationIDs []string `json:"invitationIds"`
	Target        Target   `json:"target"`
}

func (r AcceptInvitationsRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("invitationIds", r.InvitationIDs).Required()
	v.Field("target.type", r.Target.Type).Required().OneOf(targetTypes...)
	v.Field("target.value", r.Target.Value).Required()
	return v.Validate()
}

type TargetQuery struct {
	TargetType  string
	TargetValue string
}

func (q TargetQuery) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("targetType", q.TargetType).Required().OneOf(targetTypes...)
	v.Field("targetValue", q.TargetValue).Required()
	return v.Validate()
}

type JWTResponse struct {
	JWT       string `json:"jwt"`
	ExpiresAt int64  `json:"expiresAt"`
}

type InvitationsResponse struct {
	Invitations []Invitation `json:"invitations"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type RevokeGroupResponse struct {
	Success bool `json:"success"`
	Revoked int  `json:"revoked"`
}
