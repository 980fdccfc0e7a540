package vortex

import (
	"net/http"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Policy  Policy
	Minter  *Minter
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service, policy Policy, minter *Minter) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Policy:      policy,
		Minter:      minter,
	}
}

// caller returns the identity attached by the plugin's authentication
// middleware. Handlers are never mounted without it.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	who, ok := IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrAuthRequired)
		return nil, false
	}
	return who, true
}

func (h *Handler) deny(w http.ResponseWriter, r *http.Request, who *Identity, operation string) {
	h.Logger.Warn("vortex policy denied request", "operation", operation, "user_id", who.UserID)
	h.WriteAppError(w, r, internal.ErrAccessDenied)
}

// MintJWT handles POST {base}/jwt.
func (h *Handler) MintJWT(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !h.Policy.CanMintJWT(r.Context(), who) {
		h.deny(w, r, who, "mint_jwt")
		return
	}

	token, expiresAt, err := h.Minter.Mint(who)
	if err != nil {
		h.WriteAppError(w, r, internal.NewInternalError("failed to mint token", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, JWTResponse{JWT: token, ExpiresAt: expiresAt.Unix()})
}

// ListByTarget handles GET {base}/invitations?targetType=&targetValue=.
func (h *Handler) ListByTarget(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := TargetQuery{
		TargetType:  r.URL.Query().Get("targetType"),
		TargetValue: r.URL.Query().Get("targetValue"),
	}
	if err := q.Validate(); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	invs, err := h.Service.ListByTarget(r.Context(), Target{Type: q.TargetType, Value: q.TargetValue})
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	visible := make([]Invitation, 0, len(invs))
	for i := range invs {
		if h.Policy.CanReadInvitation(r.Context(), who, &invs[i]) {
			visible = append(visible, invs[i])
		}
	}

	h.WriteJSON(w, http.StatusOK, InvitationsResponse{Invitations: visible})
}

// Create handles POST {base}/invitations.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if !h.Policy.CanCreateInvitation(r.Context(), who, req.Group) {
		h.deny(w, r, who, "create_invitation")
		return
	}

	inv, err := h.Service.Create(r.Context(), who, req.Target, req.Group)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, inv)
}

// Get handles GET {base}/invitations/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if !h.Policy.CanReadInvitation(r.Context(), who, inv) {
		h.deny(w, r, who, "read_invitation")
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

// Revoke handles DELETE {base}/invitations/{id}.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if !h.Policy.CanDeleteInvitation(r.Context(), who, inv) {
		h.deny(w, r, who, "delete_invitation")
		return
	}

	if _, err := h.Service.Revoke(r.Context(), who, inv.ID); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Accept handles POST {base}/invitations/accept.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req AcceptInvitationsRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if !h.Policy.CanAcceptInvitations(r.Context(), who, req.Target) {
		h.deny(w, r, who, "accept_invitations")
		return
	}

	accepted, err := h.Service.Accept(r.Context(), who, req.InvitationIDs, req.Target)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, InvitationsResponse{Invitations: accepted})
}

// ListByGroup handles GET {base}/invitations/by-group/{groupType}/{groupId}.
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	groupType, groupID := chi.URLParam(r, "groupType"), chi.URLParam(r, "groupId")
	if !h.Policy.CanReadGroupInvitations(r.Context(), who, groupType, groupID) {
		h.deny(w, r, who, "read_group_invitations")
		return
	}

	invs, err := h.Service.ListByGroup(r.Context(), groupType, groupID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, InvitationsResponse{Invitations: invs})
}

// RevokeGroup handles DELETE {base}/invitations/by-group/{groupType}/{groupId}.
func (h *Handler) RevokeGroup(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	groupType, groupID := chi.URLParam(r, "groupType"), chi.URLParam(r, "groupId")
	if !h.Policy.CanDeleteGroupInvitations(r.Context(), who, groupType, groupID) {
		h.deny(w, r, who, "delete_group_invitations")
		return
	}

	n, err := h.Service.RevokeGroup(r.Context(), who, groupType, groupID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RevokeGroupResponse{Success: true, Revoked: n})
}

// Reinvite handles POST {base}/invitations/{id}/reinvite.
func (h *Handler) Reinvite(w http.ResponseWriter, r *http.Request) {
	who, ok := h.caller(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if !h.Policy.CanReinvite(r.Context(), who, inv) {
		h.deny(w, r, who, "reinvite")
		return
	}

	updated, err := h.Service.Reinvite(r.Context(), who, inv.ID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}
