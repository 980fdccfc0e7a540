package postgres

import (
	"context"
	"errors"
	"time"

	invitationDatamodel "github.com/frahmantamala/vortex-demo/internal/core/datamodel/invitation"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) vortex.RepositoryAPI {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *invitationDatamodel.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*invitationDatamodel.Invitation, error) {
	var inv invitationDatamodel.Invitation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) ListByTarget(ctx context.Context, targetType, targetValue string) ([]*invitationDatamodel.Invitation, error) {
	var invs []*invitationDatamodel.Invitation
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_value = ?", targetType, targetValue).
		Order("created_at ASC, id ASC").
		Find(&invs).Error
	return invs, err
}

func (r *InvitationRepository) ListByGroup(ctx context.Context, groupType, groupID string) ([]*invitationDatamodel.Invitation, error) {
	var invs []*invitationDatamodel.Invitation
	err := r.db.WithContext(ctx).
		Where("group_type = ? AND group_id = ?", groupType, groupID).
		Order("created_at ASC, id ASC").
		Find(&invs).Error
	return invs, err
}

// Transition is a compare-and-set on status; a row that already moved on is
// left alone and reported as false.
func (r *InvitationRepository) Transition(ctx context.Context, id, from, to string, updates map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["status"] = to

	res := r.db.WithContext(ctx).
		Model(&invitationDatamodel.Invitation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TransitionAll applies the same compare-and-set to every id in one
// transaction. Unless every row moves, nothing does and false is returned.
func (r *InvitationRepository) TransitionAll(ctx context.Context, ids []string, from, to string, updates map[string]interface{}) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["status"] = to

	errStale := errors.New("invitation moved on")
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&invitationDatamodel.Invitation{}).
			Where("id IN ? AND status = ?", ids, from).
			Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return errStale
		}
		return nil
	})
	if errors.Is(err, errStale) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *InvitationRepository) IncrementResend(ctx context.Context, id, status string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&invitationDatamodel.Invitation{}).
		Where("id = ? AND status = ?", id, status).
		Updates(map[string]interface{}{
			"resend_count": gorm.Expr("resend_count + 1"),
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *InvitationRepository) RevokePendingByGroup(ctx context.Context, groupType, groupID string, at time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitationDatamodel.Invitation{}).
			Where("group_type = ? AND group_id = ? AND status = ?", groupType, groupID, string(vortex.StatusPending)).
			Order("created_at ASC, id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&invitationDatamodel.Invitation{}).
			Where("id IN ? AND status = ?", ids, string(vortex.StatusPending)).
			Updates(map[string]interface{}{
				"status":     string(vortex.StatusRevoked),
				"revoked_at": at,
				"updated_at": at,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
