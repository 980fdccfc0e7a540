package invitation

import "time"

type Invitation struct {
	ID          string     `gorm:"primaryKey;column:id"`
	TargetType  string     `gorm:"column:target_type;not null;index:idx_invitations_target"`
	TargetValue string     `gorm:"column:target_value;not null;index:idx_invitations_target"`
	GroupType   string     `gorm:"column:group_type;not null;index:idx_invitations_group"`
	GroupID     string     `gorm:"column:group_id;not null;index:idx_invitations_group"`
	GroupName   string     `gorm:"column:group_name"`
	InviterID   string     `gorm:"column:inviter_id;not null"`
	Status      string     `gorm:"column:status;not null;default:pending"`
	ResendCount int        `gorm:"column:resend_count;not null;default:0"`
	AcceptedBy  *string    `gorm:"column:accepted_by"`
	AcceptedAt  *time.Time `gorm:"column:accepted_at"`
	RevokedAt   *time.Time `gorm:"column:revoked_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}
