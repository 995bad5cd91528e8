package models

import "time"

const (
	ChurchStatusActive   = "active"
	ChurchStatusPending  = "pending"
	ChurchStatusInactive = "inactive"
)

type Church struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:150;not null" json:"name"`
	Status   string `gorm:"size:20;default:'pending';index" json:"status"`
	IsPublic bool   `gorm:"default:false" json:"is_public"`
	Timezone string `gorm:"size:64" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const MembershipStatusApproved = "approved"

// Membership links an applicant to a parish. Only approved memberships
// unlock free sacraments and member discounts.
type Membership struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index:idx_membership_user_church" json:"user_id"`
	ChurchID uint   `gorm:"index:idx_membership_user_church" json:"church_id"`
	Status   string `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
