package models

import "time"

type MembershipRole string

const (
	RoleOwner     MembershipRole = "OWNER"
	RoleManager   MembershipRole = "MANAGER"
	RoleCollector MembershipRole = "COLLECTOR"
)

// Staff is anyone who logs into the platform for a business: owners,
// shop managers and field collectors.
type Staff struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index;not null" json:"business_id"`

	FullName     string `gorm:"size:180;not null" json:"full_name"`
	Email        string `gorm:"uniqueIndex;size:180;not null" json:"email"`
	Phone        string `gorm:"size:60" json:"phone,omitempty"`
	PasswordHash string `gorm:"size:255" json:"-"`

	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Memberships []ShopMembership `gorm:"foreignKey:StaffID" json:"memberships,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopMembership ties a staff member to a shop with a role. A staff
// member may work several shops of the same business.
type ShopMembership struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StaffID uint `gorm:"index;not null;uniqueIndex:ux_membership_staff_shop,priority:1" json:"staff_id"`
	ShopID  uint `gorm:"index;not null;uniqueIndex:ux_membership_staff_shop,priority:2" json:"shop_id"`

	Role MembershipRole `gorm:"size:20;not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}
